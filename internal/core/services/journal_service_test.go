package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	portsrepo "github.com/ComptaPME/compta_backend/internal/core/ports/repositories"
	portssvc "github.com/ComptaPME/compta_backend/internal/core/ports/services"
	"github.com/ComptaPME/compta_backend/internal/core/services"
)

// --- Mock JournalEntryRepository ---

type MockJournalEntryRepository struct {
	mock.Mock
}

var _ portsrepo.JournalEntryRepository = (*MockJournalEntryRepository)(nil)

func (m *MockJournalEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) ListEntries(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, journalType, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) ListReferencesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockJournalEntryRepository) ListDocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockJournalEntryRepository) MarkEntryValidated(ctx context.Context, entryID string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, updatedAt)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) MarkEntryLocked(ctx context.Context, entryID string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, updatedAt)
	return args.Error(0)
}

func setup(t *testing.T) (*MockJournalEntryRepository, portssvc.JournalSvcFacade) {
	t.Helper()
	repo := new(MockJournalEntryRepository)
	gen, err := services.NewEntryGenerator(domain.DefaultChart())
	require.NoError(t, err)
	return repo, services.NewJournalService(repo, gen)
}

func TestClassifyTransaction(t *testing.T) {
	tests := []struct {
		name   string
		txType domain.TransactionType
		method domain.PaymentMethod
		want   domain.JournalType
	}{
		{"cash sale", domain.Sale, domain.PaymentCash, domain.JournalCash},
		{"cash purchase", domain.Purchase, domain.PaymentCash, domain.JournalCash},
		{"bank transfer purchase", domain.Purchase, domain.PaymentBankTransfer, domain.JournalBank},
		{"credit card sale", domain.Sale, domain.PaymentCreditCard, domain.JournalBank},
		// Checks fall through to the type-based journal, not to a clearing journal.
		{"check sale", domain.Sale, domain.PaymentCheck, domain.JournalSales},
		{"check purchase", domain.Purchase, domain.PaymentCheck, domain.JournalPurchases},
		{"deferred sale", domain.Sale, domain.PaymentDeferred, domain.JournalSales},
		{"other purchase", domain.Purchase, domain.PaymentOther, domain.JournalPurchases},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ClassifyTransaction(domain.Transaction{Type: tt.txType, PaymentMethod: tt.method})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateFromTransaction(t *testing.T) {
	repo, svc := setup(t)
	year := time.Now().UTC().Year()

	// Existing references carry a gap: numbering is max-based, so the next
	// reference is 00004, not 00003.
	repo.On("ListReferencesByPrefix", mock.Anything, fmt.Sprintf("VE-%d", year)).
		Return([]string{
			fmt.Sprintf("VE-%d-00001", year),
			fmt.Sprintf("VE-%d-00003", year),
		}, nil).Once()
	repo.On("SaveEntry", mock.Anything, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	tx := saleTransaction()
	tx.PaymentMethod = domain.PaymentCheck // check sale files under sales

	entry, err := svc.CreateFromTransaction(context.Background(), tx)
	require.NoError(t, err)

	assert.Equal(t, domain.JournalSales, entry.JournalType)
	assert.Equal(t, fmt.Sprintf("VE-%d-00004", year), entry.Reference)
	assert.NotEmpty(t, entry.EntryID)
	assert.False(t, entry.Validated)
	assert.False(t, entry.Locked)
	assert.Len(t, entry.Lines, 5)
	assert.Equal(t, "TRX-2024-001", entry.Metadata.DocumentNumber)

	repo.AssertExpectations(t)
}

func TestCreateFromTransaction_MintsDocumentNumber(t *testing.T) {
	repo, svc := setup(t)
	year := time.Now().UTC().Year()

	repo.On("ListDocumentNumbersByPrefix", mock.Anything, fmt.Sprintf("TRX-%d", year)).
		Return([]string{fmt.Sprintf("TRX-%d-004", year)}, nil).Once()
	repo.On("ListReferencesByPrefix", mock.Anything, fmt.Sprintf("CA-%d", year)).
		Return([]string{}, nil).Once()
	repo.On("SaveEntry", mock.Anything, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	tx := saleTransaction()
	tx.Reference = ""

	entry, err := svc.CreateFromTransaction(context.Background(), tx)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("TRX-%d-005", year), entry.Metadata.DocumentNumber)
	assert.Equal(t, domain.JournalCash, entry.JournalType)
	repo.AssertExpectations(t)
}

func TestCreateFromTransaction_RejectsImbalance(t *testing.T) {
	repo, svc := setup(t)

	// Declared total does not reconcile with HT + VAT; the generated lines
	// cannot balance and nothing must reach the repository.
	tx := saleTransaction()
	tx.TotalPrice = d("560.00")

	_, err := svc.CreateFromTransaction(context.Background(), tx)
	require.Error(t, err)

	var imbalanced *apperrors.ImbalancedEntryError
	require.ErrorAs(t, err, &imbalanced)
	repo.AssertNotCalled(t, "SaveEntry", mock.Anything, mock.Anything)
}

func TestCreateFromTransaction_RejectsMismatchedPaymentDetails(t *testing.T) {
	repo, svc := setup(t)

	tx := saleTransaction() // cash payment
	tx.PaymentDetails = &domain.PaymentDetails{Check: &domain.CheckDetails{CheckNumber: "1234567"}}

	_, err := svc.CreateFromTransaction(context.Background(), tx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "SaveEntry", mock.Anything, mock.Anything)
}

func storedEntry() *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     "entry-1",
		JournalType: domain.JournalSales,
		Reference:   "VE-2024-00001",
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Vente TRX-2024-001",
		Lines: []domain.AccountingLine{
			{AccountCode: "411", Label: "Créance client", Amount: domain.DebitAmount(d("540.00"))},
			{AccountCode: "445711", Label: "TVA collectée", Amount: domain.CreditAmount(d("90.00"))},
			{AccountCode: "707", Label: "Vente de marchandises", Amount: domain.CreditAmount(d("450.00"))},
		},
	}
}

func TestValidateEntry(t *testing.T) {
	repo, svc := setup(t)

	repo.On("FindEntryByID", mock.Anything, "entry-1").Return(storedEntry(), nil).Once()
	repo.On("MarkEntryValidated", mock.Anything, "entry-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := svc.ValidateEntry(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.True(t, entry.Validated)
	repo.AssertExpectations(t)
}

func TestValidateEntry_AlreadyValidatedIsNoOp(t *testing.T) {
	repo, svc := setup(t)

	stored := storedEntry()
	stored.Validated = true
	repo.On("FindEntryByID", mock.Anything, "entry-1").Return(stored, nil).Once()

	entry, err := svc.ValidateEntry(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.True(t, entry.Validated)
	repo.AssertNotCalled(t, "MarkEntryValidated", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateEntry_LockedIsRejected(t *testing.T) {
	repo, svc := setup(t)

	stored := storedEntry()
	stored.Validated = true
	stored.Locked = true
	repo.On("FindEntryByID", mock.Anything, "entry-1").Return(stored, nil).Once()

	_, err := svc.ValidateEntry(context.Background(), "entry-1")
	assert.ErrorIs(t, err, apperrors.ErrLocked)
}

func TestValidateEntry_Unbalanced(t *testing.T) {
	repo, svc := setup(t)

	stored := storedEntry()
	stored.Lines = stored.Lines[:2] // drop the revenue line
	repo.On("FindEntryByID", mock.Anything, "entry-1").Return(stored, nil).Once()

	_, err := svc.ValidateEntry(context.Background(), "entry-1")
	require.Error(t, err)

	var imbalanced *apperrors.ImbalancedEntryError
	require.ErrorAs(t, err, &imbalanced)
	assert.Equal(t, "540.00", imbalanced.DebitTotal.StringFixed(2))
	assert.Equal(t, "90.00", imbalanced.CreditTotal.StringFixed(2))
}

func TestValidateEntry_NotFound(t *testing.T) {
	repo, svc := setup(t)

	repo.On("FindEntryByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := svc.ValidateEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLockEntry(t *testing.T) {
	repo, svc := setup(t)

	stored := storedEntry()
	stored.Validated = true
	repo.On("FindEntryByID", mock.Anything, "entry-1").Return(stored, nil).Once()
	repo.On("MarkEntryLocked", mock.Anything, "entry-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := svc.LockEntry(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.True(t, entry.Locked)
	repo.AssertExpectations(t)
}

func TestLockEntry_RequiresValidation(t *testing.T) {
	repo, svc := setup(t)

	repo.On("FindEntryByID", mock.Anything, "entry-1").Return(storedEntry(), nil).Once()

	_, err := svc.LockEntry(context.Background(), "entry-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "MarkEntryLocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestLockEntry_LockedIsTerminal(t *testing.T) {
	repo, svc := setup(t)

	stored := storedEntry()
	stored.Validated = true
	stored.Locked = true
	repo.On("FindEntryByID", mock.Anything, "entry-1").Return(stored, nil).Once()

	entry, err := svc.LockEntry(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.True(t, entry.Locked)
	repo.AssertNotCalled(t, "MarkEntryLocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestListEntries_UnknownJournal(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.ListEntries(context.Background(), domain.JournalType("general"), domain.JournalFilters{})
	assert.ErrorIs(t, err, services.ErrUnknownJournal)
}

func TestBalance(t *testing.T) {
	repo, svc := setup(t)

	second := *storedEntry()
	second.EntryID = "entry-2"
	second.Lines = []domain.AccountingLine{
		{AccountCode: "411", Amount: domain.DebitAmount(d("120.00"))},
		{AccountCode: "707", Amount: domain.CreditAmount(d("120.00"))},
	}
	repo.On("ListEntries", mock.Anything, domain.JournalSales, mock.Anything).
		Return([]domain.JournalEntry{*storedEntry(), second}, nil).Once()

	balance, err := svc.Balance(context.Background(), domain.JournalSales, domain.JournalFilters{})
	require.NoError(t, err)
	assert.Equal(t, "660.00", balance.Debit.StringFixed(2))
	assert.Equal(t, "660.00", balance.Credit.StringFixed(2))
	assert.Equal(t, "0.00", balance.Balance.StringFixed(2))
}

func TestExportCSV(t *testing.T) {
	repo, svc := setup(t)

	repo.On("ListEntries", mock.Anything, domain.JournalSales, mock.Anything).
		Return([]domain.JournalEntry{*storedEntry()}, nil).Once()

	data, err := svc.ExportCSV(context.Background(), domain.JournalSales, domain.JournalFilters{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4) // header + one row per accounting line
	assert.Equal(t, "Date;Référence;Compte;Libellé;Débit;Crédit", lines[0])
	assert.Equal(t, "15/03/2024;VE-2024-00001;411;Créance client;540.00;0.00", lines[1])
	assert.Equal(t, "15/03/2024;VE-2024-00001;445711;TVA collectée;0.00;90.00", lines[2])
	assert.Equal(t, "15/03/2024;VE-2024-00001;707;Vente de marchandises;0.00;450.00", lines[3])
}

func TestListJournals(t *testing.T) {
	_, svc := setup(t)

	configs := svc.ListJournals()
	require.Len(t, configs, 5)
	assert.Equal(t, domain.JournalSales, configs[0].ID)
	assert.Equal(t, "VE", configs[0].Prefix)
	assert.Equal(t, domain.JournalMisc, configs[4].ID)
	assert.Equal(t, "OD", configs[4].Prefix)
}

func TestValidateForJournal(t *testing.T) {
	balanced := *storedEntry()

	bankEntry := balanced
	bankEntry.Lines = []domain.AccountingLine{
		{AccountCode: "512", Amount: domain.DebitAmount(d("540.00"))},
		{AccountCode: "411", Amount: domain.CreditAmount(d("540.00"))},
	}

	cashEntry := balanced
	cashEntry.Lines = []domain.AccountingLine{
		{AccountCode: "531", Amount: domain.DebitAmount(d("540.00"))},
		{AccountCode: "411", Amount: domain.CreditAmount(d("540.00"))},
	}

	unbalanced := balanced
	unbalanced.Lines = balanced.Lines[:2]

	tests := []struct {
		name        string
		entry       domain.JournalEntry
		journalType domain.JournalType
		want        bool
	}{
		{"sales entry has class 7 line", balanced, domain.JournalSales, true},
		{"sales entry lacks class 6 line", balanced, domain.JournalPurchases, false},
		{"bank entry has 512 line", bankEntry, domain.JournalBank, true},
		{"cash entry has 531 line", cashEntry, domain.JournalCash, true},
		{"bank entry rejected by cash journal", bankEntry, domain.JournalCash, false},
		{"misc accepts any family", bankEntry, domain.JournalMisc, true},
		{"unbalanced entry always fails", unbalanced, domain.JournalSales, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ValidateForJournal(tt.entry, tt.journalType))
		})
	}
}

func TestInPeriod(t *testing.T) {
	entry := *storedEntry()
	entry.Date = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.True(t, services.InPeriod(entry, start, end))

	// Bounds are inclusive and compared date-only, the time of day is ignored.
	assert.True(t, services.InPeriod(entry, entry.Date, entry.Date))
	assert.True(t, services.InPeriod(entry, start, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))

	assert.False(t, services.InPeriod(entry, start, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.False(t, services.InPeriod(entry, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), end))
}
