package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	portsrepo "github.com/ComptaPME/compta_backend/internal/core/ports/repositories"
	portssvc "github.com/ComptaPME/compta_backend/internal/core/ports/services"
	"github.com/ComptaPME/compta_backend/internal/middleware"
	"github.com/ComptaPME/compta_backend/internal/utils/accounting"
	"github.com/ComptaPME/compta_backend/internal/utils/sequence"
)

var (
	ErrUnknownJournal = errors.New("unknown journal type")
	ErrNotValidated   = errors.New("entry must be validated before locking")
)

// transactionRefPrefix numbers source documents minted for transactions that
// arrive without a reference.
const transactionRefPrefix = "TRX"

// ClassifyTransaction assigns the journal a transaction is filed under.
// Cash goes to the cash journal and bank transfers or card payments to the
// bank journal; every other method, checks included, falls through to the
// type-based journal. A check-paid sale therefore lands in the sales
// journal, not in a clearing journal. That is how the books have always
// been kept here and it is preserved as-is.
func ClassifyTransaction(tx domain.Transaction) domain.JournalType {
	switch tx.PaymentMethod {
	case domain.PaymentCash:
		return domain.JournalCash
	case domain.PaymentBankTransfer, domain.PaymentCreditCard:
		return domain.JournalBank
	default:
		if tx.Type == domain.Sale {
			return domain.JournalSales
		}
		return domain.JournalPurchases
	}
}

// ValidateForJournal checks a finalized entry against its journal: the lines
// must balance and at least one line must belong to the account family the
// journal expects (class 7 for sales, class 6 for purchases, 512* for bank,
// 531* for cash). Misc accepts any family, adjustment entries being
// unconstrained.
func ValidateForJournal(entry domain.JournalEntry, journalType domain.JournalType) bool {
	if !accounting.LinesBalanced(entry.Lines) {
		return false
	}
	switch journalType {
	case domain.JournalSales:
		return hasAccountPrefix(entry.Lines, "7")
	case domain.JournalPurchases:
		return hasAccountPrefix(entry.Lines, "6")
	case domain.JournalBank:
		return hasAccountPrefix(entry.Lines, "512")
	case domain.JournalCash:
		return hasAccountPrefix(entry.Lines, "531")
	case domain.JournalMisc:
		return true
	default:
		return false
	}
}

func hasAccountPrefix(lines []domain.AccountingLine, prefix string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line.AccountCode, prefix) {
			return true
		}
	}
	return false
}

// InPeriod reports whether the entry date falls inside the inclusive
// [startDate, endDate] range. The comparison is date-only; times of day are
// ignored.
func InPeriod(entry domain.JournalEntry, startDate, endDate time.Time) bool {
	d := dateOnly(entry.Date)
	return !d.Before(dateOnly(startDate)) && !d.After(dateOnly(endDate))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// journalService implements the journal pipeline over a repository and an
// entry generator.
type journalService struct {
	entryGen    *EntryGenerator
	journalRepo portsrepo.JournalEntryRepository

	// refMu serializes reference issuance. The next sequence number is
	// re-derived from the persisted entry collection on every request, so
	// two concurrent submissions scanning the same snapshot would otherwise
	// mint the same reference.
	refMu sync.Mutex
}

// NewJournalService creates the journal service facade.
func NewJournalService(journalRepo portsrepo.JournalEntryRepository, entryGen *EntryGenerator) portssvc.JournalSvcFacade {
	return &journalService{
		entryGen:    entryGen,
		journalRepo: journalRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// CreateFromTransaction runs the pipeline for one commercial transaction:
// generate → validate → classify → reference → persist. A validation failure
// is fatal to this transaction only and nothing reaches the ledger in an
// invalid state.
func (s *journalService) CreateFromTransaction(ctx context.Context, tx domain.Transaction) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := tx.PaymentDetails.Validate(tx.PaymentMethod); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if tx.Reference == "" {
		ref, err := s.nextDocumentNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to issue transaction reference: %w", err)
		}
		tx.Reference = ref
	}

	accEntry := s.entryGen.Generate(tx)
	if err := s.entryGen.ValidateEntry(accEntry); err != nil {
		logger.Warn("Generated entry rejected by validation",
			slog.String("transaction_ref", tx.Reference),
			slog.String("error", err.Error()))
		return nil, err
	}

	journalType := ClassifyTransaction(tx)
	reference, err := s.nextReference(ctx, journalType)
	if err != nil {
		return nil, fmt.Errorf("failed to issue journal reference: %w", err)
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:     uuid.NewString(),
		JournalType: journalType,
		Reference:   reference,
		Date:        accEntry.Date,
		Description: accEntry.Description,
		Lines:       accEntry.Lines,
		Validated:   false,
		Locked:      false,
		Metadata:    accEntry.Metadata,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if !ValidateForJournal(entry, journalType) {
		return nil, fmt.Errorf("%w: entry accounts do not fit journal %s", apperrors.ErrValidation, journalType)
	}

	if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to persist journal entry",
			slog.String("entry_id", entry.EntryID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("Journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("journal", string(journalType)),
		slog.String("reference", reference))
	return &entry, nil
}

// nextReference issues the next gap-free reference for a journal in the
// current year. Issuance is serialized; see refMu.
func (s *journalService) nextReference(ctx context.Context, journalType domain.JournalType) (string, error) {
	s.refMu.Lock()
	defer s.refMu.Unlock()

	prefix := domain.JournalConfigs[journalType].Prefix
	year := time.Now().UTC().Year()

	existing, err := s.journalRepo.ListReferencesByPrefix(ctx, fmt.Sprintf("%s-%d", prefix, year))
	if err != nil {
		return "", err
	}
	return sequence.Next(prefix, year, sequence.JournalWidth, existing), nil
}

// nextDocumentNumber mints a TRX reference for transactions submitted
// without one, scanning the document numbers already booked.
func (s *journalService) nextDocumentNumber(ctx context.Context) (string, error) {
	s.refMu.Lock()
	defer s.refMu.Unlock()

	year := time.Now().UTC().Year()
	existing, err := s.journalRepo.ListDocumentNumbersByPrefix(ctx, fmt.Sprintf("%s-%d", transactionRefPrefix, year))
	if err != nil {
		return "", err
	}
	return sequence.Next(transactionRefPrefix, year, sequence.TransactionWidth, existing), nil
}

// ListJournals returns the journal table in display order.
func (s *journalService) ListJournals() []domain.JournalConfig {
	order := []domain.JournalType{
		domain.JournalSales,
		domain.JournalPurchases,
		domain.JournalBank,
		domain.JournalCash,
		domain.JournalMisc,
	}
	configs := make([]domain.JournalConfig, 0, len(order))
	for _, t := range order {
		configs = append(configs, domain.JournalConfigs[t])
	}
	return configs
}

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.journalRepo.FindEntryByID(ctx, entryID)
}

func (s *journalService) ListEntries(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) ([]domain.JournalEntry, error) {
	if !journalType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJournal, journalType)
	}
	return s.journalRepo.ListEntries(ctx, journalType, filters)
}

// Balance aggregates debit and credit totals across the filtered entries,
// the way the journal screens display them.
func (s *journalService) Balance(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) (domain.JournalBalance, error) {
	entries, err := s.ListEntries(ctx, journalType, filters)
	if err != nil {
		return domain.JournalBalance{}, err
	}

	balance := domain.JournalBalance{}
	for _, entry := range entries {
		debit, credit := accounting.SumLines(entry.Lines)
		balance.Debit = balance.Debit.Add(debit)
		balance.Credit = balance.Credit.Add(credit)
	}
	balance.Balance = balance.Debit.Sub(balance.Credit)
	return balance, nil
}

// ValidateEntry re-checks the entry's balance and flips its validated flag.
// Validation of an already validated entry is a no-op; a locked entry can no
// longer be touched.
func (s *journalService) ValidateEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Locked {
		return nil, apperrors.ErrLocked
	}

	debit, credit := accounting.SumLines(entry.Lines)
	if !accounting.AmountsEqual(debit, credit) {
		return nil, &apperrors.ImbalancedEntryError{DebitTotal: debit, CreditTotal: credit}
	}

	if entry.Validated {
		return entry, nil
	}

	now := time.Now().UTC()
	if err := s.journalRepo.MarkEntryValidated(ctx, entryID, now); err != nil {
		return nil, fmt.Errorf("failed to mark entry validated: %w", err)
	}
	entry.Validated = true
	entry.LastUpdatedAt = now
	return entry, nil
}

// LockEntry marks a validated entry as locked during period closing. Locking
// is terminal: a locked entry is returned as-is and never mutated again.
func (s *journalService) LockEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Locked {
		return entry, nil
	}
	if !entry.Validated {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNotValidated.Error())
	}

	now := time.Now().UTC()
	if err := s.journalRepo.MarkEntryLocked(ctx, entryID, now); err != nil {
		return nil, fmt.Errorf("failed to mark entry locked: %w", err)
	}
	entry.Locked = true
	entry.LastUpdatedAt = now
	return entry, nil
}

// ExportCSV renders the filtered entries for download.
func (s *journalService) ExportCSV(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) ([]byte, error) {
	entries, err := s.ListEntries(ctx, journalType, filters)
	if err != nil {
		return nil, err
	}
	return formatJournalExport(entries)
}
