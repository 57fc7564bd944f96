package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	"github.com/ComptaPME/compta_backend/internal/core/services"
	"github.com/ComptaPME/compta_backend/internal/utils/accounting"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newGenerator(t *testing.T) *services.EntryGenerator {
	t.Helper()
	gen, err := services.NewEntryGenerator(domain.DefaultChart())
	require.NoError(t, err)
	return gen
}

func saleTransaction() domain.Transaction {
	return domain.Transaction{
		TransactionID:  "tx-1",
		Reference:      "TRX-2024-001",
		Type:           domain.Sale,
		Date:           time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		ProductID:      "prd-1",
		Quantity:       3,
		PriceBeforeTax: d("450.00"),
		VATAmount:      d("90.00"),
		TotalPrice:     d("540.00"),
		PaymentMethod:  domain.PaymentCash,
		Status:         domain.StatusConfirmed,
	}
}

func lineAmounts(line domain.AccountingLine) (string, string) {
	return line.Amount.Debit.StringFixed(2), line.Amount.Credit.StringFixed(2)
}

func TestNewEntryGenerator_IncompleteChart(t *testing.T) {
	chart := domain.DefaultChart()
	chart.Sales.VATCollected = ""

	_, err := services.NewEntryGenerator(chart)
	require.Error(t, err)

	var missing *apperrors.MissingChartEntryError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "sales.vatCollected", missing.Concept)
}

func TestGenerate_ConfirmedCashSale(t *testing.T) {
	gen := newGenerator(t)

	entry := gen.Generate(saleTransaction())

	require.Len(t, entry.Lines, 5)

	// Receivable opened for the TTC amount.
	assert.Equal(t, "411", entry.Lines[0].AccountCode)
	debit, credit := lineAmounts(entry.Lines[0])
	assert.Equal(t, "540.00", debit)
	assert.Equal(t, "0.00", credit)

	// VAT collected.
	assert.Equal(t, "445711", entry.Lines[1].AccountCode)
	debit, credit = lineAmounts(entry.Lines[1])
	assert.Equal(t, "0.00", debit)
	assert.Equal(t, "90.00", credit)

	// Revenue for the HT amount.
	assert.Equal(t, "707", entry.Lines[2].AccountCode)
	debit, credit = lineAmounts(entry.Lines[2])
	assert.Equal(t, "0.00", debit)
	assert.Equal(t, "450.00", credit)

	// Settlement pair: treasury in, receivable closed again.
	assert.Equal(t, "531", entry.Lines[3].AccountCode)
	debit, credit = lineAmounts(entry.Lines[3])
	assert.Equal(t, "540.00", debit)
	assert.Equal(t, "0.00", credit)

	assert.Equal(t, "411", entry.Lines[4].AccountCode)
	debit, credit = lineAmounts(entry.Lines[4])
	assert.Equal(t, "0.00", debit)
	assert.Equal(t, "540.00", credit)

	// Both receivable lines stay in the list: the entry balances globally at
	// 1080 debit against 1080 credit even though they cancel economically.
	debitTotal, creditTotal := accounting.SumLines(entry.Lines)
	assert.Equal(t, "1080.00", debitTotal.StringFixed(2))
	assert.Equal(t, "1080.00", creditTotal.StringFixed(2))

	assert.Equal(t, domain.DocumentInvoice, entry.Metadata.DocumentType)
	assert.Equal(t, "TRX-2024-001", entry.Metadata.DocumentNumber)
	assert.True(t, entry.Metadata.VATRate.Equal(d("0.20")))
	assert.Equal(t, "Vente TRX-2024-001", entry.Description)

	require.NoError(t, gen.ValidateEntry(entry))
}

func TestGenerate_PendingPurchase(t *testing.T) {
	gen := newGenerator(t)

	entry := gen.Generate(domain.Transaction{
		Reference:      "TRX-2024-002",
		Type:           domain.Purchase,
		Date:           time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
		PriceBeforeTax: d("200.00"),
		VATAmount:      d("40.00"),
		TotalPrice:     d("240.00"),
		PaymentMethod:  domain.PaymentBankTransfer,
		Status:         domain.StatusPending,
	})

	// Pending: no settlement pair, the payable stays open.
	require.Len(t, entry.Lines, 3)

	assert.Equal(t, "607", entry.Lines[0].AccountCode)
	debit, _ := lineAmounts(entry.Lines[0])
	assert.Equal(t, "200.00", debit)

	assert.Equal(t, "445662", entry.Lines[1].AccountCode)
	debit, _ = lineAmounts(entry.Lines[1])
	assert.Equal(t, "40.00", debit)

	assert.Equal(t, "401", entry.Lines[2].AccountCode)
	_, credit := lineAmounts(entry.Lines[2])
	assert.Equal(t, "240.00", credit)

	debitTotal, creditTotal := accounting.SumLines(entry.Lines)
	assert.Equal(t, "240.00", debitTotal.StringFixed(2))
	assert.Equal(t, "240.00", creditTotal.StringFixed(2))

	assert.Equal(t, domain.DocumentSupplierInvoice, entry.Metadata.DocumentType)
	assert.Equal(t, "Achat TRX-2024-002", entry.Description)

	require.NoError(t, gen.ValidateEntry(entry))
}

func TestGenerate_ConfirmedPurchaseSettles(t *testing.T) {
	gen := newGenerator(t)

	tx := domain.Transaction{
		Reference:      "TRX-2024-003",
		Type:           domain.Purchase,
		Date:           time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		PriceBeforeTax: d("200.00"),
		VATAmount:      d("40.00"),
		TotalPrice:     d("240.00"),
		PaymentMethod:  domain.PaymentCheck,
		Status:         domain.StatusConfirmed,
	}
	entry := gen.Generate(tx)

	require.Len(t, entry.Lines, 5)

	// Settlement pair: payable closed, treasury credited.
	assert.Equal(t, "401", entry.Lines[3].AccountCode)
	debit, _ := lineAmounts(entry.Lines[3])
	assert.Equal(t, "240.00", debit)

	assert.Equal(t, "511", entry.Lines[4].AccountCode)
	_, credit := lineAmounts(entry.Lines[4])
	assert.Equal(t, "240.00", credit)

	require.NoError(t, gen.ValidateEntry(entry))
}

func TestGenerate_NoSettlementForOpenMethods(t *testing.T) {
	gen := newGenerator(t)

	// Deferred and other never settle, even when confirmed.
	for _, method := range []domain.PaymentMethod{domain.PaymentDeferred, domain.PaymentOther} {
		tx := saleTransaction()
		tx.PaymentMethod = method

		entry := gen.Generate(tx)
		assert.Len(t, entry.Lines, 3, "method %s", method)
		require.NoError(t, gen.ValidateEntry(entry))
	}

	// Immediate methods do not settle while the transaction is pending or cancelled.
	for _, status := range []domain.TransactionStatus{domain.StatusPending, domain.StatusCancelled} {
		tx := saleTransaction()
		tx.Status = status

		entry := gen.Generate(tx)
		assert.Len(t, entry.Lines, 3, "status %s", status)
	}
}

func TestGenerate_ZeroPriceBeforeTax(t *testing.T) {
	gen := newGenerator(t)

	tx := saleTransaction()
	tx.PriceBeforeTax = decimal.Zero
	tx.VATAmount = decimal.Zero
	tx.TotalPrice = decimal.Zero

	// A fully discounted transaction is legal; the VAT rate defaults to zero.
	entry := gen.Generate(tx)
	assert.True(t, entry.Metadata.VATRate.IsZero())
	require.NoError(t, gen.ValidateEntry(entry))
}

func TestValidateEntry_Imbalanced(t *testing.T) {
	gen := newGenerator(t)

	entry := domain.AccountingEntry{
		Lines: []domain.AccountingLine{
			{AccountCode: "411", Amount: domain.DebitAmount(d("540.00"))},
			{AccountCode: "707", Amount: domain.CreditAmount(d("450.00"))},
		},
		Metadata: domain.EntryMetadata{
			PriceBeforeTax: d("450.00"),
			VATAmount:      d("90.00"),
			TotalAmount:    d("540.00"),
		},
	}

	err := gen.ValidateEntry(entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var imbalanced *apperrors.ImbalancedEntryError
	require.ErrorAs(t, err, &imbalanced)
	assert.Equal(t, "540.00", imbalanced.DebitTotal.StringFixed(2))
	assert.Equal(t, "450.00", imbalanced.CreditTotal.StringFixed(2))
}

func TestValidateEntry_InconsistentTotals(t *testing.T) {
	gen := newGenerator(t)

	// Balanced lines but metadata that does not reconcile.
	entry := domain.AccountingEntry{
		Lines: []domain.AccountingLine{
			{AccountCode: "411", Amount: domain.DebitAmount(d("540.00"))},
			{AccountCode: "707", Amount: domain.CreditAmount(d("540.00"))},
		},
		Metadata: domain.EntryMetadata{
			PriceBeforeTax: d("450.00"),
			VATAmount:      d("90.00"),
			TotalAmount:    d("560.00"),
		},
	}

	err := gen.ValidateEntry(entry)
	require.Error(t, err)

	var inconsistent *apperrors.InconsistentTotalsError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "560.00", inconsistent.TotalAmount.StringFixed(2))
}

func TestValidateEntry_ToleratesSubCentDrift(t *testing.T) {
	gen := newGenerator(t)

	entry := domain.AccountingEntry{
		Lines: []domain.AccountingLine{
			{AccountCode: "411", Amount: domain.Amount{Debit: d("100.005"), Credit: decimal.Zero}},
			{AccountCode: "707", Amount: domain.Amount{Debit: decimal.Zero, Credit: d("100.00")}},
		},
		Metadata: domain.EntryMetadata{
			PriceBeforeTax: d("100.00"),
			VATAmount:      decimal.Zero,
			TotalAmount:    d("100.00"),
		},
	}

	require.NoError(t, gen.ValidateEntry(entry))
}
