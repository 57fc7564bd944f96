package services

import (
	"fmt"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	"github.com/ComptaPME/compta_backend/internal/utils/accounting"
)

// EntryGenerator turns commercial transactions into balanced double-entry
// accounting entries over a chart of accounts. Generation is a pure function
// of the transaction: no I/O, and normal business variation (open
// receivables, unknown settlement methods) never raises an error.
type EntryGenerator struct {
	chart domain.ChartOfAccounts
}

// NewEntryGenerator validates the chart once at construction. A missing
// account code is a configuration error, surfaced here rather than per
// transaction.
func NewEntryGenerator(chart domain.ChartOfAccounts) (*EntryGenerator, error) {
	if err := chart.Validate(); err != nil {
		return nil, err
	}
	return &EntryGenerator{chart: chart}, nil
}

// Generate produces the ordered, balanced line set for one transaction.
//
// A sale opens the customer receivable for the TTC amount against VAT
// collected and revenue; a purchase mirrors it with expense, VAT deductible
// and the supplier payable. When the payment method settles immediately and
// the transaction is confirmed, a settlement pair follows: the treasury
// account takes the TTC amount and the receivable (or payable) is closed
// again, producing five lines instead of three. Deferred and other methods
// never settle, whatever the status.
func (g *EntryGenerator) Generate(tx domain.Transaction) domain.AccountingEntry {
	entry := domain.AccountingEntry{
		Date:        tx.Date,
		Reference:   tx.Reference,
		Description: describeTransaction(tx),
		Type:        tx.Type,
		Metadata: domain.EntryMetadata{
			DocumentNumber: tx.Reference,
			PaymentMethod:  tx.PaymentMethod,
			VATRate:        accounting.VATRate(tx.PriceBeforeTax, tx.VATAmount),
			PriceBeforeTax: tx.PriceBeforeTax.Round(2),
			VATAmount:      tx.VATAmount.Round(2),
			TotalAmount:    tx.TotalPrice.Round(2),
		},
	}

	if tx.Type == domain.Sale {
		entry.Metadata.DocumentType = domain.DocumentInvoice
		entry.Lines = g.saleLines(tx)
	} else {
		entry.Metadata.DocumentType = domain.DocumentSupplierInvoice
		entry.Lines = g.purchaseLines(tx)
	}
	return entry
}

func (g *EntryGenerator) saleLines(tx domain.Transaction) []domain.AccountingLine {
	lines := []domain.AccountingLine{
		{
			AccountCode: g.chart.Sales.Receivable,
			Label:       "Créance client",
			Amount:      domain.DebitAmount(tx.TotalPrice),
			Reference:   tx.Reference,
		},
		{
			AccountCode: g.chart.Sales.VATCollected,
			Label:       "TVA collectée",
			Amount:      domain.CreditAmount(tx.VATAmount),
			Reference:   tx.Reference,
		},
		{
			AccountCode: g.chart.Sales.Revenue,
			Label:       "Vente de marchandises",
			Amount:      domain.CreditAmount(tx.PriceBeforeTax),
			Reference:   tx.Reference,
		},
	}

	if treasury, ok := g.settlementAccount(tx); ok {
		lines = append(lines,
			domain.AccountingLine{
				AccountCode: treasury,
				Label:       fmt.Sprintf("Règlement %s", tx.PaymentMethod),
				Amount:      domain.DebitAmount(tx.TotalPrice),
				Reference:   tx.Reference,
			},
			domain.AccountingLine{
				AccountCode: g.chart.Sales.Receivable,
				Label:       "Règlement client",
				Amount:      domain.CreditAmount(tx.TotalPrice),
				Reference:   tx.Reference,
			},
		)
	}
	return lines
}

func (g *EntryGenerator) purchaseLines(tx domain.Transaction) []domain.AccountingLine {
	lines := []domain.AccountingLine{
		{
			AccountCode: g.chart.Purchases.Expense,
			Label:       "Achat de marchandises",
			Amount:      domain.DebitAmount(tx.PriceBeforeTax),
			Reference:   tx.Reference,
		},
		{
			AccountCode: g.chart.Purchases.VATDeductible,
			Label:       "TVA déductible",
			Amount:      domain.DebitAmount(tx.VATAmount),
			Reference:   tx.Reference,
		},
		{
			AccountCode: g.chart.Purchases.Payable,
			Label:       "Dette fournisseur",
			Amount:      domain.CreditAmount(tx.TotalPrice),
			Reference:   tx.Reference,
		},
	}

	if treasury, ok := g.settlementAccount(tx); ok {
		lines = append(lines,
			domain.AccountingLine{
				AccountCode: g.chart.Purchases.Payable,
				Label:       "Règlement fournisseur",
				Amount:      domain.DebitAmount(tx.TotalPrice),
				Reference:   tx.Reference,
			},
			domain.AccountingLine{
				AccountCode: treasury,
				Label:       fmt.Sprintf("Règlement %s", tx.PaymentMethod),
				Amount:      domain.CreditAmount(tx.TotalPrice),
				Reference:   tx.Reference,
			},
		)
	}
	return lines
}

// settlementAccount resolves the treasury account for the settlement pair.
// Only confirmed transactions paid with an immediate method settle; an
// unmapped method means the receivable or payable simply stays open.
func (g *EntryGenerator) settlementAccount(tx domain.Transaction) (string, bool) {
	if tx.Status != domain.StatusConfirmed || !tx.PaymentMethod.Immediate() {
		return "", false
	}
	return g.chart.TreasuryAccount(tx.PaymentMethod)
}

// ValidateEntry enforces the double-entry invariants on a generated entry:
// debits must equal credits within a cent, and the metadata amounts must
// reconcile (HT + VAT = TTC). Both failures are fatal to the transaction
// being booked; the caller must not materialize a journal entry from it.
func (g *EntryGenerator) ValidateEntry(entry domain.AccountingEntry) error {
	debit, credit := accounting.SumLines(entry.Lines)
	if !accounting.AmountsEqual(debit, credit) {
		return &apperrors.ImbalancedEntryError{DebitTotal: debit, CreditTotal: credit}
	}

	m := entry.Metadata
	if !accounting.AmountsEqual(m.PriceBeforeTax.Add(m.VATAmount), m.TotalAmount) {
		return &apperrors.InconsistentTotalsError{
			PriceBeforeTax: m.PriceBeforeTax,
			VATAmount:      m.VATAmount,
			TotalAmount:    m.TotalAmount,
		}
	}
	return nil
}

func describeTransaction(tx domain.Transaction) string {
	if tx.Type == domain.Sale {
		return fmt.Sprintf("Vente %s", tx.Reference)
	}
	return fmt.Sprintf("Achat %s", tx.Reference)
}
