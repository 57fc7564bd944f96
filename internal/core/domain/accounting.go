package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the source document of an accounting entry.
type DocumentType string

const (
	DocumentInvoice         DocumentType = "FACTURE"
	DocumentSupplierInvoice DocumentType = "FACTURE_FOURNISSEUR"
)

// Amount holds the debit and credit sides of an accounting line. The
// generator always leaves exactly one side non-zero; the type keeps both for
// adjustment entries that may need either.
type Amount struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// DebitAmount returns an Amount with only the debit side set.
func DebitAmount(v decimal.Decimal) Amount {
	return Amount{Debit: v.Round(2), Credit: decimal.Zero}
}

// CreditAmount returns an Amount with only the credit side set.
func CreditAmount(v decimal.Decimal) Amount {
	return Amount{Debit: decimal.Zero, Credit: v.Round(2)}
}

// AccountingLine is a single debit or credit movement on one account.
type AccountingLine struct {
	AccountCode string `json:"accountCode"`
	Label       string `json:"label"`
	Amount      Amount `json:"amount"`
	Reference   string `json:"reference,omitempty"`
}

// EntryMetadata carries the source-document amounts alongside the lines so
// validators can cross-check declared totals against recomputed ones.
type EntryMetadata struct {
	DocumentType   DocumentType    `json:"documentType"`
	DocumentNumber string          `json:"documentNumber"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod,omitempty"`
	VATRate        decimal.Decimal `json:"vatRate"`
	PriceBeforeTax decimal.Decimal `json:"priceBeforeTax"`
	VATAmount      decimal.Decimal `json:"vatAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// AccountingEntry is the balanced set of double-entry lines produced for one
// commercial transaction. Created once by the generator, never mutated, and
// consumed immediately by validation before being projected into a
// JournalEntry.
type AccountingEntry struct {
	Date        time.Time        `json:"date"`
	Reference   string           `json:"reference"`
	Description string           `json:"description"`
	Type        TransactionType  `json:"type"`
	Lines       []AccountingLine `json:"lines"`
	Metadata    EntryMetadata    `json:"metadata"`
}
