package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalType is the categorized ledger book an entry is filed under.
type JournalType string

const (
	JournalSales     JournalType = "sales"
	JournalPurchases JournalType = "purchases"
	JournalBank      JournalType = "bank"
	JournalCash      JournalType = "cash"
	JournalMisc      JournalType = "misc"
)

// Valid reports whether t is one of the five known journals.
func (t JournalType) Valid() bool {
	_, ok := JournalConfigs[t]
	return ok
}

// JournalConfig is the static description of a journal: label, reference
// prefix and purpose.
type JournalConfig struct {
	ID          JournalType `json:"id"`
	Label       string      `json:"label"`
	Prefix      string      `json:"prefix"`
	Description string      `json:"description"`
}

// JournalConfigs is the fixed journal table. Prefixes feed reference
// numbering (VE-2025-00001) and the label/description feed display.
var JournalConfigs = map[JournalType]JournalConfig{
	JournalSales: {
		ID:          JournalSales,
		Label:       "Journal des Ventes",
		Prefix:      "VE",
		Description: "Factures clients et avoirs",
	},
	JournalPurchases: {
		ID:          JournalPurchases,
		Label:       "Journal des Achats",
		Prefix:      "AC",
		Description: "Factures fournisseurs",
	},
	JournalBank: {
		ID:          JournalBank,
		Label:       "Journal de Banque",
		Prefix:      "BQ",
		Description: "Opérations bancaires",
	},
	JournalCash: {
		ID:          JournalCash,
		Label:       "Journal de Caisse",
		Prefix:      "CA",
		Description: "Mouvements espèces",
	},
	JournalMisc: {
		ID:          JournalMisc,
		Label:       "Opérations Diverses",
		Prefix:      "OD",
		Description: "Écritures d'ajustement",
	},
}

// JournalEntry is the persisted projection of a validated accounting entry.
// It is created unvalidated and unlocked; validated flips only through the
// explicit validation action, and locked is terminal (period closing).
type JournalEntry struct {
	EntryID     string           `json:"entryID"`
	JournalType JournalType      `json:"journalType"`
	Reference   string           `json:"reference"`
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Lines       []AccountingLine `json:"lines"`
	Validated   bool             `json:"validated"`
	Locked      bool             `json:"locked"`
	Metadata    EntryMetadata    `json:"metadata"`
	AuditFields
}

// JournalBalance aggregates the debit and credit totals of a set of entries.
// Balance is debit minus credit.
type JournalBalance struct {
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// JournalFilters narrows entry listings; nil fields mean no constraint.
type JournalFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Reference string
	Validated *bool
}
