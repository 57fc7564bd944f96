package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ComptaPME/compta_backend/internal/core/domain"
)

// JournalConfigResponse describes one journal of the journal table.
type JournalConfigResponse struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Prefix      string `json:"prefix"`
	Description string `json:"description"`
}

// AmountResponse mirrors the debit/credit pair of an accounting line.
type AmountResponse struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// LineResponse is one accounting line of a journal entry.
type LineResponse struct {
	AccountCode string         `json:"accountCode"`
	Label       string         `json:"label"`
	Amount      AmountResponse `json:"amount"`
	Reference   string         `json:"reference,omitempty"`
}

// EntryMetadataResponse carries the source-document amounts of an entry.
type EntryMetadataResponse struct {
	DocumentType   string          `json:"documentType"`
	DocumentNumber string          `json:"documentNumber"`
	PaymentMethod  string          `json:"paymentMethod,omitempty"`
	VATRate        decimal.Decimal `json:"vatRate"`
	PriceBeforeTax decimal.Decimal `json:"priceBeforeTax"`
	VATAmount      decimal.Decimal `json:"vatAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// JournalEntryResponse is the full journal entry as displayed by clients.
type JournalEntryResponse struct {
	EntryID     string                `json:"entryID"`
	JournalType string                `json:"journalType"`
	Reference   string                `json:"reference"`
	Date        time.Time             `json:"date"`
	Description string                `json:"description"`
	Lines       []LineResponse        `json:"lines"`
	Validated   bool                  `json:"validated"`
	Locked      bool                  `json:"locked"`
	Metadata    EntryMetadataResponse `json:"metadata"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// BalanceResponse aggregates debit/credit totals over a set of entries.
type BalanceResponse struct {
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// ListEntriesResponse combines the filtered entries with their aggregate.
type ListEntriesResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
	Balance BalanceResponse        `json:"balance"`
}

// ToJournalConfigResponses converts the journal table.
func ToJournalConfigResponses(configs []domain.JournalConfig) []JournalConfigResponse {
	responses := make([]JournalConfigResponse, len(configs))
	for i, cfg := range configs {
		responses[i] = JournalConfigResponse{
			ID:          string(cfg.ID),
			Label:       cfg.Label,
			Prefix:      cfg.Prefix,
			Description: cfg.Description,
		}
	}
	return responses
}

// ToJournalEntryResponse converts a domain journal entry.
func ToJournalEntryResponse(entry *domain.JournalEntry) JournalEntryResponse {
	lines := make([]LineResponse, len(entry.Lines))
	for i, line := range entry.Lines {
		lines[i] = LineResponse{
			AccountCode: line.AccountCode,
			Label:       line.Label,
			Amount:      AmountResponse{Debit: line.Amount.Debit, Credit: line.Amount.Credit},
			Reference:   line.Reference,
		}
	}
	return JournalEntryResponse{
		EntryID:     entry.EntryID,
		JournalType: string(entry.JournalType),
		Reference:   entry.Reference,
		Date:        entry.Date,
		Description: entry.Description,
		Lines:       lines,
		Validated:   entry.Validated,
		Locked:      entry.Locked,
		Metadata: EntryMetadataResponse{
			DocumentType:   string(entry.Metadata.DocumentType),
			DocumentNumber: entry.Metadata.DocumentNumber,
			PaymentMethod:  string(entry.Metadata.PaymentMethod),
			VATRate:        entry.Metadata.VATRate,
			PriceBeforeTax: entry.Metadata.PriceBeforeTax,
			VATAmount:      entry.Metadata.VATAmount,
			TotalAmount:    entry.Metadata.TotalAmount,
		},
		CreatedAt: entry.CreatedAt,
	}
}

// ToJournalEntryResponses converts a slice of journal entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ToBalanceResponse converts a journal balance aggregate.
func ToBalanceResponse(b domain.JournalBalance) BalanceResponse {
	return BalanceResponse{Debit: b.Debit, Credit: b.Credit, Balance: b.Balance}
}
