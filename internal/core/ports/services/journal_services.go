package services

import (
	"context"

	"github.com/ComptaPME/compta_backend/internal/core/domain"
)

// JournalReaderSvc defines read operations over the journals.
type JournalReaderSvc interface {
	// ListJournals returns the static journal table (label, prefix, description).
	ListJournals() []domain.JournalConfig

	// GetEntryByID retrieves one journal entry.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves the entries of one journal, narrowed by filters.
	ListEntries(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) ([]domain.JournalEntry, error)

	// Balance aggregates debit and credit totals over the filtered entries.
	Balance(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) (domain.JournalBalance, error)

	// ExportCSV renders the filtered entries as a semicolon-separated export,
	// one row per accounting line.
	ExportCSV(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) ([]byte, error)
}

// JournalWriterSvc defines the operations that create or advance journal entries.
type JournalWriterSvc interface {
	// CreateFromTransaction runs the full pipeline for one commercial
	// transaction: generate the accounting entry, validate it, classify the
	// journal, issue a reference and persist the resulting journal entry.
	CreateFromTransaction(ctx context.Context, tx domain.Transaction) (*domain.JournalEntry, error)

	// ValidateEntry re-checks an entry's balance and flips its validated flag.
	ValidateEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// LockEntry marks a validated entry as locked (period closing). Terminal.
	LockEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal operations for handlers.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
