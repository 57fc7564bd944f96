package repositories

import (
	"context"
	"time"

	"github.com/ComptaPME/compta_backend/internal/core/domain"
)

// JournalEntryReader defines read operations for journal entry data.
type JournalEntryReader interface {
	// FindEntryByID retrieves a specific journal entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves the entries of one journal, narrowed by filters,
	// ordered by date then reference.
	ListEntries(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) ([]domain.JournalEntry, error)

	// ListReferencesByPrefix returns every entry reference starting with the
	// given prefix (e.g. "VE-2025"). Reference issuance re-derives the next
	// sequence number from this scan on every request; there is no separate
	// persisted counter.
	ListReferencesByPrefix(ctx context.Context, prefix string) ([]string, error)

	// ListDocumentNumbersByPrefix returns the distinct source-document numbers
	// (transaction references) starting with the given prefix.
	ListDocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// JournalEntryWriter defines write operations for journal entry data.
type JournalEntryWriter interface {
	// SaveEntry persists a journal entry and its lines atomically.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkEntryValidated flips the validated flag of an entry.
	MarkEntryValidated(ctx context.Context, entryID string, updatedAt time.Time) error

	// MarkEntryLocked flips the locked flag of an entry. Locking is terminal.
	MarkEntryLocked(ctx context.Context, entryID string, updatedAt time.Time) error
}

// JournalEntryRepository combines read and write operations for persistence
// adapters.
type JournalEntryRepository interface {
	JournalEntryReader
	JournalEntryWriter
}
