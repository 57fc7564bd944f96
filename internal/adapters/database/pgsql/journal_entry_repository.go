package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	portsrepo "github.com/ComptaPME/compta_backend/internal/core/ports/repositories"
)

// PgxJournalEntryRepository persists journal entries and their lines.
type PgxJournalEntryRepository struct {
	pool *pgxpool.Pool
}

// NewPgxJournalEntryRepository creates a new repository for journal entry data.
func NewPgxJournalEntryRepository(pool *pgxpool.Pool) portsrepo.JournalEntryRepository {
	return &PgxJournalEntryRepository{pool: pool}
}

var _ portsrepo.JournalEntryRepository = (*PgxJournalEntryRepository)(nil)

// SaveEntry persists an entry and its lines within one DB transaction.
func (r *PgxJournalEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, journal_type, reference, entry_date, description,
			validated, locked, document_type, document_number, payment_method,
			vat_rate, price_before_tax, vat_amount, total_amount,
			created_at, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.JournalType,
		entry.Reference,
		entry.Date,
		entry.Description,
		entry.Validated,
		entry.Locked,
		entry.Metadata.DocumentType,
		entry.Metadata.DocumentNumber,
		entry.Metadata.PaymentMethod,
		entry.Metadata.VATRate,
		entry.Metadata.PriceBeforeTax,
		entry.Metadata.VATAmount,
		entry.Metadata.TotalAmount,
		entry.CreatedAt,
		entry.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry %s: %w", entry.EntryID, err)
	}

	// Lines keep their generation order through the position column.
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (entry_id, position, account_code, label, debit, credit, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for i, line := range entry.Lines {
		batch.Queue(lineQuery,
			entry.EntryID,
			i,
			line.AccountCode,
			line.Label,
			line.Amount.Debit,
			line.Amount.Credit,
			line.Reference,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert lines for entry %s: %w", entry.EntryID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// FindEntryByID retrieves an entry and its lines.
func (r *PgxJournalEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT entry_id, journal_type, reference, entry_date, description,
		       validated, locked, document_type, document_number, payment_method,
		       vat_rate, price_before_tax, vat_amount, total_amount,
		       created_at, last_updated_at
		FROM journal_entries
		WHERE entry_id = $1;
	`
	var entry domain.JournalEntry
	err := r.pool.QueryRow(ctx, query, entryID).Scan(
		&entry.EntryID,
		&entry.JournalType,
		&entry.Reference,
		&entry.Date,
		&entry.Description,
		&entry.Validated,
		&entry.Locked,
		&entry.Metadata.DocumentType,
		&entry.Metadata.DocumentNumber,
		&entry.Metadata.PaymentMethod,
		&entry.Metadata.VATRate,
		&entry.Metadata.PriceBeforeTax,
		&entry.Metadata.VATAmount,
		&entry.Metadata.TotalAmount,
		&entry.CreatedAt,
		&entry.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	linesByEntry, err := r.findLines(ctx, []string{entry.EntryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = linesByEntry[entry.EntryID]
	return &entry, nil
}

// ListEntries retrieves the entries of one journal, narrowed by filters,
// ordered by date then reference.
func (r *PgxJournalEntryRepository) ListEntries(ctx context.Context, journalType domain.JournalType, filters domain.JournalFilters) ([]domain.JournalEntry, error) {
	query := `
		SELECT entry_id, journal_type, reference, entry_date, description,
		       validated, locked, document_type, document_number, payment_method,
		       vat_rate, price_before_tax, vat_amount, total_amount,
		       created_at, last_updated_at
		FROM journal_entries
		WHERE journal_type = $1
	`
	args := []interface{}{journalType}
	var clauses string
	clauses, args = listEntriesFilter(filters, args)
	query += clauses + " ORDER BY entry_date, reference;"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for journal %s: %w", journalType, err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	var entryIDs []string
	for rows.Next() {
		var entry domain.JournalEntry
		err := rows.Scan(
			&entry.EntryID,
			&entry.JournalType,
			&entry.Reference,
			&entry.Date,
			&entry.Description,
			&entry.Validated,
			&entry.Locked,
			&entry.Metadata.DocumentType,
			&entry.Metadata.DocumentNumber,
			&entry.Metadata.PaymentMethod,
			&entry.Metadata.VATRate,
			&entry.Metadata.PriceBeforeTax,
			&entry.Metadata.VATAmount,
			&entry.Metadata.TotalAmount,
			&entry.CreatedAt,
			&entry.LastUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, entry)
		entryIDs = append(entryIDs, entry.EntryID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	if len(entries) == 0 {
		return entries, nil
	}

	linesByEntry, err := r.findLines(ctx, entryIDs)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
	}
	return entries, nil
}

// listEntriesFilter renders the optional WHERE clauses for ListEntries.
// Period bounds are inclusive and date-only: entry_date keeps the
// transaction's time of day, so both bounds are normalized to midnight and
// the end bound compares exclusively against the start of the following day.
func listEntriesFilter(filters domain.JournalFilters, args []interface{}) (string, []interface{}) {
	var clauses string
	if filters.StartDate != nil {
		args = append(args, startOfDay(*filters.StartDate))
		clauses += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, startOfDay(*filters.EndDate).AddDate(0, 0, 1))
		clauses += fmt.Sprintf(" AND entry_date < $%d", len(args))
	}
	if filters.Reference != "" {
		args = append(args, "%"+filters.Reference+"%")
		clauses += fmt.Sprintf(" AND reference ILIKE $%d", len(args))
	}
	if filters.Validated != nil {
		args = append(args, *filters.Validated)
		clauses += fmt.Sprintf(" AND validated = $%d", len(args))
	}
	return clauses, args
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ListReferencesByPrefix returns every entry reference starting with prefix.
func (r *PgxJournalEntryRepository) ListReferencesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return r.listStrings(ctx,
		`SELECT reference FROM journal_entries WHERE reference LIKE $1 || '%';`, prefix)
}

// ListDocumentNumbersByPrefix returns the distinct booked document numbers
// starting with prefix.
func (r *PgxJournalEntryRepository) ListDocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return r.listStrings(ctx,
		`SELECT DISTINCT document_number FROM journal_entries WHERE document_number LIKE $1 || '%';`, prefix)
}

func (r *PgxJournalEntryRepository) listStrings(ctx context.Context, query, prefix string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list references for prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan reference row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reference rows: %w", err)
	}
	return refs, nil
}

// MarkEntryValidated flips the validated flag. Locked entries are never
// touched; the service checks the lock before calling.
func (r *PgxJournalEntryRepository) MarkEntryValidated(ctx context.Context, entryID string, updatedAt time.Time) error {
	return r.setFlag(ctx, entryID, "validated", updatedAt)
}

// MarkEntryLocked flips the locked flag.
func (r *PgxJournalEntryRepository) MarkEntryLocked(ctx context.Context, entryID string, updatedAt time.Time) error {
	return r.setFlag(ctx, entryID, "locked", updatedAt)
}

func (r *PgxJournalEntryRepository) setFlag(ctx context.Context, entryID, column string, updatedAt time.Time) error {
	// column is one of two fixed identifiers, never user input.
	query := fmt.Sprintf(`UPDATE journal_entries SET %s = TRUE, last_updated_at = $2 WHERE entry_id = $1;`, column)
	tag, err := r.pool.Exec(ctx, query, entryID, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update %s for entry %s: %w", column, entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxJournalEntryRepository) findLines(ctx context.Context, entryIDs []string) (map[string][]domain.AccountingLine, error) {
	query := `
		SELECT entry_id, account_code, label, debit, credit, reference
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, position;
	`
	rows, err := r.pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	linesByEntry := make(map[string][]domain.AccountingLine)
	for rows.Next() {
		var entryID string
		var line domain.AccountingLine
		err := rows.Scan(
			&entryID,
			&line.AccountCode,
			&line.Label,
			&line.Amount.Debit,
			&line.Amount.Credit,
			&line.Reference,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		linesByEntry[entryID] = append(linesByEntry[entryID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return linesByEntry, nil
}
