package services

import (
	"bytes"
	"encoding/csv"

	"github.com/ComptaPME/compta_backend/internal/core/domain"
)

// exportDateLayout is dd/mm/yyyy, matching the French bookkeeping
// spreadsheets the export is pasted into.
const exportDateLayout = "02/01/2006"

var exportHeader = []string{"Date", "Référence", "Compte", "Libellé", "Débit", "Crédit"}

// formatJournalExport renders entries as a semicolon-separated table, one
// row per accounting line, amounts with two decimals.
func formatJournalExport(entries []domain.JournalEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		for _, line := range entry.Lines {
			record := []string{
				entry.Date.Format(exportDateLayout),
				entry.Reference,
				line.AccountCode,
				line.Label,
				line.Amount.Debit.StringFixed(2),
				line.Amount.Credit.StringFixed(2),
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
