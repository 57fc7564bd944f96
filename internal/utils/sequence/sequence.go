// Package sequence issues year-scoped, prefix-based document references.
// Journal entries (VE-2025-00012), transactions (TRX-2025-042) and products
// (PRD-2025-007) all share the same numbering scheme, differing only in
// prefix and padding width.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Widths used by the known reference families.
const (
	JournalWidth     = 5
	TransactionWidth = 3
	ProductWidth     = 3
)

// Format renders a reference as <prefix>-<year>-<number zero-padded to width>.
func Format(prefix string, year, width, number int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, width, number)
}

// Next derives the next reference for a prefix and year from the references
// already in use. Numbering is max-based, not count-based: gaps left by
// deleted documents are never refilled, so sequences stay strictly
// increasing for a given (prefix, year).
func Next(prefix string, year, width int, existing []string) string {
	return Format(prefix, year, width, nextNumber(prefix, year, existing))
}

func nextNumber(prefix string, year int, existing []string) int {
	scope := fmt.Sprintf("%s-%d", prefix, year)
	max := 0
	for _, ref := range existing {
		if !strings.HasPrefix(ref, scope) {
			continue
		}
		parts := strings.Split(ref, "-")
		if len(parts) != 3 {
			continue
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}
