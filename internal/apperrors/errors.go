package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrLocked indicates that a journal entry is locked and can no longer be mutated.
var ErrLocked = errors.New("journal entry is locked")

// ImbalancedEntryError reports an accounting entry whose debit and credit
// totals differ by a cent or more. It carries both computed totals so the
// operator can correct the source transaction.
type ImbalancedEntryError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

func (e *ImbalancedEntryError) Error() string {
	return fmt.Sprintf("unbalanced entry: debit total %s, credit total %s",
		e.DebitTotal.StringFixed(2), e.CreditTotal.StringFixed(2))
}

func (e *ImbalancedEntryError) Unwrap() error { return ErrValidation }

// InconsistentTotalsError reports entry metadata where priceBeforeTax plus
// vatAmount does not reconcile with the declared total.
type InconsistentTotalsError struct {
	PriceBeforeTax decimal.Decimal
	VATAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

func (e *InconsistentTotalsError) Error() string {
	return fmt.Sprintf("inconsistent totals: %s + %s does not match declared total %s",
		e.PriceBeforeTax.StringFixed(2), e.VATAmount.StringFixed(2), e.TotalAmount.StringFixed(2))
}

func (e *InconsistentTotalsError) Unwrap() error { return ErrValidation }

// MissingChartEntryError reports a chart-of-accounts configuration that lacks
// an account code for a required business concept. This is fatal at
// configuration load time, never per transaction.
type MissingChartEntryError struct {
	Concept string
}

func (e *MissingChartEntryError) Error() string {
	return fmt.Sprintf("chart of accounts has no account code for %q", e.Concept)
}
