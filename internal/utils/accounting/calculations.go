package accounting

import (
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// centTolerance absorbs sub-cent drift introduced by repeated 2-decimal
// rounding across pipeline steps. All monetary comparisons go through it
// rather than exact equality.
var centTolerance = decimal.New(1, -2) // 0.01

// VATAmount computes priceBeforeTax * vatRate rounded to two decimal places.
// decimal.Round rounds half away from zero.
func VATAmount(priceBeforeTax, vatRate decimal.Decimal) decimal.Decimal {
	return priceBeforeTax.Mul(vatRate).Round(2)
}

// TotalAmount computes priceBeforeTax + vatAmount rounded to two decimal places.
func TotalAmount(priceBeforeTax, vatAmount decimal.Decimal) decimal.Decimal {
	return priceBeforeTax.Add(vatAmount).Round(2)
}

// AmountsEqual reports whether two monetary amounts agree within a cent.
func AmountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(centTolerance)
}

// ValidateAmounts cross-checks declared VAT and total against values
// recomputed from the pre-tax price and rate.
func ValidateAmounts(priceBeforeTax, vatAmount, totalAmount, vatRate decimal.Decimal) bool {
	computedVAT := VATAmount(priceBeforeTax, vatRate)
	computedTotal := TotalAmount(priceBeforeTax, computedVAT)
	return AmountsEqual(computedVAT, vatAmount) && AmountsEqual(computedTotal, totalAmount)
}

// SumLines totals the debit and credit sides of a set of accounting lines.
func SumLines(lines []domain.AccountingLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Amount.Debit)
		credit = credit.Add(line.Amount.Credit)
	}
	return debit, credit
}

// LinesBalanced reports whether debits equal credits within a cent.
func LinesBalanced(lines []domain.AccountingLine) bool {
	debit, credit := SumLines(lines)
	return AmountsEqual(debit, credit)
}

// VATRate recomputes the rate from the declared amounts. A zero pre-tax
// price (fully discounted transaction) yields rate zero rather than a
// division by zero.
func VATRate(priceBeforeTax, vatAmount decimal.Decimal) decimal.Decimal {
	if priceBeforeTax.IsZero() {
		return decimal.Zero
	}
	return vatAmount.Div(priceBeforeTax)
}

// DiscountedPrice applies an optional discount to a price. Percentage
// discounts scale the price; fixed discounts subtract, floored at zero.
func DiscountedPrice(price decimal.Decimal, discount *domain.Discount) decimal.Decimal {
	if discount == nil {
		return price
	}
	switch discount.Type {
	case domain.DiscountPercentage:
		factor := decimal.New(1, 0).Sub(discount.Value.Div(decimal.New(100, 0)))
		return price.Mul(factor).Round(2)
	case domain.DiscountFixed:
		reduced := price.Sub(discount.Value)
		if reduced.IsNegative() {
			return decimal.Zero
		}
		return reduced.Round(2)
	default:
		return price
	}
}
