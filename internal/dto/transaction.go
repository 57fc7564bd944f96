package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ComptaPME/compta_backend/internal/apperrors"
	"github.com/ComptaPME/compta_backend/internal/core/domain"
	"github.com/ComptaPME/compta_backend/internal/utils/accounting"
)

// CreateTransactionRequest is the payload for submitting a commercial
// transaction to the accounting pipeline. VAT and total may be declared
// explicitly (they are cross-checked downstream) or left empty to be
// computed from the VAT rate.
type CreateTransactionRequest struct {
	Reference      string                   `json:"reference"`
	Type           domain.TransactionType   `json:"type" binding:"required,oneof=sale purchase"`
	Date           time.Time                `json:"date" binding:"required"`
	ProductID      string                   `json:"productID" binding:"required"`
	Quantity       int                      `json:"quantity" binding:"required,gt=0"`
	PriceBeforeTax decimal.Decimal          `json:"priceBeforeTax"`
	VATRate        *decimal.Decimal         `json:"vatRate,omitempty"`
	VATAmount      *decimal.Decimal         `json:"vatAmount,omitempty"`
	TotalPrice     *decimal.Decimal         `json:"totalPrice,omitempty"`
	PaymentMethod  domain.PaymentMethod     `json:"paymentMethod" binding:"required,oneof=cash check bank_transfer credit_card deferred other"`
	PaymentDetails *domain.PaymentDetails   `json:"paymentDetails,omitempty"`
	Discount       *domain.Discount         `json:"discount,omitempty"`
	Status         domain.TransactionStatus `json:"status" binding:"required,oneof=pending confirmed cancelled"`
	Notes          string                   `json:"notes,omitempty"`
}

// ValidateAmounts cross-checks a fully declared amount triple (rate, VAT,
// total) against values recomputed from the discounted pre-tax price.
// Partially declared amounts are derived in ToTransaction and cannot
// disagree; the downstream entry validator still guards HT + VAT = TTC.
func (r CreateTransactionRequest) ValidateAmounts() error {
	if r.VATRate == nil || r.VATAmount == nil || r.TotalPrice == nil {
		return nil
	}
	priceBeforeTax := accounting.DiscountedPrice(r.PriceBeforeTax, r.Discount).Round(2)
	if !accounting.ValidateAmounts(priceBeforeTax, *r.VATAmount, *r.TotalPrice, *r.VATRate) {
		return fmt.Errorf("%w: declared VAT and total do not reconcile with rate %s",
			apperrors.ErrValidation, r.VATRate.String())
	}
	return nil
}

// ToTransaction converts the request into a domain transaction. The discount
// is applied to the pre-tax price first; missing VAT or total amounts are
// then derived with 2-decimal rounding. Declared amounts are passed through
// untouched so the entry validator can catch inconsistencies.
func (r CreateTransactionRequest) ToTransaction() domain.Transaction {
	priceBeforeTax := accounting.DiscountedPrice(r.PriceBeforeTax, r.Discount).Round(2)

	var vatAmount decimal.Decimal
	switch {
	case r.VATAmount != nil:
		vatAmount = r.VATAmount.Round(2)
	case r.VATRate != nil:
		vatAmount = accounting.VATAmount(priceBeforeTax, *r.VATRate)
	default:
		vatAmount = decimal.Zero
	}

	var totalPrice decimal.Decimal
	if r.TotalPrice != nil {
		totalPrice = r.TotalPrice.Round(2)
	} else {
		totalPrice = accounting.TotalAmount(priceBeforeTax, vatAmount)
	}

	return domain.Transaction{
		TransactionID:  uuid.NewString(),
		Reference:      r.Reference,
		Type:           r.Type,
		Date:           r.Date,
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		PriceBeforeTax: priceBeforeTax,
		VATAmount:      vatAmount,
		TotalPrice:     totalPrice,
		PaymentMethod:  r.PaymentMethod,
		PaymentDetails: r.PaymentDetails,
		Discount:       r.Discount,
		Status:         r.Status,
		Notes:          r.Notes,
	}
}
