package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a commercial transaction is a sale or a purchase.
type TransactionType string

const (
	Sale     TransactionType = "sale"
	Purchase TransactionType = "purchase"
)

// TransactionStatus is the lifecycle state of a commercial transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusCancelled TransactionStatus = "cancelled"
)

// PaymentMethod is how a transaction is settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCheck        PaymentMethod = "check"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDeferred     PaymentMethod = "deferred"
	PaymentOther        PaymentMethod = "other"
)

// Immediate reports whether the method settles the invoice at once.
// Deferred and other payments leave the receivable or payable open.
func (m PaymentMethod) Immediate() bool {
	switch m {
	case PaymentCash, PaymentCheck, PaymentBankTransfer, PaymentCreditCard:
		return true
	}
	return false
}

// DiscountType selects how a discount value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is a price reduction applied to the pre-tax amount.
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// CheckDetails carries settlement data for check payments.
type CheckDetails struct {
	CheckNumber string `json:"checkNumber"`
}

// TransferDetails carries settlement data for bank transfer payments.
type TransferDetails struct {
	TransferReference string `json:"transferReference"`
}

// DeferredDetails carries the installment plan for deferred payments.
type DeferredDetails struct {
	Installments int  `json:"installments"` // 2, 3 or 4
	IsPaid       bool `json:"isPaid"`
}

// PaymentDetails is a variant record keyed by payment method: exactly the
// field matching the method may be set. Impossible combinations (say, a check
// number on a cash payment) are rejected by Validate.
type PaymentDetails struct {
	Check    *CheckDetails    `json:"check,omitempty"`
	Transfer *TransferDetails `json:"transfer,omitempty"`
	Deferred *DeferredDetails `json:"deferred,omitempty"`
	Other    string           `json:"other,omitempty"`
}

// Validate checks that the populated variant matches the payment method.
func (d *PaymentDetails) Validate(method PaymentMethod) error {
	if d == nil {
		return nil
	}
	if d.Check != nil && method != PaymentCheck {
		return fmt.Errorf("check details are only valid for check payments, got %q", method)
	}
	if d.Transfer != nil && method != PaymentBankTransfer {
		return fmt.Errorf("transfer details are only valid for bank transfer payments, got %q", method)
	}
	if d.Deferred != nil && method != PaymentDeferred {
		return fmt.Errorf("deferred details are only valid for deferred payments, got %q", method)
	}
	if d.Other != "" && method != PaymentOther {
		return fmt.Errorf("free-form details are only valid for method other, got %q", method)
	}
	if d.Deferred != nil {
		if n := d.Deferred.Installments; n < 2 || n > 4 {
			return fmt.Errorf("deferred payments allow 2 to 4 installments, got %d", n)
		}
	}
	return nil
}

// Transaction is a commercial sale or purchase as recorded by the inventory
// module. It is the immutable input of the accounting pipeline; amounts are
// already rounded to two decimal places and totalPrice must reconcile with
// priceBeforeTax plus vatAmount within a cent.
type Transaction struct {
	TransactionID  string            `json:"transactionID"`
	Reference      string            `json:"reference"` // e.g. TRX-2025-042
	Type           TransactionType   `json:"type"`
	Date           time.Time         `json:"date"`
	ProductID      string            `json:"productID"`
	Quantity       int               `json:"quantity"`
	PriceBeforeTax decimal.Decimal   `json:"priceBeforeTax"` // HT
	VATAmount      decimal.Decimal   `json:"vatAmount"`
	TotalPrice     decimal.Decimal   `json:"totalPrice"` // TTC
	PaymentMethod  PaymentMethod     `json:"paymentMethod"`
	PaymentDetails *PaymentDetails   `json:"paymentDetails,omitempty"`
	Discount       *Discount         `json:"discount,omitempty"`
	Status         TransactionStatus `json:"status"`
	Notes          string            `json:"notes,omitempty"`
}
