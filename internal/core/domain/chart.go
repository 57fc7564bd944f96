package domain

import "github.com/ComptaPME/compta_backend/internal/apperrors"

// SaleAccounts maps the business concepts of a sale onto account codes.
type SaleAccounts struct {
	Revenue      string `yaml:"revenue" json:"revenue"`
	Receivable   string `yaml:"receivable" json:"receivable"`
	VATCollected string `yaml:"vatCollected" json:"vatCollected"`
}

// PurchaseAccounts maps the business concepts of a purchase onto account codes.
type PurchaseAccounts struct {
	Expense       string `yaml:"expense" json:"expense"`
	Payable       string `yaml:"payable" json:"payable"`
	VATDeductible string `yaml:"vatDeductible" json:"vatDeductible"`
}

// TreasuryAccounts maps settlement methods onto treasury account codes.
type TreasuryAccounts struct {
	Cash  string `yaml:"cash" json:"cash"`
	Bank  string `yaml:"bank" json:"bank"`
	Check string `yaml:"check" json:"check"`
}

// ChartOfAccounts is the configuration surface of the engine: one account
// code per business concept. It is data, not logic, so a different national
// chart can be swapped in without touching the generator.
type ChartOfAccounts struct {
	Sales     SaleAccounts     `yaml:"sales" json:"sales"`
	Purchases PurchaseAccounts `yaml:"purchases" json:"purchases"`
	Payment   TreasuryAccounts `yaml:"payment" json:"payment"`
}

// DefaultChart returns the French Plan Comptable Général mapping used by the
// original application.
func DefaultChart() ChartOfAccounts {
	return ChartOfAccounts{
		Sales: SaleAccounts{
			Revenue:      "707",    // Ventes de marchandises
			Receivable:   "411",    // Clients
			VATCollected: "445711", // TVA collectée
		},
		Purchases: PurchaseAccounts{
			Expense:       "607",    // Achats de marchandises
			Payable:       "401",    // Fournisseurs
			VATDeductible: "445662", // TVA déductible
		},
		Payment: TreasuryAccounts{
			Cash:  "531", // Caisse
			Bank:  "512", // Banque
			Check: "511", // Valeurs à l'encaissement
		},
	}
}

// Validate checks that every required concept has an account code. A missing
// code is a configuration error, fatal at load time.
func (c ChartOfAccounts) Validate() error {
	concepts := []struct {
		name string
		code string
	}{
		{"sales.revenue", c.Sales.Revenue},
		{"sales.receivable", c.Sales.Receivable},
		{"sales.vatCollected", c.Sales.VATCollected},
		{"purchases.expense", c.Purchases.Expense},
		{"purchases.payable", c.Purchases.Payable},
		{"purchases.vatDeductible", c.Purchases.VATDeductible},
		{"payment.cash", c.Payment.Cash},
		{"payment.bank", c.Payment.Bank},
		{"payment.check", c.Payment.Check},
	}
	for _, concept := range concepts {
		if concept.code == "" {
			return &apperrors.MissingChartEntryError{Concept: concept.name}
		}
	}
	return nil
}

// TreasuryAccount returns the settlement account for a payment method. The
// second return is false for methods with no immediate settlement (deferred,
// other), for which no treasury line is ever generated.
func (c ChartOfAccounts) TreasuryAccount(method PaymentMethod) (string, bool) {
	switch method {
	case PaymentCash:
		return c.Payment.Cash, true
	case PaymentBankTransfer, PaymentCreditCard:
		return c.Payment.Bank, true
	case PaymentCheck:
		return c.Payment.Check, true
	default:
		return "", false
	}
}
