package enums

import "strings"

// PaymentMethod labels how a sale was tendered. Unknown labels are kept as-is.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodCard   PaymentMethod = "Card"
	PaymentMethodMobile PaymentMethod = "Mobile"

	// DefaultPaymentMethod applies when a sale request omits the label.
	DefaultPaymentMethod = PaymentMethodCash

	maxPaymentMethodLen = 32
)

var knownPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodMobile,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsKnown reports whether the label is one of the recognized tender types.
func (p PaymentMethod) IsKnown() bool {
	for _, candidate := range knownPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// NormalizePaymentMethod trims the label, matches known tenders case-insensitively,
// falls back to Cash when blank, and caps opaque labels at 32 characters.
func NormalizePaymentMethod(value string) PaymentMethod {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultPaymentMethod
	}
	for _, candidate := range knownPaymentMethods {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate
		}
	}
	runes := []rune(trimmed)
	if len(runes) > maxPaymentMethodLen {
		runes = runes[:maxPaymentMethodLen]
	}
	return PaymentMethod(runes)
}
