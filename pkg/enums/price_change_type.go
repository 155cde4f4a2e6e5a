package enums

import "fmt"

// PriceChangeType classifies drift between the created and reported products price.
type PriceChangeType string

const (
	PriceChangeNone     PriceChangeType = "none"
	PriceChangeDiscount PriceChangeType = "discount"
	PriceChangeIncrease PriceChangeType = "increase"
)

var validPriceChangeTypes = []PriceChangeType{
	PriceChangeNone,
	PriceChangeDiscount,
	PriceChangeIncrease,
}

// String implements fmt.Stringer.
func (p PriceChangeType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceChangeType.
func (p PriceChangeType) IsValid() bool {
	for _, candidate := range validPriceChangeTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceChangeType converts raw input into a PriceChangeType.
func ParsePriceChangeType(value string) (PriceChangeType, error) {
	for _, candidate := range validPriceChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price change type %q", value)
}
