package enums

import "fmt"

// ProfitStatus tracks settlement of a profit record.
type ProfitStatus string

const (
	ProfitStatusPending ProfitStatus = "pending"
	ProfitStatusSettled ProfitStatus = "settled"
)

// IsValid reports whether the value is a known ProfitStatus.
func (p ProfitStatus) IsValid() bool {
	return p == ProfitStatusPending || p == ProfitStatusSettled
}

// ParseProfitStatus converts raw input into a ProfitStatus.
func ParseProfitStatus(value string) (ProfitStatus, error) {
	switch ProfitStatus(value) {
	case ProfitStatusPending:
		return ProfitStatusPending, nil
	case ProfitStatusSettled:
		return ProfitStatusSettled, nil
	}
	return "", fmt.Errorf("invalid profit status %q", value)
}
