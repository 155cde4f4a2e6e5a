package enums

import "fmt"

// MovementDirection is the sign of a cash movement.
type MovementDirection string

const (
	MovementIn  MovementDirection = "in"
	MovementOut MovementDirection = "out"
)

// IsValid reports whether the value is a known MovementDirection.
func (m MovementDirection) IsValid() bool {
	return m == MovementIn || m == MovementOut
}

// ReferenceType names the logical cause of a cash movement. Together with the
// reference id it must be unique per movement.
type ReferenceType string

const (
	ReferenceTypeExpense        ReferenceType = "expense"
	ReferenceTypeExpenseRefund  ReferenceType = "expense_refund"
	ReferenceTypeAdjustment     ReferenceType = "adjustment"
	ReferenceTypeCustomerRefund ReferenceType = "customer_refund"
)

var validReferenceTypes = []ReferenceType{
	ReferenceTypeExpense,
	ReferenceTypeExpenseRefund,
	ReferenceTypeAdjustment,
	ReferenceTypeCustomerRefund,
}

// String implements fmt.Stringer.
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReferenceType.
func (r ReferenceType) IsValid() bool {
	for _, candidate := range validReferenceTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReferenceType converts raw input into a ReferenceType.
func ParseReferenceType(value string) (ReferenceType, error) {
	for _, candidate := range validReferenceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reference type %q", value)
}
