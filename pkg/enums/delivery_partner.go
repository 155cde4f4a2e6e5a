package enums

import "fmt"

// DeliveryPartner identifies which courier owns the foreign order record.
// Partner status code spaces are not comparable across partners.
type DeliveryPartner string

const (
	DeliveryPartnerFargo DeliveryPartner = "fargo"
	DeliveryPartnerBTS   DeliveryPartner = "bts"
)

var validDeliveryPartners = []DeliveryPartner{
	DeliveryPartnerFargo,
	DeliveryPartnerBTS,
}

// String implements fmt.Stringer.
func (d DeliveryPartner) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryPartner.
func (d DeliveryPartner) IsValid() bool {
	for _, candidate := range validDeliveryPartners {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryPartner converts raw input into a DeliveryPartner.
func ParseDeliveryPartner(value string) (DeliveryPartner, error) {
	for _, candidate := range validDeliveryPartners {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery partner %q", value)
}
