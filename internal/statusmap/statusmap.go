package statusmap

import "github.com/umarxon/delivera-backend/pkg/enums"

// Resolution is the canonical meaning of a partner status code.
type Resolution struct {
	Status          enums.OrderStatus
	ReceiptReceived bool
	ReleasesStock   bool
}

// Partners add codes without notice, so unknown codes degrade to an in-transit
// resolution with no financial confirmation and no stock release.
var defaultResolution = Resolution{
	Status:          enums.OrderStatusInTransit,
	ReceiptReceived: false,
	ReleasesStock:   false,
}

// fargoTable maps Fargo's numeric status ids. Codes are kept as strings
// because the webhook payload carries them as JSON numbers or strings
// depending on the partner API version.
var fargoTable = map[string]Resolution{
	"1": {Status: enums.OrderStatusCreated},
	"2": {Status: enums.OrderStatusInTransit},
	"3": {Status: enums.OrderStatusInTransit},
	"4": {Status: enums.OrderStatusInTransit},
	"5": {Status: enums.OrderStatusInTransit},
	"6": {Status: enums.OrderStatusDelivered, ReceiptReceived: true},
	"7": {Status: enums.OrderStatusReturned},
	"8": {Status: enums.OrderStatusReturnedInStock, ReleasesStock: true},
	"9": {Status: enums.OrderStatusCancelled, ReleasesStock: true},
}

// btsTable maps BTS's mnemonic status codes.
var btsTable = map[string]Resolution{
	"CRE": {Status: enums.OrderStatusCreated},
	"REG": {Status: enums.OrderStatusInTransit},
	"TRN": {Status: enums.OrderStatusInTransit},
	"ARR": {Status: enums.OrderStatusInTransit},
	"DLV": {Status: enums.OrderStatusDelivered, ReceiptReceived: true},
	"RET": {Status: enums.OrderStatusReturned},
	"RIS": {Status: enums.OrderStatusReturnedInStock, ReleasesStock: true},
	"CAN": {Status: enums.OrderStatusCancelled, ReleasesStock: true},
}

var tablesByPartner = map[enums.DeliveryPartner]map[string]Resolution{
	enums.DeliveryPartnerFargo: fargoTable,
	enums.DeliveryPartnerBTS:   btsTable,
}

// Resolve returns the canonical resolution for a partner status code. It is
// total: unknown partners and unknown codes resolve to the safe default.
func Resolve(partner enums.DeliveryPartner, code string) Resolution {
	table, ok := tablesByPartner[partner]
	if !ok {
		return defaultResolution
	}
	if res, ok := table[code]; ok {
		return res
	}
	return defaultResolution
}
