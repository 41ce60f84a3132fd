package tablestatus

import "errors"

// Status is the lifecycle of a customer's table visit. Transitions are driven
// by staff actions except free -> occupied, which happens when a customer is
// seated.
type Status string

const (
	StatusFree      Status = "free"
	StatusOccupied  Status = "occupied"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
)

var (
	ErrInvalidStatus  = errors.New("invalid table status")
	ErrNotServed      = errors.New("table has not been served yet")
	ErrNoCurrentOrder = errors.New("customer has no current order")
)

func Valid(s Status) bool {
	switch s {
	case StatusFree, StatusOccupied, StatusPreparing, StatusReady, StatusServed:
		return true
	}
	return false
}

// CanGenerateInvoice gates invoice generation: the table must be served and
// the customer must still hold a current order.
func CanGenerateInvoice(s Status, hasCurrentOrder bool) error {
	if s != StatusServed {
		return ErrNotServed
	}
	if !hasCurrentOrder {
		return ErrNoCurrentOrder
	}
	return nil
}
