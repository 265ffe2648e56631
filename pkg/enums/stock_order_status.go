package enums

import "fmt"

// StockOrderStatus tracks a store's replenishment request.
type StockOrderStatus string

const (
	StockOrderStatusRequested StockOrderStatus = "REQUESTED"
	StockOrderStatusApproved  StockOrderStatus = "APPROVED"
	StockOrderStatusReceived  StockOrderStatus = "RECEIVED"
	StockOrderStatusRejected  StockOrderStatus = "REJECTED"
)

var validStockOrderStatuses = []StockOrderStatus{
	StockOrderStatusRequested,
	StockOrderStatusApproved,
	StockOrderStatusReceived,
	StockOrderStatusRejected,
}

// RECEIVED and REJECTED are terminal.
var stockOrderTransitions = map[StockOrderStatus][]StockOrderStatus{
	StockOrderStatusRequested: {StockOrderStatusApproved, StockOrderStatusRejected},
	StockOrderStatusApproved:  {StockOrderStatusReceived, StockOrderStatusRejected},
	StockOrderStatusReceived:  {},
	StockOrderStatusRejected:  {},
}

// String implements fmt.Stringer.
func (s StockOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockOrderStatus.
func (s StockOrderStatus) IsValid() bool {
	for _, candidate := range validStockOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving from the current status to next is a
// legal edge in the lifecycle.
func (s StockOrderStatus) CanTransition(next StockOrderStatus) bool {
	for _, candidate := range stockOrderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseStockOrderStatus converts raw input into a StockOrderStatus.
func ParseStockOrderStatus(value string) (StockOrderStatus, error) {
	for _, candidate := range validStockOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock order status %q", value)
}
