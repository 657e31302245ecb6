package enums

import "fmt"

// OrderStatus mirrors the lifecycle states the marketplace API assigns to an
// order after dispatch.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendente"
	OrderStatusConfirmed OrderStatus = "confirmado"
	OrderStatusInTransit OrderStatus = "em_transporte"
	OrderStatusDelivered OrderStatus = "entregue"
	OrderStatusCancelled OrderStatus = "cancelado"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pendente",
	OrderStatusConfirmed: "Confirmado",
	OrderStatusInTransit: "Em Transporte",
	OrderStatusDelivered: "Entregue",
	OrderStatusCancelled: "Cancelado",
}

var orderStatusColors = map[OrderStatus]string{
	OrderStatusPending:   "#f59e0b",
	OrderStatusConfirmed: "#3b82f6",
	OrderStatusInTransit: "#8b5cf6",
	OrderStatusDelivered: "#10b981",
	OrderStatusCancelled: "#ef4444",
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// Label returns the human-readable display text for the status.
func (o OrderStatus) Label() string {
	if label, ok := orderStatusLabels[o]; ok {
		return label
	}
	return string(o)
}

// Color returns the display color associated with the status.
func (o OrderStatus) Color() string {
	if color, ok := orderStatusColors[o]; ok {
		return color
	}
	return "#6b7280"
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
