package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus es la enumeración cerrada del ciclo de vida de una solicitud de pedido.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderApproved  OrderStatus = "approved"
	OrderRejected  OrderStatus = "rejected"
	OrderCancelled OrderStatus = "cancelled"
	OrderFulfilled OrderStatus = "fulfilled"
)

// orderTransitions es la tabla de legalidad del ciclo de vida.
// rejected, cancelled y fulfilled son terminales: no aparecen como origen.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderApproved, OrderRejected, OrderCancelled},
	OrderApproved: {OrderCancelled, OrderFulfilled},
}

// CanTransition indica si el paso de s a target está permitido por la tabla.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal indica si s no admite ninguna transición de salida.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// ValidOrderStatus indica si el valor corresponde a un estado conocido.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderApproved, OrderRejected, OrderCancelled, OrderFulfilled:
		return true
	}
	return false
}

// OrderRequest es una solicitud de reposición de un producto.
// ApprovedQuantity solo se fija cuando el estado es approved.
type OrderRequest struct {
	ID                string
	ProductID         string
	RequestedQuantity decimal.Decimal
	Requester         string // actor que creó la solicitud
	Status            OrderStatus
	ApprovedQuantity  *decimal.Decimal
	Approver          *string
	ApprovedAt        *time.Time
	Note              string
	ActorID           string
	RequestedAt       time.Time
}
