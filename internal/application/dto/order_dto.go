package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	ProductID         string          `json:"product_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	Note              string          `json:"note,omitempty"`
}

// ApproveOrderRequest body para POST /api/orders/:id/approve.
type ApproveOrderRequest struct {
	ApprovedQuantity decimal.Decimal `json:"approved_quantity"`
	Note             string          `json:"note,omitempty"`
}

// RejectOrderRequest body para POST /api/orders/:id/reject.
type RejectOrderRequest struct {
	Note string `json:"note,omitempty"`
}

// EditOrderRequest body para PUT /api/orders/:id.
type EditOrderRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note,omitempty"`
}

// ReceiveOrderRequest body para POST /api/orders/:id/receive.
// Quantity nil recibe la cantidad aprobada.
type ReceiveOrderRequest struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Note     string           `json:"note,omitempty"`
}

// OrderDTO representación de una solicitud de pedido.
type OrderDTO struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	Requester         string           `json:"requester"`
	Status            string           `json:"status"`
	ApprovedQuantity  *decimal.Decimal `json:"approved_quantity,omitempty"`
	Approver          *string          `json:"approver,omitempty"`
	ApprovedAt        *time.Time       `json:"approved_at,omitempty"`
	Note              string           `json:"note,omitempty"`
	RequestedAt       time.Time        `json:"requested_at"`
}

// FromOrder mapea la entidad a su DTO.
func FromOrder(o *entity.OrderRequest) OrderDTO {
	return OrderDTO{
		ID:                o.ID,
		ProductID:         o.ProductID,
		RequestedQuantity: o.RequestedQuantity,
		Requester:         o.Requester,
		Status:            string(o.Status),
		ApprovedQuantity:  o.ApprovedQuantity,
		Approver:          o.Approver,
		ApprovedAt:        o.ApprovedAt,
		Note:              o.Note,
		RequestedAt:       o.RequestedAt,
	}
}
