package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// CreateCountRequest body para POST /api/counts. CountDate en formato 2006-01-02.
type CreateCountRequest struct {
	CountDate string `json:"count_date"`
}

// RecordCountItemRequest body para PUT /api/counts/:id/items/:productId.
type RecordCountItemRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Reason         string          `json:"reason,omitempty"`
	Note           string          `json:"note,omitempty"`
}

// SetReasonRequest body para PUT /api/counts/:id/items/:productId/reason.
type SetReasonRequest struct {
	Reason string `json:"reason"`
	Note   string `json:"note,omitempty"`
}

// CountDTO representación de una toma física.
type CountDTO struct {
	ID          string     `json:"id"`
	CountDate   string     `json:"count_date"`
	Status      string     `json:"status"`
	Creator     string     `json:"creator"`
	Approver    *string    `json:"approver,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

// CountItemDTO línea por producto de una toma.
type CountItemDTO struct {
	ProductID      string           `json:"product_id"`
	SystemQuantity decimal.Decimal  `json:"system_quantity"`
	ActualQuantity *decimal.Decimal `json:"actual_quantity,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Note           string           `json:"note,omitempty"`
}

// CountReportDTO agregados de solo lectura de una toma.
type CountReportDTO struct {
	CountID           string          `json:"count_id"`
	TotalItems        int             `json:"total_items"`
	CountedItems      int             `json:"counted_items"`
	ItemsWithVariance int             `json:"items_with_variance"`
	PositiveVariance  decimal.Decimal `json:"positive_variance"`
	NegativeVariance  decimal.Decimal `json:"negative_variance"`
}

// FromCount mapea la entidad a su DTO.
func FromCount(c *entity.StockCount) CountDTO {
	return CountDTO{
		ID:          c.ID,
		CountDate:   c.CountDate.Format("2006-01-02"),
		Status:      string(c.Status),
		Creator:     c.Creator,
		Approver:    c.Approver,
		CreatedAt:   c.CreatedAt,
		CompletedAt: c.CompletedAt,
		ApprovedAt:  c.ApprovedAt,
	}
}

// FromCountItem mapea la línea a su DTO.
func FromCountItem(it *entity.CountItem) CountItemDTO {
	return CountItemDTO{
		ProductID:      it.ProductID,
		SystemQuantity: it.SystemQuantity,
		ActualQuantity: it.ActualQuantity,
		Difference:     it.Difference,
		Reason:         it.Reason,
		Note:           it.Note,
	}
}

// FromCountReport mapea los agregados a su DTO.
func FromCountReport(r entity.CountReport) CountReportDTO {
	return CountReportDTO{
		CountID:           r.CountID,
		TotalItems:        r.TotalItems,
		CountedItems:      r.CountedItems,
		ItemsWithVariance: r.ItemsWithVariance,
		PositiveVariance:  r.PositiveVariance,
		NegativeVariance:  r.NegativeVariance,
	}
}
