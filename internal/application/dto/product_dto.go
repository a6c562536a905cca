package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	ImageRef     string          `json:"image_ref,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id. Campos nil no se tocan.
type UpdateProductRequest struct {
	Name         *string          `json:"name,omitempty"`
	Category     *string          `json:"category,omitempty"`
	ReorderPoint *decimal.Decimal `json:"reorder_point,omitempty"`
	ImageRef     *string          `json:"image_ref,omitempty"`
}

// ProductDTO representación de un producto en respuestas.
type ProductDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	ImageRef     string          `json:"image_ref,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FromProduct mapea la entidad a su DTO.
func FromProduct(p *entity.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		ReorderPoint: p.ReorderPoint,
		CurrentStock: p.CurrentStock,
		ImageRef:     p.ImageRef,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
