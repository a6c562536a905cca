// Package products implementa el CRUD de productos de una sede.
package products

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/application/dto"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// UseCase gestiona los productos. El stock nunca se edita por aquí: solo el
// camino transaccional del libro mueve CurrentStock.
type UseCase struct {
	registry *tenant.Registry
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *tenant.Registry) *UseCase {
	return &UseCase{registry: registry}
}

// Create registra un producto con stock 0. El stock inicial se carga con un
// movimiento `in` en el libro.
func (uc *UseCase) Create(ctx context.Context, tenantID string, in dto.CreateProductRequest) (*entity.Product, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if in.Name == "" || in.ReorderPoint.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Category:     in.Category,
		ReorderPoint: in.ReorderPoint,
		CurrentStock: decimal.Zero,
		ImageRef:     in.ImageRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Products.Create(product); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	return product, nil
}

// Get devuelve un producto por ID.
func (uc *UseCase) Get(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	product, err := store.Products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// List devuelve los productos de la sede.
func (uc *UseCase) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return store.Products.List(limit, offset)
}

// Update edita los campos descriptivos y el punto de reorden.
func (uc *UseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	product, err := store.Products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = *in.Name
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.ReorderPoint != nil {
		if in.ReorderPoint.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderPoint = *in.ReorderPoint
	}
	if in.ImageRef != nil {
		product.ImageRef = *in.ImageRef
	}
	product.UpdatedAt = time.Now().UTC()
	if err := store.Products.Update(product); err != nil {
		return nil, fmt.Errorf("actualizar producto: %w", err)
	}
	return product, nil
}

// Delete elimina un producto solo si ningún asiento del libro lo referencia.
func (uc *UseCase) Delete(ctx context.Context, tenantID, id string) error {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	product, err := store.Products.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	refs, err := store.Ledger.CountByProduct(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: el producto tiene %d movimientos", domain.ErrConflict, refs)
	}
	return store.Products.Delete(id)
}
