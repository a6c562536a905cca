// Package orders implementa el ciclo de vida de solicitudes de reposición.
// La legalidad de transiciones vive en la tabla de entity.OrderStatus; aquí solo
// se aplica, junto con la autorización por rol.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appledger "github.com/tu-usuario/stockbook/internal/application/ledger"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

// UseCase gestiona las solicitudes de pedido de una sede.
type UseCase struct {
	registry *tenant.Registry
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *tenant.Registry) *UseCase {
	return &UseCase{registry: registry}
}

// Create registra una solicitud en estado pending. Cualquier actor identificado
// puede crear; la cantidad solicitada debe ser >= 1.
func (uc *UseCase) Create(ctx context.Context, tenantID string, actor entity.Actor, productID string, quantity decimal.Decimal, note string) (*entity.OrderRequest, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if productID == "" || quantity.LessThan(decimal.NewFromInt(1)) {
		return nil, domain.ErrInvalidInput
	}
	product, err := store.Products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	order := &entity.OrderRequest{
		ID:                uuid.New().String(),
		ProductID:         productID,
		RequestedQuantity: quantity,
		Requester:         actor.ID,
		Status:            entity.OrderPending,
		Note:              note,
		ActorID:           actor.ID,
		RequestedAt:       time.Now().UTC(),
	}
	if err := store.Orders.Create(order); err != nil {
		return nil, fmt.Errorf("crear solicitud: %w", err)
	}
	return order, nil
}

// Approve pasa pending -> approved. Solo rol privilegiado; approvedQuantity >= 1.
func (uc *UseCase) Approve(ctx context.Context, tenantID string, actor entity.Actor, orderID string, approvedQuantity decimal.Decimal, note string) (*entity.OrderRequest, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	if approvedQuantity.LessThan(decimal.NewFromInt(1)) {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, tenantID, orderID, entity.OrderApproved, func(order *entity.OrderRequest) {
		now := time.Now().UTC()
		order.ApprovedQuantity = &approvedQuantity
		order.Approver = &actor.ID
		order.ApprovedAt = &now
		if note != "" {
			order.Note = note
		}
	})
}

// Reject pasa pending -> rejected. Solo rol privilegiado. ApprovedQuantity queda sin fijar.
func (uc *UseCase) Reject(ctx context.Context, tenantID string, actor entity.Actor, orderID, note string) (*entity.OrderRequest, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	return uc.transition(ctx, tenantID, orderID, entity.OrderRejected, func(order *entity.OrderRequest) {
		now := time.Now().UTC()
		order.Approver = &actor.ID
		order.ApprovedAt = &now
		if note != "" {
			order.Note = note
		}
	})
}

// Cancel pasa pending|approved -> cancelled. El solicitante puede cancelar lo
// suyo; un rol privilegiado puede cancelar cualquiera.
func (uc *UseCase) Cancel(ctx context.Context, tenantID string, actor entity.Actor, orderID string) (*entity.OrderRequest, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	order, err := store.Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Privileged() && order.Requester != actor.ID {
		return nil, domain.ErrForbidden
	}
	return uc.transition(ctx, tenantID, orderID, entity.OrderCancelled, nil)
}

// Edit muta la cantidad en sitio: requested_quantity en pending,
// approved_quantity en approved. Solo rol privilegiado; prohibido en terminales.
func (uc *UseCase) Edit(ctx context.Context, tenantID string, actor entity.Actor, orderID string, quantity decimal.Decimal, note string) (*entity.OrderRequest, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if quantity.LessThan(decimal.NewFromInt(1)) {
		return nil, domain.ErrInvalidInput
	}
	order, err := store.Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	switch order.Status {
	case entity.OrderPending:
		order.RequestedQuantity = quantity
	case entity.OrderApproved:
		order.ApprovedQuantity = &quantity
	default:
		return nil, domain.ErrInvalidState
	}
	if note != "" {
		order.Note = note
	}
	if err := store.Orders.Update(order); err != nil {
		return nil, fmt.Errorf("editar solicitud: %w", err)
	}
	return order, nil
}

// Receive registra la recepción de un pedido aprobado: escribe un asiento `in`
// por la cantidad recibida y pasa la solicitud a fulfilled, todo en una
// transacción. Es el único punto donde el ciclo de vida toca el libro.
func (uc *UseCase) Receive(ctx context.Context, tenantID string, actor entity.Actor, orderID string, quantity *decimal.Decimal, note string) (*entity.OrderRequest, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var received *entity.OrderRequest
	err = store.Tx.RunOrders(ctx, func(
		products repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
		ordersRepo repository.OrderRepository,
	) error {
		order, err := ordersRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Status.CanTransition(entity.OrderFulfilled) {
			return domain.ErrInvalidState
		}

		qty := quantity
		if qty == nil {
			qty = order.ApprovedQuantity
		}
		if qty == nil || !qty.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}

		entryNote := note
		if entryNote == "" {
			entryNote = "recepción de pedido " + order.ID
		}
		entry := &entity.LedgerEntry{
			ID:            uuid.New().String(),
			ProductID:     order.ProductID,
			Kind:          entity.EntryKindIn,
			Quantity:      *qty,
			EffectiveDate: entity.DateOnly(now),
			Note:          entryNote,
			ActorID:       actor.ID,
			CreatedAt:     now,
		}
		if err := appledger.AppendEntries(products, ledgerRepo, []*entity.LedgerEntry{entry}, now); err != nil {
			return err
		}

		order.Status = entity.OrderFulfilled
		if note != "" {
			order.Note = note
		}
		if err := ordersRepo.Update(order); err != nil {
			return err
		}
		received = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

// List devuelve solicitudes, opcionalmente filtradas por estado.
func (uc *UseCase) List(ctx context.Context, tenantID string, status entity.OrderStatus, limit, offset int) ([]*entity.OrderRequest, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if status != "" && !entity.ValidOrderStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return store.Orders.List(status, limit, offset)
}

// transition aplica una transición validada por la tabla y persiste.
// mutate (opcional) ajusta campos antes de guardar.
func (uc *UseCase) transition(ctx context.Context, tenantID, orderID string, target entity.OrderStatus, mutate func(*entity.OrderRequest)) (*entity.OrderRequest, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	order, err := store.Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !order.Status.CanTransition(target) {
		return nil, domain.ErrInvalidState
	}
	order.Status = target
	if mutate != nil {
		mutate(order)
	}
	if err := store.Orders.Update(order); err != nil {
		return nil, fmt.Errorf("actualizar solicitud: %w", err)
	}
	return order, nil
}
