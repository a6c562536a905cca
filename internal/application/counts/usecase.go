// Package counts implementa el flujo de conteo físico (toma de inventario):
// snapshot del stock de sistema, registro línea a línea, cierre y aprobación
// que vuelca las diferencias al libro como ajustes.
package counts

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

// UseCase gestiona las tomas físicas de una sede.
type UseCase struct {
	registry *tenant.Registry
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *tenant.Registry) *UseCase {
	return &UseCase{registry: registry}
}

// Create abre una toma in_progress para countDate congelando el CurrentStock de
// cada producto como system_quantity. Rechaza la fecha si ya existe otra toma
// para ese día. Toma y líneas se escriben en una sola transacción.
func (uc *UseCase) Create(ctx context.Context, tenantID string, actor entity.Actor, countDate time.Time) (*entity.StockCount, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	date := entity.DateOnly(countDate)

	now := time.Now().UTC()
	count := &entity.StockCount{
		ID:        uuid.New().String(),
		CountDate: date,
		Status:    entity.CountInProgress,
		Creator:   actor.ID,
		CreatedAt: now,
	}

	err = store.Tx.RunCounts(ctx, func(
		products repository.ProductRepository,
		_ repository.LedgerRepository,
		countsRepo repository.CountRepository,
	) error {
		existing, err := countsRepo.GetByDate(date)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: ya existe un conteo para %s", domain.ErrDuplicate, date.Format("2006-01-02"))
		}

		all, err := products.ListAll()
		if err != nil {
			return err
		}
		if err := countsRepo.CreateCount(count); err != nil {
			return err
		}
		for _, p := range all {
			item := &entity.CountItem{
				CountID:        count.ID,
				ProductID:      p.ID,
				SystemQuantity: p.CurrentStock,
			}
			if err := countsRepo.CreateItem(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// RecordItem registra la cantidad contada de un producto y recalcula la
// diferencia. Solo mientras la toma está in_progress.
func (uc *UseCase) RecordItem(ctx context.Context, tenantID, countID, productID string, actual decimal.Decimal, reason, note string) (*entity.CountItem, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if actual.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	count, item, err := uc.getCountItem(store, countID, productID)
	if err != nil {
		return nil, err
	}
	if count.Status != entity.CountInProgress {
		return nil, domain.ErrInvalidState
	}

	item.SetActual(actual)
	item.Reason = reason
	if note != "" {
		item.Note = note
	}
	if err := store.Counts.UpdateItem(item); err != nil {
		return nil, fmt.Errorf("registrar conteo: %w", err)
	}
	return item, nil
}

// SetReason fija motivo y nota de una línea sin tocar la cantidad contada.
func (uc *UseCase) SetReason(ctx context.Context, tenantID, countID, productID, reason, note string) (*entity.CountItem, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	count, item, err := uc.getCountItem(store, countID, productID)
	if err != nil {
		return nil, err
	}
	if count.Status != entity.CountInProgress {
		return nil, domain.ErrInvalidState
	}
	item.Reason = reason
	item.Note = note
	if err := store.Counts.UpdateItem(item); err != nil {
		return nil, fmt.Errorf("fijar motivo: %w", err)
	}
	return item, nil
}

// Complete cierra la toma: exige que toda línea tenga cantidad contada; si no,
// falla indicando cuántas faltan. Fija completed_at.
func (uc *UseCase) Complete(ctx context.Context, tenantID, countID string) (*entity.StockCount, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	count, err := store.Counts.GetCount(countID)
	if err != nil {
		return nil, err
	}
	if count == nil {
		return nil, domain.ErrNotFound
	}
	if !count.Status.CanTransition(entity.CountCompleted) {
		return nil, domain.ErrInvalidState
	}

	pending, err := store.Counts.PendingItems(countID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: faltan %d líneas por contar", domain.ErrInvalidState, pending)
	}

	now := time.Now().UTC()
	count.Status = entity.CountCompleted
	count.CompletedAt = &now
	if err := store.Counts.UpdateCount(count); err != nil {
		return nil, fmt.Errorf("completar conteo: %w", err)
	}
	return count, nil
}

// Approve aplica las variaciones de una toma completada: por cada línea con
// diferencia distinta de cero escribe un asiento `adjust` fechado en count_date
// por el camino normal del libro, y pasa la toma a approved. Todo en una
// transacción: si algo falla nada se aplica y la toma sigue completed.
//
// Si el stock de un producto cambió desde el snapshot (asiento ajeno entre la
// toma y la aprobación), la aprobación falla con ErrStockDrift en vez de pisar
// el valor: debe tomarse un conteo nuevo.
func (uc *UseCase) Approve(ctx context.Context, tenantID string, actor entity.Actor, countID string) (*entity.StockCount, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var approved *entity.StockCount
	err = store.Tx.RunCounts(ctx, func(
		products repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
		countsRepo repository.CountRepository,
	) error {
		count, err := countsRepo.GetCount(countID)
		if err != nil {
			return err
		}
		if count == nil {
			return domain.ErrNotFound
		}
		if !count.Status.CanTransition(entity.CountApproved) {
			return domain.ErrInvalidState
		}

		items, err := countsRepo.ListItems(countID)
		if err != nil {
			return err
		}

		var adjustments []*entity.LedgerEntry
		for _, it := range items {
			if it.Difference == nil {
				return domain.ErrInvalidState
			}
			product, err := products.GetForUpdate(it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			if !product.CurrentStock.Equal(it.SystemQuantity) {
				return fmt.Errorf("%w: producto %s", domain.ErrStockDrift, it.ProductID)
			}
			if it.Difference.IsZero() {
				continue
			}
			adjustments = append(adjustments, &entity.LedgerEntry{
				ID:            uuid.New().String(),
				ProductID:     it.ProductID,
				Kind:          entity.EntryKindAdjust,
				Quantity:      *it.Difference,
				EffectiveDate: count.CountDate,
				Note:          adjustNote(count, it),
				ActorID:       actor.ID,
				CreatedAt:     now,
			})
		}
		if err := appledger.AppendEntries(products, ledgerRepo, adjustments, now); err != nil {
			return err
		}

		count.Status = entity.CountApproved
		count.Approver = &actor.ID
		count.ApprovedAt = &now
		if err := countsRepo.UpdateCount(count); err != nil {
			return err
		}
		approved = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func adjustNote(count *entity.StockCount, it *entity.CountItem) string {
	note := "ajuste por conteo " + count.CountDate.Format("2006-01-02")
	if it.Reason != "" {
		note += ": " + it.Reason
	}
	return note
}

// Delete elimina una toma abandonada con sus líneas. Solo mientras in_progress.
func (uc *UseCase) Delete(ctx context.Context, tenantID, countID string) error {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	count, err := store.Counts.GetCount(countID)
	if err != nil {
		return err
	}
	if count == nil {
		return domain.ErrNotFound
	}
	if count.Status != entity.CountInProgress {
		return domain.ErrInvalidState
	}
	return store.Counts.DeleteCount(countID)
}

// Get devuelve una toma con sus líneas.
func (uc *UseCase) Get(ctx context.Context, tenantID, countID string) (*entity.StockCount, []*entity.CountItem, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	count, err := store.Counts.GetCount(countID)
	if err != nil {
		return nil, nil, err
	}
	if count == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := store.Counts.ListItems(countID)
	if err != nil {
		return nil, nil, err
	}
	return count, items, nil
}

// List devuelve las tomas de la sede.
func (uc *UseCase) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.StockCount, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return store.Counts.ListCounts(limit, offset)
}

// Report calcula los agregados de solo lectura de una toma.
func (uc *UseCase) Report(ctx context.Context, tenantID, countID string) (*entity.CountReport, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	count, err := store.Counts.GetCount(countID)
	if err != nil {
		return nil, err
	}
	if count == nil {
		return nil, domain.ErrNotFound
	}
	items, err := store.Counts.ListItems(countID)
	if err != nil {
		return nil, err
	}

	report := &entity.CountReport{CountID: countID, TotalItems: len(items)}
	for _, it := range items {
		if it.ActualQuantity == nil {
			continue
		}
		report.CountedItems++
		if it.Difference == nil || it.Difference.IsZero() {
			continue
		}
		report.ItemsWithVariance++
		if it.Difference.GreaterThan(decimal.Zero) {
			report.PositiveVariance = report.PositiveVariance.Add(*it.Difference)
		} else {
			report.NegativeVariance = report.NegativeVariance.Add(*it.Difference)
		}
	}
	return report, nil
}

func (uc *UseCase) getCountItem(store *tenant.Store, countID, productID string) (*entity.StockCount, *entity.CountItem, error) {
	count, err := store.Counts.GetCount(countID)
	if err != nil {
		return nil, nil, err
	}
	if count == nil {
		return nil, nil, domain.ErrNotFound
	}
	item, err := store.Counts.GetItem(countID, productID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	return count, item, nil
}
