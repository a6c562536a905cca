// Package ledger implementa el libro de movimientos: asientos inmutables,
// corrección auditada y la proyección CurrentStock que mantiene en cada escritura.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

// UseCase registra y corrige movimientos del libro de forma transaccional.
// Toda escritura actualiza products.current_stock en la misma transacción:
// la proyección nunca se separa de la suma firmada del libro.
type UseCase struct {
	registry *tenant.Registry
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *tenant.Registry) *UseCase {
	return &UseCase{registry: registry}
}

// MovementInput es la entrada para registrar un movimiento.
// Quantity debe ser > 0 para in/out; para adjust conserva el signo y no puede ser 0.
// EffectiveDate vacía usa la fecha actual.
type MovementInput struct {
	ProductID     string
	Kind          string
	Quantity      decimal.Decimal
	EffectiveDate time.Time
	Note          string
	ActorID       string
}

func validateMovement(in MovementInput) error {
	if in.ProductID == "" || !entity.ValidEntryKind(in.Kind) {
		return domain.ErrInvalidInput
	}
	switch in.Kind {
	case entity.EntryKindIn, entity.EntryKindOut:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.EntryKindAdjust:
		if in.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

func buildEntry(in MovementInput, now time.Time) *entity.LedgerEntry {
	eff := in.EffectiveDate
	if eff.IsZero() {
		eff = now
	}
	return &entity.LedgerEntry{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		Kind:          in.Kind,
		Quantity:      in.Quantity,
		EffectiveDate: entity.DateOnly(eff),
		Note:          in.Note,
		ActorID:       in.ActorID,
		CreatedAt:     now,
	}
}

// Record valida el movimiento, escribe el asiento y aplica su efecto firmado a
// CurrentStock, todo dentro de una transacción (bloqueo de fila del producto).
func (uc *UseCase) Record(ctx context.Context, tenantID string, in MovementInput) (*entity.LedgerEntry, error) {
	entries, err := uc.record(ctx, tenantID, []MovementInput{in})
	if err != nil {
		return nil, err
	}
	return entries[0], nil
}

// RecordBatch registra varios movimientos (ej. las salidas diarias de una semana)
// en una sola transacción: o se escriben todos los asientos y todos los deltas de
// stock, o ninguno.
func (uc *UseCase) RecordBatch(ctx context.Context, tenantID string, ins []MovementInput) ([]*entity.LedgerEntry, error) {
	if len(ins) == 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.record(ctx, tenantID, ins)
}

// record es el camino común de Record y RecordBatch.
func (uc *UseCase) record(ctx context.Context, tenantID string, ins []MovementInput) ([]*entity.LedgerEntry, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if err := validateMovement(in); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	entries := make([]*entity.LedgerEntry, 0, len(ins))
	for _, in := range ins {
		entries = append(entries, buildEntry(in, now))
	}

	err = store.Tx.RunLedger(ctx, func(
		products repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		return AppendEntries(products, ledgerRepo, entries, now)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendEntries escribe asientos y aplica sus efectos al stock usando los
// repositorios del caller (misma transacción). Lo reutilizan la recepción de
// pedidos y la aprobación de conteos: todo asiento actualiza la proyección por
// el mismo camino.
func AppendEntries(
	products repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
	entries []*entity.LedgerEntry,
	now time.Time,
) error {
	for _, e := range entries {
		product, err := products.GetForUpdate(e.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if err := ledgerRepo.Create(e); err != nil {
			return err
		}
		newStock := product.CurrentStock.Add(e.SignedEffect())
		if err := products.UpdateStock(e.ProductID, newStock, now); err != nil {
			return err
		}
	}
	return nil
}

// Correct reescribe cantidad y nota de un asiento existente y aplica el delta
// (ajustado por signo según el tipo) a CurrentStock, en una transacción.
// Es la única mutación permitida sobre un asiento (corrección auditada).
func (uc *UseCase) Correct(ctx context.Context, tenantID, entryID string, newQuantity decimal.Decimal, newNote string) (*entity.LedgerEntry, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if entryID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	var corrected *entity.LedgerEntry
	err = store.Tx.RunLedger(ctx, func(
		products repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		entry, err := ledgerRepo.GetByID(entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		switch entry.Kind {
		case entity.EntryKindIn, entity.EntryKindOut:
			if !newQuantity.GreaterThan(decimal.Zero) {
				return domain.ErrInvalidInput
			}
		case entity.EntryKindAdjust:
			if newQuantity.IsZero() {
				return domain.ErrInvalidInput
			}
		}

		product, err := products.GetForUpdate(entry.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		oldEffect := entry.SignedEffect()
		entry.Quantity = newQuantity
		if newNote != "" {
			entry.Note = newNote
		}
		if err := ledgerRepo.Update(entry); err != nil {
			return err
		}

		delta := entry.SignedEffect().Sub(oldEffect)
		if err := products.UpdateStock(entry.ProductID, product.CurrentStock.Add(delta), now); err != nil {
			return err
		}
		corrected = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return corrected, nil
}

// History devuelve el historial de movimientos de la sede con filtros opcionales.
func (uc *UseCase) History(ctx context.Context, tenantID string, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	list, err := store.Ledger.List(filter)
	if err != nil {
		return nil, fmt.Errorf("historial de movimientos: %w", err)
	}
	return list, nil
}
