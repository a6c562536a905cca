package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// LedgerFilter filtros del historial de movimientos.
type LedgerFilter struct {
	ProductID string
	From      *time.Time // por EffectiveDate
	To        *time.Time
	Limit     int
	Offset    int
}

// LedgerRepository define el puerto de persistencia del libro de movimientos.
// Los asientos son inmutables salvo la corrección auditada (Update).
type LedgerRepository interface {
	Create(entry *entity.LedgerEntry) error
	GetByID(id string) (*entity.LedgerEntry, error)
	// Update reescribe cantidad y nota de un asiento existente (corrección auditada).
	Update(entry *entity.LedgerEntry) error
	// List devuelve el historial ordenado por CreatedAt descendente.
	List(filter LedgerFilter) ([]*entity.LedgerEntry, error)
	// ListByProductSince devuelve los asientos con EffectiveDate >= from,
	// ordenados por CreatedAt ascendente (orden de reconstrucción).
	ListByProductSince(productID string, from time.Time) ([]*entity.LedgerEntry, error)
	// SumByProduct devuelve la suma firmada de todos los asientos del producto.
	SumByProduct(productID string) (decimal.Decimal, error)
	// CountByProduct cuenta los asientos que referencian al producto (guard de borrado).
	CountByProduct(productID string) (int64, error)
}
