package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/ledger/movements.
// EffectiveDate en formato 2006-01-02; vacía usa la fecha actual.
type RecordMovementRequest struct {
	ProductID     string          `json:"product_id"`
	Kind          string          `json:"kind"` // in | out | adjust
	Quantity      decimal.Decimal `json:"quantity"`
	EffectiveDate string          `json:"effective_date,omitempty"`
	Note          string          `json:"note,omitempty"`
}

// BatchMovementRequest body para POST /api/ledger/movements/batch.
type BatchMovementRequest struct {
	Movements []RecordMovementRequest `json:"movements"`
}

// CorrectMovementRequest body para PUT /api/ledger/movements/:id.
type CorrectMovementRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note,omitempty"`
}

// LedgerEntryDTO representación de un asiento en respuestas.
type LedgerEntryDTO struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Kind          string          `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity"`
	EffectiveDate string          `json:"effective_date"`
	Note          string          `json:"note,omitempty"`
	ActorID       string          `json:"actor_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FromLedgerEntry mapea la entidad a su DTO.
func FromLedgerEntry(e *entity.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:            e.ID,
		ProductID:     e.ProductID,
		Kind:          e.Kind,
		Quantity:      e.Quantity,
		EffectiveDate: e.EffectiveDate.Format("2006-01-02"),
		Note:          e.Note,
		ActorID:       e.ActorID,
		CreatedAt:     e.CreatedAt,
	}
}

// StockPointDTO un punto (fecha, stock al cierre) de la serie reconstruida.
type StockPointDTO struct {
	Date  string          `json:"date"`
	Stock decimal.Decimal `json:"stock"`
}
