package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	EntryKindIn     = "in"     // entrada
	EntryKindOut    = "out"    // salida
	EntryKindAdjust = "adjust" // ajuste (conteos físicos, correcciones)
)

// LedgerEntry es un asiento inmutable del libro de movimientos.
// Quantity se guarda positiva para in/out; para adjust conserva su signo.
// EffectiveDate es la fecha de negocio del movimiento; CreatedAt el instante de escritura.
// Ambas se conservan: la reconstrucción usa EffectiveDate, la auditoría ordena por CreatedAt.
type LedgerEntry struct {
	ID            string
	ProductID     string
	Kind          string
	Quantity      decimal.Decimal
	EffectiveDate time.Time // truncada a día
	Note          string
	ActorID       string
	CreatedAt     time.Time
}

// ValidEntryKind indica si kind es uno de los tipos de movimiento conocidos.
func ValidEntryKind(kind string) bool {
	switch kind {
	case EntryKindIn, EntryKindOut, EntryKindAdjust:
		return true
	}
	return false
}

// SignedEffect devuelve el efecto del asiento sobre el stock:
// in = +Quantity, out = -Quantity, adjust = Quantity tal como se guardó.
func (e *LedgerEntry) SignedEffect() decimal.Decimal {
	return SignedEffect(e.Kind, e.Quantity)
}

// SignedEffect calcula el efecto firmado de un movimiento sin construir el asiento.
func SignedEffect(kind string, quantity decimal.Decimal) decimal.Decimal {
	if kind == EntryKindOut {
		return quantity.Neg()
	}
	return quantity
}
