package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CountStatus es la enumeración cerrada del flujo de conteo físico.
// El flujo es lineal: in_progress -> completed -> approved, sin saltos.
type CountStatus string

const (
	CountInProgress CountStatus = "in_progress"
	CountCompleted  CountStatus = "completed"
	CountApproved   CountStatus = "approved"
)

var countTransitions = map[CountStatus]CountStatus{
	CountInProgress: CountCompleted,
	CountCompleted:  CountApproved,
}

// CanTransition indica si el paso de s a target es el siguiente del flujo lineal.
func (s CountStatus) CanTransition(target CountStatus) bool {
	return countTransitions[s] == target
}

// StockCount es una toma física de inventario de toda la sede en una fecha.
type StockCount struct {
	ID          string
	CountDate   time.Time // fecha de negocio del conteo (truncada a día)
	Status      CountStatus
	Creator     string
	Approver    *string
	CreatedAt   time.Time
	CompletedAt *time.Time
	ApprovedAt  *time.Time
}

// CountItem es la línea por producto de una toma física.
// SystemQuantity queda congelada al crear el conteo; Difference es actual - sistema
// y permanece nil hasta que se registra ActualQuantity.
type CountItem struct {
	CountID        string
	ProductID      string
	SystemQuantity decimal.Decimal
	ActualQuantity *decimal.Decimal
	Difference     *decimal.Decimal
	Reason         string
	Note           string
}

// SetActual registra la cantidad contada y recalcula Difference.
func (it *CountItem) SetActual(actual decimal.Decimal) {
	it.ActualQuantity = &actual
	diff := actual.Sub(it.SystemQuantity)
	it.Difference = &diff
}

// CountReport son los agregados de solo lectura de una toma.
type CountReport struct {
	CountID           string
	TotalItems        int
	CountedItems      int
	ItemsWithVariance int
	PositiveVariance  decimal.Decimal // suma de diferencias > 0
	NegativeVariance  decimal.Decimal // suma de diferencias < 0 (valor negativo)
}
