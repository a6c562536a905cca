// Package analytics orquesta el motor de analítica de consumo: trae la ventana
// de movimientos del libro y delega el cálculo al servicio de dominio.
package analytics

import (
	"context"
	"time"

	"github.com/tu-usuario/stockbook/internal/application/dto"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/consumption"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// UseCase calcula la recomendación de reposición de un producto.
// El resultado es solo consultivo: nunca crea ni aprueba pedidos.
type UseCase struct {
	registry *tenant.Registry
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *tenant.Registry) *UseCase {
	return &UseCase{registry: registry, now: time.Now}
}

// Analyze analiza el consumo del producto en los últimos 30 días.
// Con menos de 3 días distintos de actividad devuelve un resultado marcado como
// insuficiente con el número de días observados.
func (uc *UseCase) Analyze(ctx context.Context, tenantID, productID string) (*dto.AnalysisDTO, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}

	product, err := store.Products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	today := entity.DateOnly(uc.now())
	windowStart := today.AddDate(0, 0, -consumption.WindowDays)
	entries, err := store.Ledger.ListByProductSince(productID, windowStart)
	if err != nil {
		return nil, err
	}

	// Total de salidas por día con actividad (cualquier tipo de asiento cuenta
	// como actividad; solo las salidas aportan cantidad).
	type dayAgg struct {
		weekday int
		out     float64
	}
	byDate := make(map[time.Time]*dayAgg)
	for _, e := range entries {
		d := entity.DateOnly(e.EffectiveDate)
		if d.After(today) {
			continue
		}
		agg, ok := byDate[d]
		if !ok {
			agg = &dayAgg{weekday: int(d.Weekday())}
			byDate[d] = agg
		}
		if e.Kind == entity.EntryKindOut {
			agg.out += e.Quantity.InexactFloat64()
		}
	}

	days := make([]consumption.DailyOut, 0, len(byDate))
	for d := windowStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		if agg, ok := byDate[d]; ok {
			days = append(days, consumption.DailyOut{Weekday: agg.weekday, OutQty: agg.out})
		}
	}

	result := consumption.Calculate(consumption.Input{
		CurrentStock: product.CurrentStock.InexactFloat64(),
		ReorderPoint: product.ReorderPoint.InexactFloat64(),
		Days:         days,
	})
	return dto.NewAnalysisDTO(productID, product.Name, result), nil
}
