// Package projection reconstruye la serie diaria de stock de un producto
// reproduciendo el libro hacia atrás desde la proyección actual.
package projection

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/pkg/logger"
)

// StockPoint es el stock al cierre de un día.
type StockPoint struct {
	Date  time.Time
	Stock decimal.Decimal
}

// UseCase deriva series históricas de stock. Lectura pura: puede correr en
// paralelo con escrituras, aceptando que el resultado corresponde a algún orden
// serializable de esas escrituras.
type UseCase struct {
	registry *tenant.Registry
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *tenant.Registry, log *logger.Logger) *UseCase {
	return &UseCase{registry: registry, log: log}
}

// StockSeries devuelve (fecha, stock al cierre) para cada día de [from, to].
//
// Algoritmo: parte del CurrentStock proyectado y camina los asientos con
// EffectiveDate >= from en orden cronológico inverso, restando el efecto firmado
// de cada uno; así se obtiene el valor al inicio de cada día con movimientos.
// Los días sin asientos heredan el último valor conocido hacia adelante.
//
// Antes de reconstruir se contrasta CurrentStock contra la suma firmada completa
// del libro: un desacuerdo es una violación de la proyección y se reporta como
// ErrConsistency en vez de confiar en cualquiera de los dos valores.
func (uc *UseCase) StockSeries(ctx context.Context, tenantID, productID string, from, to time.Time) ([]StockPoint, error) {
	store, err := uc.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	from = entity.DateOnly(from)
	to = entity.DateOnly(to)
	if productID == "" || to.Before(from) {
		return nil, domain.ErrInvalidInput
	}

	product, err := store.Products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	total, err := store.Ledger.SumByProduct(productID)
	if err != nil {
		return nil, err
	}
	if !total.Equal(product.CurrentStock) {
		uc.log.Error().
			Str("tenant", store.Code).
			Str("product", productID).
			Str("projected", product.CurrentStock.String()).
			Str("ledger_sum", total.String()).
			Msg("proyección de stock en desacuerdo con el libro")
		return nil, domain.ErrConsistency
	}

	entries, err := store.Ledger.ListByProductSince(productID, from)
	if err != nil {
		return nil, err
	}

	// Efecto neto por fecha efectiva dentro y después del rango.
	net := make(map[time.Time]decimal.Decimal, len(entries))
	for _, e := range entries {
		d := entity.DateOnly(e.EffectiveDate)
		net[d] = net[d].Add(e.SignedEffect())
	}

	running := product.CurrentStock

	// Los asientos posteriores a `to` se deshacen primero para que el último
	// punto de la serie sea el stock al cierre de `to`.
	for d, effect := range net {
		if d.After(to) {
			running = running.Sub(effect)
		}
	}

	days := int(to.Sub(from).Hours()/24) + 1
	series := make([]StockPoint, days)
	for d, i := to, days-1; i >= 0; d, i = d.AddDate(0, 0, -1), i-1 {
		series[i] = StockPoint{Date: d, Stock: running}
		running = running.Sub(net[d])
	}
	return series, nil
}
