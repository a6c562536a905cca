package projection_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stockbook/internal/application/ledger"
	"github.com/tu-usuario/stockbook/internal/application/projection"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/application/tenant/tenanttest"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/pkg/logger"
)

const testTenant = "central"

// newFixture arma registro, casos de uso de libro y proyección, y un producto.
func newFixture(t *testing.T) (*projection.UseCase, *ledger.UseCase, *tenanttest.Mem, string) {
	t.Helper()
	factory := tenanttest.NewFactory()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	reg := tenant.NewRegistry(factory, log)

	_, err := reg.Resolve(context.Background(), testTenant)
	require.NoError(t, err)
	mem := factory.Mem(testTenant)

	productID := "prod-1"
	require.NoError(t, mem.Products().Create(&entity.Product{ID: productID, Name: "Harina"}))
	return projection.NewUseCase(reg, log), ledger.NewUseCase(reg), mem, productID
}

func dia(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }

func registra(t *testing.T, uc *ledger.UseCase, productID, kind string, qty int64, eff time.Time) {
	t.Helper()
	_, err := uc.Record(context.Background(), testTenant, ledger.MovementInput{
		ProductID:     productID,
		Kind:          kind,
		Quantity:      decimal.NewFromInt(qty),
		EffectiveDate: eff,
		ActorID:       "user-1",
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconstrucción hacia atrás
// ──────────────────────────────────────────────────────────────────────────────

// Movimientos: +100 el día 10, -30 el día 12, -20 el día 14. La serie del 10 al
// 14 debe cerrar cada día con el valor correcto y terminar en el stock actual.
func TestStockSeries_ReproduceElLibro(t *testing.T) {
	uc, lg, mem, productID := newFixture(t)

	registra(t, lg, productID, entity.EntryKindIn, 100, dia(10))
	registra(t, lg, productID, entity.EntryKindOut, 30, dia(12))
	registra(t, lg, productID, entity.EntryKindOut, 20, dia(14))

	series, err := uc.StockSeries(context.Background(), testTenant, productID, dia(10), dia(14))
	require.NoError(t, err)
	require.Len(t, series, 5)

	want := []int64{100, 100, 70, 70, 50}
	for i, w := range want {
		assert.Equal(t, dia(10+i), series[i].Date)
		assert.True(t, series[i].Stock.Equal(decimal.NewFromInt(w)),
			"cierre del día %s: quería %d, fue %s", series[i].Date.Format("2006-01-02"), w, series[i].Stock)
	}

	p, _ := mem.Products().GetByID(productID)
	assert.True(t, series[4].Stock.Equal(p.CurrentStock),
		"el último punto del rango hasta hoy es el stock actual")
}

// Los días sin movimientos heredan el valor del día anterior.
func TestStockSeries_DiasSinMovimientoHeredan(t *testing.T) {
	uc, lg, _, productID := newFixture(t)

	registra(t, lg, productID, entity.EntryKindIn, 40, dia(5))

	series, err := uc.StockSeries(context.Background(), testTenant, productID, dia(5), dia(9))
	require.NoError(t, err)
	require.Len(t, series, 5)
	for _, pt := range series {
		assert.True(t, pt.Stock.Equal(decimal.NewFromInt(40)))
	}
}

// Un rango que termina antes de los últimos movimientos debe deshacerlos:
// la serie cierra en el stock que había al final del rango, no en el actual.
func TestStockSeries_DeshaceMovimientosPosteriores(t *testing.T) {
	uc, lg, _, productID := newFixture(t)

	registra(t, lg, productID, entity.EntryKindIn, 100, dia(10))
	registra(t, lg, productID, entity.EntryKindOut, 60, dia(20))

	series, err := uc.StockSeries(context.Background(), testTenant, productID, dia(10), dia(15))
	require.NoError(t, err)
	require.Len(t, series, 6)
	assert.True(t, series[5].Stock.Equal(decimal.NewFromInt(100)),
		"al día 15 la salida del 20 aún no había ocurrido")
}

// Varios movimientos el mismo día se netean en un solo salto.
func TestStockSeries_NetoPorDia(t *testing.T) {
	uc, lg, _, productID := newFixture(t)

	registra(t, lg, productID, entity.EntryKindIn, 50, dia(8))
	registra(t, lg, productID, entity.EntryKindOut, 10, dia(8))
	registra(t, lg, productID, entity.EntryKindAdjust, -5, dia(8))

	series, err := uc.StockSeries(context.Background(), testTenant, productID, dia(7), dia(8))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.True(t, series[0].Stock.IsZero(), "antes del día 8 no había nada")
	assert.True(t, series[1].Stock.Equal(decimal.NewFromInt(35)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y consistencia
// ──────────────────────────────────────────────────────────────────────────────

func TestStockSeries_RangoInvertido(t *testing.T) {
	uc, _, _, productID := newFixture(t)
	_, err := uc.StockSeries(context.Background(), testTenant, productID, dia(10), dia(5))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockSeries_ProductoInexistente(t *testing.T) {
	uc, _, _, _ := newFixture(t)
	_, err := uc.StockSeries(context.Background(), testTenant, "no-existe", dia(1), dia(2))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Si la proyección cacheada no coincide con la suma firmada del libro no se
// reconstruye nada: se reporta la violación en lugar de confiar en un valor.
func TestStockSeries_ProyeccionCorrupta(t *testing.T) {
	uc, lg, mem, productID := newFixture(t)

	registra(t, lg, productID, entity.EntryKindIn, 100, dia(10))

	// Corromper la proyección por fuera del camino transaccional del libro.
	require.NoError(t, mem.Products().UpdateStock(productID, decimal.NewFromInt(999), time.Now()))

	_, err := uc.StockSeries(context.Background(), testTenant, productID, dia(10), dia(12))
	assert.ErrorIs(t, err, domain.ErrConsistency)
}
