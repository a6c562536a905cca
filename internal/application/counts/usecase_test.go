package counts_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stockbook/internal/application/counts"
	"github.com/tu-usuario/stockbook/internal/application/ledger"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/application/tenant/tenanttest"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/pkg/logger"
)

const testTenant = "central"

var (
	admin    = entity.Actor{ID: "admin-1", Role: entity.RoleAdmin}
	operario = entity.Actor{ID: "op-1", Role: entity.RoleOperario}

	fecha = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	counts *counts.UseCase
	ledger *ledger.UseCase
	mem    *tenanttest.Mem
}

// newFixture arma los casos de uso y dos productos con stock inicial por el
// camino normal del libro (10 y 4 unidades).
func newFixture(t *testing.T) (fixture, string, string) {
	t.Helper()
	factory := tenanttest.NewFactory()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	reg := tenant.NewRegistry(factory, log)

	fx := fixture{
		counts: counts.NewUseCase(reg),
		ledger: ledger.NewUseCase(reg),
	}
	_, err := reg.Resolve(context.Background(), testTenant)
	require.NoError(t, err)
	fx.mem = factory.Mem(testTenant)

	harina, azucar := "prod-1", "prod-2"
	require.NoError(t, fx.mem.Products().Create(&entity.Product{ID: harina, Name: "Harina"}))
	require.NoError(t, fx.mem.Products().Create(&entity.Product{ID: azucar, Name: "Azúcar"}))
	fx.registra(t, harina, entity.EntryKindIn, 10)
	fx.registra(t, azucar, entity.EntryKindIn, 4)
	return fx, harina, azucar
}

func (fx fixture) registra(t *testing.T, productID, kind string, qty int64) {
	t.Helper()
	_, err := fx.ledger.Record(context.Background(), testTenant, ledger.MovementInput{
		ProductID: productID,
		Kind:      kind,
		Quantity:  decimal.NewFromInt(qty),
		ActorID:   "user-1",
	})
	require.NoError(t, err)
}

func (fx fixture) stockOf(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := fx.mem.Products().GetByID(productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Apertura
// ──────────────────────────────────────────────────────────────────────────────

// Abrir una toma congela el stock de sistema de todos los productos.
func TestCreate_CongelaElSnapshot(t *testing.T) {
	fx, harina, azucar := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)
	assert.Equal(t, entity.CountInProgress, count.Status)
	assert.Equal(t, fecha, count.CountDate)

	_, items, err := fx.counts.Get(ctx, testTenant, count.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]decimal.Decimal{}
	for _, it := range items {
		byID[it.ProductID] = it.SystemQuantity
		assert.Nil(t, it.ActualQuantity, "al abrir nada está contado")
	}
	assert.True(t, byID[harina].Equal(qty(10)))
	assert.True(t, byID[azucar].Equal(qty(4)))
}

func TestCreate_FechaDuplicada(t *testing.T) {
	fx, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)

	_, err = fx.counts.Create(ctx, testTenant, operario, fecha.Add(5*time.Hour))
	assert.ErrorIs(t, err, domain.ErrDuplicate, "misma fecha de negocio aunque cambie la hora")
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro y cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordItem_CalculaDiferencia(t *testing.T) {
	fx, harina, _ := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)

	item, err := fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(7), "merma", "")
	require.NoError(t, err)

	require.NotNil(t, item.ActualQuantity)
	assert.True(t, item.ActualQuantity.Equal(qty(7)))
	require.NotNil(t, item.Difference)
	assert.True(t, item.Difference.Equal(qty(-3)), "7 contadas - 10 de sistema")
	assert.Equal(t, "merma", item.Reason)
}

func TestRecordItem_CantidadNegativa(t *testing.T) {
	fx, harina, _ := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)

	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(-1), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplete_ExigeTodoContado(t *testing.T) {
	fx, harina, azucar := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)

	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(7), "", "")
	require.NoError(t, err)

	_, err = fx.counts.Complete(ctx, testTenant, count.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "falta el azúcar por contar")

	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, azucar, qty(4), "", "")
	require.NoError(t, err)

	completed, err := fx.counts.Complete(ctx, testTenant, count.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	// Cerrada la toma ya no se registran cantidades.
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(8), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aprobación: ajustes al libro, todo o nada
// ──────────────────────────────────────────────────────────────────────────────

// Sistema 10, contadas 7: la aprobación asienta un único adjust de -3 fechado en
// la fecha del conteo y el stock queda en 7. El producto sin diferencia no
// genera asiento.
func TestApprove_AsientaLasDiferencias(t *testing.T) {
	fx, harina, azucar := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(7), "merma", "")
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, azucar, qty(4), "", "")
	require.NoError(t, err)
	_, err = fx.counts.Complete(ctx, testTenant, count.ID)
	require.NoError(t, err)

	approved, err := fx.counts.Approve(ctx, testTenant, admin, count.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountApproved, approved.Status)
	require.NotNil(t, approved.Approver)
	assert.Equal(t, admin.ID, *approved.Approver)

	assert.True(t, fx.stockOf(t, harina).Equal(qty(7)))
	assert.True(t, fx.stockOf(t, azucar).Equal(qty(4)), "sin diferencia no hay ajuste")

	entries, err := fx.mem.Ledger().ListByProductSince(harina, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 2, "la entrada inicial más el ajuste")
	adj := entries[1]
	assert.Equal(t, entity.EntryKindAdjust, adj.Kind)
	assert.True(t, adj.Quantity.Equal(qty(-3)))
	assert.Equal(t, fecha, adj.EffectiveDate, "el ajuste se fecha en la fecha del conteo")
	assert.Contains(t, adj.Note, "merma")

	n, err := fx.mem.Ledger().CountByProduct(azucar)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "solo la entrada inicial")
}

func TestApprove_SoloAdmin(t *testing.T) {
	fx, _, _ := newFixture(t)
	_, err := fx.counts.Approve(context.Background(), testTenant, operario, "cualquiera")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApprove_SoloDesdeCompleted(t *testing.T) {
	fx, _, _ := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)

	_, err = fx.counts.Approve(ctx, testTenant, admin, count.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "in_progress no se aprueba directo")
}

// Si el stock de un producto cambió entre el cierre y la aprobación, la
// aprobación no pisa el valor: falla con deriva y la toma sigue completed.
func TestApprove_DerivaDeStock(t *testing.T) {
	fx, harina, azucar := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(7), "", "")
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, azucar, qty(4), "", "")
	require.NoError(t, err)
	_, err = fx.counts.Complete(ctx, testTenant, count.ID)
	require.NoError(t, err)

	// Movimiento ajeno entre el cierre y la aprobación.
	fx.registra(t, harina, entity.EntryKindIn, 5)

	_, err = fx.counts.Approve(ctx, testTenant, admin, count.ID)
	assert.ErrorIs(t, err, domain.ErrStockDrift)

	got, _, err := fx.counts.Get(ctx, testTenant, count.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountCompleted, got.Status, "la toma queda completed para retomar")
	assert.True(t, fx.stockOf(t, harina).Equal(qty(15)), "nada se ajustó")
}

// Atomicidad: si el segundo ajuste falla al escribirse, el primero se revierte
// y la toma no se aprueba.
func TestApprove_TodoONada(t *testing.T) {
	fx, harina, azucar := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(7), "", "")
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, azucar, qty(1), "", "")
	require.NoError(t, err)
	_, err = fx.counts.Complete(ctx, testTenant, count.ID)
	require.NoError(t, err)

	// Ambos productos tienen diferencia; falla la segunda escritura de ajuste.
	fx.mem.FailNextCreateEntry(2)
	_, err = fx.counts.Approve(ctx, testTenant, admin, count.ID)
	require.Error(t, err)

	assert.True(t, fx.stockOf(t, harina).Equal(qty(10)), "el primer ajuste se revirtió")
	assert.True(t, fx.stockOf(t, azucar).Equal(qty(4)))

	got, _, err := fx.counts.Get(ctx, testTenant, count.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountCompleted, got.Status)

	// Sin la inyección, la aprobación posterior sí aplica todo.
	approved, err := fx.counts.Approve(ctx, testTenant, admin, count.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountApproved, approved.Status)
	assert.True(t, fx.stockOf(t, harina).Equal(qty(7)))
	assert.True(t, fx.stockOf(t, azucar).Equal(qty(1)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Descarte y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_SoloEnCurso(t *testing.T) {
	fx, harina, azucar := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)
	require.NoError(t, fx.counts.Delete(ctx, testTenant, count.ID))

	_, _, err = fx.counts.Get(ctx, testTenant, count.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Borrada la toma, la fecha vuelve a estar disponible.
	count, err = fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(10), "", "")
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, azucar, qty(4), "", "")
	require.NoError(t, err)
	_, err = fx.counts.Complete(ctx, testTenant, count.ID)
	require.NoError(t, err)

	err = fx.counts.Delete(ctx, testTenant, count.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "completed ya no se descarta")
}

func TestReport_Agregados(t *testing.T) {
	fx, harina, azucar := newFixture(t)
	ctx := context.Background()

	count, err := fx.counts.Create(ctx, testTenant, operario, fecha)
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, harina, qty(7), "", "")
	require.NoError(t, err)
	_, err = fx.counts.RecordItem(ctx, testTenant, count.ID, azucar, qty(6), "", "")
	require.NoError(t, err)

	report, err := fx.counts.Report(ctx, testTenant, count.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalItems)
	assert.Equal(t, 2, report.CountedItems)
	assert.Equal(t, 2, report.ItemsWithVariance)
	assert.True(t, report.PositiveVariance.Equal(qty(2)), "azúcar: 6 - 4")
	assert.True(t, report.NegativeVariance.Equal(qty(-3)), "harina: 7 - 10")
}
