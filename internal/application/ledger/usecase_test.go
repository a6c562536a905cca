package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stockbook/internal/application/ledger"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/application/tenant/tenanttest"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
	"github.com/tu-usuario/stockbook/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testTenant = "central"

// newFixture arma registro + caso de uso y siembra un producto con stock cero.
func newFixture(t *testing.T) (*ledger.UseCase, *tenanttest.Mem, string) {
	t.Helper()
	factory := tenanttest.NewFactory()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	reg := tenant.NewRegistry(factory, log)
	uc := ledger.NewUseCase(reg)

	_, err := reg.Resolve(context.Background(), testTenant)
	require.NoError(t, err)
	mem := factory.Mem(testTenant)
	require.NotNil(t, mem)

	productID := "prod-1"
	require.NoError(t, mem.Products().Create(&entity.Product{
		ID:           productID,
		Name:         "Harina",
		ReorderPoint: decimal.NewFromInt(10),
	}))
	return uc, mem, productID
}

func stockOf(t *testing.T, mem *tenanttest.Mem, productID string) decimal.Decimal {
	t.Helper()
	p, err := mem.Products().GetByID(productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func mov(productID, kind string, qty int64) ledger.MovementInput {
	return ledger.MovementInput{
		ProductID: productID,
		Kind:      kind,
		Quantity:  decimal.NewFromInt(qty),
		ActorID:   "user-1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de movimientos y proyección
// ──────────────────────────────────────────────────────────────────────────────

// La proyección CurrentStock sigue la suma firmada del libro tras cada escritura.
func TestRecord_ActualizaProyeccion(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	_, err := uc.Record(ctx, testTenant, mov(productID, entity.EntryKindIn, 20))
	require.NoError(t, err)
	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(20)))

	_, err = uc.Record(ctx, testTenant, mov(productID, entity.EntryKindOut, 8))
	require.NoError(t, err)
	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(12)))

	_, err = uc.Record(ctx, testTenant, mov(productID, entity.EntryKindAdjust, -2))
	require.NoError(t, err)
	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(10)))

	sum, err := mem.Ledger().SumByProduct(productID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stockOf(t, mem, productID)),
		"la proyección debe igualar la suma firmada del libro")
}

// Las salidas pueden dejar el stock negativo: el libro registra la realidad
// contable y el conteo físico es quien la reconcilia después.
func TestRecord_PermiteStockNegativo(t *testing.T) {
	uc, mem, productID := newFixture(t)

	_, err := uc.Record(context.Background(), testTenant, mov(productID, entity.EntryKindOut, 5))
	require.NoError(t, err)
	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(-5)))
}

func TestRecord_FechaEfectivaSeTruncaADia(t *testing.T) {
	uc, _, productID := newFixture(t)

	in := mov(productID, entity.EntryKindIn, 3)
	in.EffectiveDate = time.Date(2026, 8, 14, 17, 45, 12, 0, time.UTC)
	entry, err := uc.Record(context.Background(), testTenant, in)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), entry.EffectiveDate)
	assert.NotZero(t, entry.CreatedAt, "el instante de escritura se conserva aparte")
}

func TestRecord_Validacion(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   ledger.MovementInput
	}{
		{"cantidad cero en entrada", mov(productID, entity.EntryKindIn, 0)},
		{"cantidad negativa en salida", mov(productID, entity.EntryKindOut, -4)},
		{"ajuste cero", mov(productID, entity.EntryKindAdjust, 0)},
		{"tipo desconocido", mov(productID, "transfer", 5)},
		{"sin producto", mov("", entity.EntryKindIn, 5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Record(ctx, testTenant, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRecord_ProductoInexistente(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.Record(context.Background(), testTenant, mov("no-existe", entity.EntryKindIn, 5))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lote
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordBatch_AplicaTodos(t *testing.T) {
	uc, mem, productID := newFixture(t)

	entries, err := uc.RecordBatch(context.Background(), testTenant, []ledger.MovementInput{
		mov(productID, entity.EntryKindIn, 50),
		mov(productID, entity.EntryKindOut, 5),
		mov(productID, entity.EntryKindOut, 7),
	})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(38)))
}

// Si un movimiento del lote falla al persistir, ninguno queda aplicado.
func TestRecordBatch_TodoONada(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	_, err := uc.Record(ctx, testTenant, mov(productID, entity.EntryKindIn, 10))
	require.NoError(t, err)

	// Falla la segunda escritura de asiento del lote.
	mem.FailNextCreateEntry(2)
	_, err = uc.RecordBatch(ctx, testTenant, []ledger.MovementInput{
		mov(productID, entity.EntryKindOut, 3),
		mov(productID, entity.EntryKindOut, 4),
	})
	require.Error(t, err)

	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(10)),
		"el stock no debe reflejar ningún movimiento del lote fallido")
	n, err := mem.Ledger().CountByProduct(productID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "solo el asiento previo al lote sobrevive")
}

func TestRecordBatch_VacioEsInvalido(t *testing.T) {
	uc, _, _ := newFixture(t)
	_, err := uc.RecordBatch(context.Background(), testTenant, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// La validación corre antes de escribir: un lote con un movimiento inválido no
// toca el libro.
func TestRecordBatch_ValidaAntesDeEscribir(t *testing.T) {
	uc, mem, productID := newFixture(t)

	_, err := uc.RecordBatch(context.Background(), testTenant, []ledger.MovementInput{
		mov(productID, entity.EntryKindIn, 5),
		mov(productID, entity.EntryKindOut, 0), // inválido
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := mem.Ledger().CountByProduct(productID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// Corrección auditada
// ──────────────────────────────────────────────────────────────────────────────

// Corregir una salida de 8 a 3 devuelve 5 unidades a la proyección.
func TestCorrect_AplicaElDelta(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	_, err := uc.Record(ctx, testTenant, mov(productID, entity.EntryKindIn, 20))
	require.NoError(t, err)
	out, err := uc.Record(ctx, testTenant, mov(productID, entity.EntryKindOut, 8))
	require.NoError(t, err)
	require.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(12)))

	corrected, err := uc.Correct(ctx, testTenant, out.ID, decimal.NewFromInt(3), "conteo mal digitado")
	require.NoError(t, err)

	assert.True(t, corrected.Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "conteo mal digitado", corrected.Note)
	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(17)),
		"20 - 3: la corrección reaplica el efecto firmado")

	sum, err := mem.Ledger().SumByProduct(productID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stockOf(t, mem, productID)))
}

func TestCorrect_AjusteCambiaDeSigno(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	adj, err := uc.Record(ctx, testTenant, mov(productID, entity.EntryKindAdjust, -4))
	require.NoError(t, err)
	require.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(-4)))

	_, err = uc.Correct(ctx, testTenant, adj.ID, decimal.NewFromInt(6), "")
	require.NoError(t, err)
	assert.True(t, stockOf(t, mem, productID).Equal(decimal.NewFromInt(6)))
}

func TestCorrect_AsientoInexistente(t *testing.T) {
	uc, _, _ := newFixture(t)
	_, err := uc.Correct(context.Background(), testTenant, "no-existe", decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorrect_CantidadInvalidaSegunTipo(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	out, err := uc.Record(ctx, testTenant, mov(productID, entity.EntryKindOut, 8))
	require.NoError(t, err)

	_, err = uc.Correct(ctx, testTenant, out.ID, decimal.NewFromInt(-2), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una salida corregida sigue exigiendo cantidad positiva")
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_FiltraPorProductoYFechas(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	otro := "prod-2"
	require.NoError(t, mem.Products().Create(&entity.Product{ID: otro, Name: "Azúcar"}))

	dia := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
	for _, m := range []struct {
		pid string
		d   int
	}{{productID, 10}, {productID, 12}, {productID, 20}, {otro, 12}} {
		in := mov(m.pid, entity.EntryKindIn, 1)
		in.EffectiveDate = dia(m.d)
		_, err := uc.Record(ctx, testTenant, in)
		require.NoError(t, err)
	}

	from, to := dia(11), dia(15)
	list, err := uc.History(ctx, testTenant, repository.LedgerFilter{
		ProductID: productID,
		From:      &from,
		To:        &to,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dia(12), list[0].EffectiveDate)
	assert.Equal(t, productID, list[0].ProductID)
}
