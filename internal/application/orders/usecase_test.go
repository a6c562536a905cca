package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stockbook/internal/application/orders"
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
	otroOp   = entity.Actor{ID: "op-2", Role: entity.RoleOperario}
)

func newFixture(t *testing.T) (*orders.UseCase, *tenanttest.Mem, string) {
	t.Helper()
	factory := tenanttest.NewFactory()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	reg := tenant.NewRegistry(factory, log)
	uc := orders.NewUseCase(reg)

	_, err := reg.Resolve(context.Background(), testTenant)
	require.NoError(t, err)
	mem := factory.Mem(testTenant)

	productID := "prod-1"
	require.NoError(t, mem.Products().Create(&entity.Product{
		ID:           productID,
		Name:         "Harina",
		CurrentStock: decimal.NewFromInt(10),
	}))
	return uc, mem, productID
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_QuedaPendiente(t *testing.T) {
	uc, _, productID := newFixture(t)

	order, err := uc.Create(context.Background(), testTenant, operario, productID, qty(25), "para el fin de semana")
	require.NoError(t, err)

	assert.Equal(t, entity.OrderPending, order.Status)
	assert.Equal(t, operario.ID, order.Requester)
	assert.True(t, order.RequestedQuantity.Equal(qty(25)))
	assert.Nil(t, order.ApprovedQuantity, "sin aprobar no hay cantidad aprobada")
}

func TestCreate_Validacion(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, testTenant, operario, productID, qty(0), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la cantidad mínima es 1")

	_, err = uc.Create(ctx, testTenant, operario, "no-existe", qty(5), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aprobación / rechazo / autorización
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_SoloAdmin(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(25), "")
	require.NoError(t, err)

	_, err = uc.Approve(ctx, testTenant, operario, order.ID, qty(20), "")
	assert.ErrorIs(t, err, domain.ErrForbidden, "un operario no aprueba pedidos")

	approved, err := uc.Approve(ctx, testTenant, admin, order.ID, qty(20), "")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderApproved, approved.Status)
	require.NotNil(t, approved.ApprovedQuantity)
	assert.True(t, approved.ApprovedQuantity.Equal(qty(20)), "puede aprobar menos de lo pedido")
	require.NotNil(t, approved.Approver)
	assert.Equal(t, admin.ID, *approved.Approver)
}

func TestReject_DesdePendingEsTerminal(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(5), "")
	require.NoError(t, err)

	rejected, err := uc.Reject(ctx, testTenant, admin, order.ID, "sin presupuesto")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedQuantity)

	_, err = uc.Approve(ctx, testTenant, admin, order.ID, qty(5), "")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "rejected no admite transiciones")
}

func TestCancel_DuenoYAdmin(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(5), "")
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, testTenant, otroOp, order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "otro operario no cancela lo ajeno")

	cancelled, err := uc.Cancel(ctx, testTenant, operario, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, cancelled.Status)
}

// Un pedido aprobado aún puede cancelarse (p.ej. el proveedor no cumplió).
func TestCancel_DesdeApproved(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(5), "")
	require.NoError(t, err)
	_, err = uc.Approve(ctx, testTenant, admin, order.ID, qty(5), "")
	require.NoError(t, err)

	cancelled, err := uc.Cancel(ctx, testTenant, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, cancelled.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestEdit_CampoSegunEstado(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(25), "")
	require.NoError(t, err)

	_, err = uc.Edit(ctx, testTenant, operario, order.ID, qty(30), "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// En pending se edita la cantidad solicitada.
	edited, err := uc.Edit(ctx, testTenant, admin, order.ID, qty(30), "")
	require.NoError(t, err)
	assert.True(t, edited.RequestedQuantity.Equal(qty(30)))

	// En approved se edita la cantidad aprobada.
	_, err = uc.Approve(ctx, testTenant, admin, order.ID, qty(30), "")
	require.NoError(t, err)
	edited, err = uc.Edit(ctx, testTenant, admin, order.ID, qty(18), "")
	require.NoError(t, err)
	require.NotNil(t, edited.ApprovedQuantity)
	assert.True(t, edited.ApprovedQuantity.Equal(qty(18)))
	assert.True(t, edited.RequestedQuantity.Equal(qty(30)), "la solicitada no se toca en approved")

	// En terminal no se edita.
	_, err = uc.Cancel(ctx, testTenant, admin, order.ID)
	require.NoError(t, err)
	_, err = uc.Edit(ctx, testTenant, admin, order.ID, qty(9), "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

// Recibir escribe la entrada en el libro, actualiza el stock y deja la
// solicitud fulfilled, todo junto.
func TestReceive_AsientaEntradaYCierra(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(25), "")
	require.NoError(t, err)
	_, err = uc.Approve(ctx, testTenant, admin, order.ID, qty(20), "")
	require.NoError(t, err)

	received, err := uc.Receive(ctx, testTenant, admin, order.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderFulfilled, received.Status)

	p, err := mem.Products().GetByID(productID)
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(qty(30)), "10 + 20 aprobadas")

	entries, err := mem.Ledger().ListByProductSince(productID, p.CreatedAt)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.EntryKindIn, entries[0].Kind)
	assert.True(t, entries[0].Quantity.Equal(qty(20)))
}

// La cantidad recibida puede diferir de la aprobada (entrega parcial).
func TestReceive_CantidadExplicita(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(25), "")
	require.NoError(t, err)
	_, err = uc.Approve(ctx, testTenant, admin, order.ID, qty(20), "")
	require.NoError(t, err)

	parcial := qty(15)
	_, err = uc.Receive(ctx, testTenant, admin, order.ID, &parcial, "llegó incompleto")
	require.NoError(t, err)

	p, _ := mem.Products().GetByID(productID)
	assert.True(t, p.CurrentStock.Equal(qty(25)), "10 + 15 recibidas")
}

func TestReceive_SoloDesdeApproved(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(25), "")
	require.NoError(t, err)

	_, err = uc.Receive(ctx, testTenant, admin, order.ID, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "pending no se recibe")

	p, _ := mem.Products().GetByID(productID)
	assert.True(t, p.CurrentStock.Equal(qty(10)), "el stock no se movió")
}

func TestReceive_DosVecesFalla(t *testing.T) {
	uc, mem, productID := newFixture(t)
	ctx := context.Background()

	order, err := uc.Create(ctx, testTenant, operario, productID, qty(25), "")
	require.NoError(t, err)
	_, err = uc.Approve(ctx, testTenant, admin, order.ID, qty(20), "")
	require.NoError(t, err)
	_, err = uc.Receive(ctx, testTenant, admin, order.ID, nil, "")
	require.NoError(t, err)

	_, err = uc.Receive(ctx, testTenant, admin, order.ID, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "fulfilled es terminal")

	p, _ := mem.Products().GetByID(productID)
	assert.True(t, p.CurrentStock.Equal(qty(30)), "la entrada no se duplica")
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstado(t *testing.T) {
	uc, _, productID := newFixture(t)
	ctx := context.Background()

	a, err := uc.Create(ctx, testTenant, operario, productID, qty(5), "")
	require.NoError(t, err)
	_, err = uc.Create(ctx, testTenant, operario, productID, qty(6), "")
	require.NoError(t, err)
	_, err = uc.Approve(ctx, testTenant, admin, a.ID, qty(5), "")
	require.NoError(t, err)

	pendientes, err := uc.List(ctx, testTenant, entity.OrderPending, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pendientes, 1)

	todas, err := uc.List(ctx, testTenant, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	_, err = uc.List(ctx, testTenant, "shipped", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
