// Package tenanttest provee un almacén de sede en memoria para tests de casos
// de uso: implementa los cuatro puertos de persistencia y un TxRunner con
// snapshot/rollback, más puntos de inyección de fallos.
package tenanttest

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

// Mem es el almacén en memoria de una sede. Los puertos de persistencia se
// obtienen con Products/Ledger/Orders/Counts; Mem mismo es el tenant.TxRunner.
type Mem struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	entries  []*entity.LedgerEntry
	orders   map[string]*entity.OrderRequest
	counts   map[string]*entity.StockCount
	items    map[string]map[string]*entity.CountItem // countID -> productID

	// FailCreateEntryAt hace fallar la N-ésima escritura de asiento (1-based)
	// con ErrInjected. Cero desactiva la inyección.
	FailCreateEntryAt int
	createEntryCalls  int
}

// FailNextCreateEntry programa un fallo en la n-ésima escritura de asiento a
// partir de ahora (1 = la próxima).
func (m *Mem) FailNextCreateEntry(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailCreateEntryAt = m.createEntryCalls + n
}

// ErrInjected es el error devuelto por los puntos de inyección de fallos.
var ErrInjected = errInjected{}

type errInjected struct{}

func (errInjected) Error() string { return "fallo inyectado" }

// New construye el almacén vacío.
func New() *Mem {
	return &Mem{
		products: make(map[string]*entity.Product),
		orders:   make(map[string]*entity.OrderRequest),
		counts:   make(map[string]*entity.StockCount),
		items:    make(map[string]map[string]*entity.CountItem),
	}
}

// NewStore construye un handle tenant.Store respaldado por un Mem nuevo.
func NewStore(code string) (*tenant.Store, *Mem) {
	m := New()
	return tenant.NewStore(code, m.Products(), m.Ledger(), m.Orders(), m.Counts(), m, nil), m
}

// Products devuelve la vista ProductRepository del almacén.
func (m *Mem) Products() repository.ProductRepository { return productsRepo{m} }

// Ledger devuelve la vista LedgerRepository del almacén.
func (m *Mem) Ledger() repository.LedgerRepository { return ledgerRepo{m} }

// Orders devuelve la vista OrderRepository del almacén.
func (m *Mem) Orders() repository.OrderRepository { return ordersRepo{m} }

// Counts devuelve la vista CountRepository del almacén.
func (m *Mem) Counts() repository.CountRepository { return countsRepo{m} }

// Factory implementa tenant.Factory creando un Mem por código. Cuenta los
// aprovisionamientos para verificar el colapso por singleflight.
type Factory struct {
	mu         sync.Mutex
	Provisions map[string]int
	mems       map[string]*Mem
	// Err hace fallar el siguiente aprovisionamiento (se consume).
	Err error
	// Delay simula un aprovisionamiento lento.
	Delay time.Duration
}

// NewFactory construye la fábrica de prueba.
func NewFactory() *Factory {
	return &Factory{
		Provisions: make(map[string]int),
		mems:       make(map[string]*Mem),
	}
}

// Provision implementa tenant.Factory.
func (f *Factory) Provision(ctx context.Context, code string) (*tenant.Store, error) {
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		err := f.Err
		f.Err = nil
		return nil, err
	}
	f.Provisions[code]++
	store, mem := NewStore(code)
	f.mems[code] = mem
	return store, nil
}

// Mem devuelve el almacén en memoria de un código ya aprovisionado, para
// sembrar datos o inyectar fallos desde los tests.
func (f *Factory) Mem(code string) *Mem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mems[code]
}

// ProvisionCount devuelve cuántas veces se aprovisionó el código.
func (f *Factory) ProvisionCount(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Provisions[code]
}

// ─────────────────────────────────────────────────────────────
// TxRunner: snapshot antes de fn, restaura si fn falla.
// ─────────────────────────────────────────────────────────────

type snapshot struct {
	products map[string]*entity.Product
	entries  []*entity.LedgerEntry
	orders   map[string]*entity.OrderRequest
	counts   map[string]*entity.StockCount
	items    map[string]map[string]*entity.CountItem
}

func (m *Mem) take() snapshot {
	s := snapshot{
		products: make(map[string]*entity.Product, len(m.products)),
		entries:  make([]*entity.LedgerEntry, len(m.entries)),
		orders:   make(map[string]*entity.OrderRequest, len(m.orders)),
		counts:   make(map[string]*entity.StockCount, len(m.counts)),
		items:    make(map[string]map[string]*entity.CountItem, len(m.items)),
	}
	for k, v := range m.products {
		cp := *v
		s.products[k] = &cp
	}
	for i, e := range m.entries {
		cp := *e
		s.entries[i] = &cp
	}
	for k, v := range m.orders {
		cp := *v
		s.orders[k] = &cp
	}
	for k, v := range m.counts {
		cp := *v
		s.counts[k] = &cp
	}
	for cid, byProduct := range m.items {
		inner := make(map[string]*entity.CountItem, len(byProduct))
		for pid, it := range byProduct {
			cp := *it
			inner[pid] = &cp
		}
		s.items[cid] = inner
	}
	return s
}

func (m *Mem) restore(s snapshot) {
	m.products = s.products
	m.entries = s.entries
	m.orders = s.orders
	m.counts = s.counts
	m.items = s.items
}

func (m *Mem) run(fn func() error) error {
	m.mu.Lock()
	s := m.take()
	m.mu.Unlock()
	if err := fn(); err != nil {
		m.mu.Lock()
		m.restore(s)
		m.mu.Unlock()
		return err
	}
	return nil
}

// RunLedger implementa tenant.TxRunner.
func (m *Mem) RunLedger(ctx context.Context, fn func(repository.ProductRepository, repository.LedgerRepository) error) error {
	return m.run(func() error { return fn(m.Products(), m.Ledger()) })
}

// RunOrders implementa tenant.TxRunner.
func (m *Mem) RunOrders(ctx context.Context, fn func(repository.ProductRepository, repository.LedgerRepository, repository.OrderRepository) error) error {
	return m.run(func() error { return fn(m.Products(), m.Ledger(), m.Orders()) })
}

// RunCounts implementa tenant.TxRunner.
func (m *Mem) RunCounts(ctx context.Context, fn func(repository.ProductRepository, repository.LedgerRepository, repository.CountRepository) error) error {
	return m.run(func() error { return fn(m.Products(), m.Ledger(), m.Counts()) })
}
