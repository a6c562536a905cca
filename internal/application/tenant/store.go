// Package tenant implementa el registro explícito de almacenes por sede:
// resolución por código saneado, aprovisionamiento único bajo singleflight
// y cierre ordenado de todos los handles.
package tenant

import (
	"context"

	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

// Store es el handle del almacén aislado de una sede: sus repositorios y su
// frontera transaccional. Dos sedes nunca comparten un Store.
type Store struct {
	Code     string
	Products repository.ProductRepository
	Ledger   repository.LedgerRepository
	Orders   repository.OrderRepository
	Counts   repository.CountRepository
	Tx       TxRunner

	closeFn func()
}

// NewStore construye el handle. closeFn libera los recursos del almacén (puede ser nil).
func NewStore(
	code string,
	products repository.ProductRepository,
	ledger repository.LedgerRepository,
	orders repository.OrderRepository,
	counts repository.CountRepository,
	tx TxRunner,
	closeFn func(),
) *Store {
	return &Store{
		Code:     code,
		Products: products,
		Ledger:   ledger,
		Orders:   orders,
		Counts:   counts,
		Tx:       tx,
		closeFn:  closeFn,
	}
}

// Close libera los recursos del almacén.
func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// TxRunner ejecuta una función dentro de una transacción del almacén de la sede,
// pasando repositorios atados a esa tx. Commit si fn retorna nil, Rollback si no.
// Garantiza la atomicidad de los caminos de escritura (asientos, pedidos, conteos).
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		products repository.ProductRepository,
		ledger repository.LedgerRepository,
	) error) error

	RunOrders(ctx context.Context, fn func(
		products repository.ProductRepository,
		ledger repository.LedgerRepository,
		orders repository.OrderRepository,
	) error) error

	RunCounts(ctx context.Context, fn func(
		products repository.ProductRepository,
		ledger repository.LedgerRepository,
		counts repository.CountRepository,
	) error) error
}

// Factory aprovisiona el almacén de una sede (schema + tablas) de forma idempotente
// y devuelve su handle. code llega ya saneado por el registro.
type Factory interface {
	Provision(ctx context.Context, code string) (*Store, error)
}
