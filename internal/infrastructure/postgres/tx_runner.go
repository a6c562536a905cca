package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

var _ tenant.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción del pool de la sede.
// Commit si fn retorna nil; Rollback garantizado en cualquier otra salida.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool de la sede.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLedger inicia una transacción con los repos del camino del libro.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	products repository.ProductRepository,
	ledger repository.LedgerRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewProductRepository(q), NewLedgerRepository(q))
	})
}

// RunOrders inicia una transacción para la recepción de pedidos (libro + solicitudes).
func (r *TxRunner) RunOrders(ctx context.Context, fn func(
	products repository.ProductRepository,
	ledger repository.LedgerRepository,
	orders repository.OrderRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewProductRepository(q), NewLedgerRepository(q), NewOrderRepository(q))
	})
}

// RunCounts inicia una transacción para el flujo de conteos (libro + tomas).
func (r *TxRunner) RunCounts(ctx context.Context, fn func(
	products repository.ProductRepository,
	ledger repository.LedgerRepository,
	counts repository.CountRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewProductRepository(q), NewLedgerRepository(q), NewCountRepository(q))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
