package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/pkg/config"
	"github.com/tu-usuario/stockbook/pkg/logger"
)

var _ tenant.Factory = (*TenantFactory)(nil)

// TenantFactory aprovisiona el almacén de una sede: un schema PostgreSQL propio
// (creado idempotentemente) y un pool con search_path fijado a él. Borrar una
// sede es un DROP SCHEMA ... CASCADE sin tocar a las demás.
type TenantFactory struct {
	admin *pgxpool.Pool // pool administrativo, solo DDL
	cfg   config.DBConfig
	tcfg  config.TenantConfig
	log   *logger.Logger
}

// NewTenantFactory construye la fábrica.
func NewTenantFactory(admin *pgxpool.Pool, cfg config.DBConfig, tcfg config.TenantConfig, log *logger.Logger) *TenantFactory {
	return &TenantFactory{admin: admin, cfg: cfg, tcfg: tcfg, log: log}
}

// Provision crea schema y tablas si no existen y devuelve el handle de la sede.
// code llega saneado por el registro; el nombre del schema se compone con el
// prefijo configurado. Si el DDL falla no se cachea nada: el registro reintenta.
func (f *TenantFactory) Provision(ctx context.Context, code string) (*tenant.Store, error) {
	schema := f.tcfg.SchemaPrefix + code
	if err := f.createSchema(ctx, schema); err != nil {
		return nil, err
	}

	pool, err := NewTenantPool(ctx, f.cfg, schema, f.tcfg.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("pool de sede %s: %w", code, err)
	}

	f.log.Debug().Str("tenant", code).Str("schema", schema).Msg("almacén de sede listo")
	return tenant.NewStore(
		code,
		NewProductRepository(pool),
		NewLedgerRepository(pool),
		NewOrderRepository(pool),
		NewCountRepository(pool),
		NewTxRunner(pool),
		pool.Close,
	), nil
}

// createSchema ejecuta el DDL idempotente del almacén. schema ya está limitado
// al conjunto seguro [a-z0-9_] por el saneado del registro.
func (f *TenantFactory) createSchema(ctx context.Context, schema string) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS %[1]s`,
		`CREATE TABLE IF NOT EXISTS %[1]s.products (
			id            text PRIMARY KEY,
			name          text NOT NULL,
			category      text NOT NULL DEFAULT '',
			reorder_point numeric NOT NULL DEFAULT 0,
			current_stock numeric NOT NULL DEFAULT 0,
			image_ref     text NOT NULL DEFAULT '',
			created_at    timestamptz NOT NULL,
			updated_at    timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS %[1]s.ledger_entries (
			id             text PRIMARY KEY,
			product_id     text NOT NULL REFERENCES %[1]s.products(id),
			kind           text NOT NULL CHECK (kind IN ('in', 'out', 'adjust')),
			quantity       numeric NOT NULL,
			effective_date date NOT NULL,
			note           text NOT NULL DEFAULT '',
			actor_id       text NOT NULL DEFAULT '',
			created_at     timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ledger_entries_product_date_idx
			ON %[1]s.ledger_entries (product_id, effective_date)`,
		`CREATE TABLE IF NOT EXISTS %[1]s.order_requests (
			id                 text PRIMARY KEY,
			product_id         text NOT NULL REFERENCES %[1]s.products(id),
			requested_quantity numeric NOT NULL,
			requester          text NOT NULL,
			status             text NOT NULL,
			approved_quantity  numeric,
			approver           text,
			approved_at        timestamptz,
			note               text NOT NULL DEFAULT '',
			actor_id           text NOT NULL DEFAULT '',
			requested_at       timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS %[1]s.stock_counts (
			id           text PRIMARY KEY,
			count_date   date NOT NULL UNIQUE,
			status       text NOT NULL,
			creator      text NOT NULL,
			approver     text,
			created_at   timestamptz NOT NULL,
			completed_at timestamptz,
			approved_at  timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS %[1]s.stock_count_items (
			count_id        text NOT NULL REFERENCES %[1]s.stock_counts(id) ON DELETE CASCADE,
			product_id      text NOT NULL REFERENCES %[1]s.products(id),
			system_quantity numeric NOT NULL,
			actual_quantity numeric,
			difference      numeric,
			reason          text NOT NULL DEFAULT '',
			note            text NOT NULL DEFAULT '',
			PRIMARY KEY (count_id, product_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := f.admin.Exec(ctx, fmt.Sprintf(stmt, schema)); err != nil {
			return fmt.Errorf("aprovisionar schema %s: %w", schema, err)
		}
	}
	return nil
}
