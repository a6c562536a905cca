package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/stockbook/pkg/config"
)

// NewPool crea el pool administrativo de PostgreSQL (DDL de aprovisionamiento).
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	return newPool(ctx, cfg, "", 10)
}

// NewTenantPool crea el pool de una sede con search_path fijado a su schema.
// Todas las consultas de los repositorios de esa sede quedan confinadas a él.
func NewTenantPool(ctx context.Context, cfg config.DBConfig, schema string, maxConns int) (*pgxpool.Pool, error) {
	return newPool(ctx, cfg, schema, maxConns)
}

func newPool(ctx context.Context, cfg config.DBConfig, schema string, maxConns int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if schema != "" {
		poolConfig.ConnConfig.RuntimeParams["search_path"] = schema
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Registrar codec para NUMERIC/DECIMAL -> shopspring/decimal (todas las conexiones del pool).
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}
