package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = "id, product_id, kind, quantity, effective_date, note, actor_id, created_at"

// LedgerRepo implementación del libro de movimientos sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create persiste un asiento del libro.
func (r *LedgerRepo) Create(entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ProductID, entry.Kind, entry.Quantity,
		entry.EffectiveDate, entry.Note, entry.ActorID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *LedgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	query := "SELECT " + ledgerColumns + " FROM ledger_entries WHERE id = $1"
	var e entity.LedgerEntry
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&e.ID, &e.ProductID, &e.Kind, &e.Quantity,
		&e.EffectiveDate, &e.Note, &e.ActorID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &e, nil
}

// Update reescribe cantidad y nota (corrección auditada, única mutación permitida).
func (r *LedgerRepo) Update(entry *entity.LedgerEntry) error {
	query := `UPDATE ledger_entries SET quantity = $2, note = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, entry.ID, entry.Quantity, entry.Note)
	if err != nil {
		return fmt.Errorf("update ledger entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve el historial ordenado por created_at descendente con filtros opcionales.
func (r *LedgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	query := "SELECT " + ledgerColumns + " FROM ledger_entries WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND effective_date >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND effective_date <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByProductSince devuelve los asientos con effective_date >= from en orden
// de created_at ascendente (orden de reconstrucción).
func (r *LedgerRepo) ListByProductSince(productID string, from time.Time) ([]*entity.LedgerEntry, error) {
	query := "SELECT " + ledgerColumns + ` FROM ledger_entries
		WHERE product_id = $1 AND effective_date >= $2
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, productID, from)
	if err != nil {
		return nil, fmt.Errorf("list entries since: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Kind, &e.Quantity,
			&e.EffectiveDate, &e.Note, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SumByProduct devuelve la suma firmada de todos los asientos del producto
// (in = +quantity, out = -quantity, adjust = quantity).
func (r *LedgerRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'out' THEN -quantity ELSE quantity END), 0)
		FROM ledger_entries WHERE product_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger entries: %w", err)
	}
	return sum, nil
}

// CountByProduct cuenta los asientos que referencian al producto.
func (r *LedgerRepo) CountByProduct(productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM ledger_entries WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return n, nil
}
