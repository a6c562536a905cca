package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

var _ repository.CountRepository = (*CountRepo)(nil)

const countColumns = "id, count_date, status, creator, approver, created_at, completed_at, approved_at"
const countItemColumns = "count_id, product_id, system_quantity, actual_quantity, difference, reason, note"

// CountRepo implementación del puerto CountRepository sobre PostgreSQL (usable con pool o tx).
type CountRepo struct {
	q Querier
}

// NewCountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCountRepository(q Querier) *CountRepo {
	return &CountRepo{q: q}
}

// CreateCount persiste una toma. La unicidad de count_date la garantiza el schema.
func (r *CountRepo) CreateCount(count *entity.StockCount) error {
	query := `
		INSERT INTO stock_counts (` + countColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		count.ID, count.CountDate, string(count.Status), count.Creator,
		count.Approver, count.CreatedAt, count.CompletedAt, count.ApprovedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert count: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de toma.
func (r *CountRepo) CreateItem(item *entity.CountItem) error {
	query := `
		INSERT INTO stock_count_items (` + countItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		item.CountID, item.ProductID, item.SystemQuantity,
		item.ActualQuantity, item.Difference, item.Reason, item.Note,
	)
	if err != nil {
		return fmt.Errorf("insert count item: %w", err)
	}
	return nil
}

// GetCount obtiene una toma por ID.
func (r *CountRepo) GetCount(id string) (*entity.StockCount, error) {
	query := "SELECT " + countColumns + " FROM stock_counts WHERE id = $1"
	return r.getCount(query, id)
}

// GetByDate obtiene la toma de una fecha de negocio, si existe.
func (r *CountRepo) GetByDate(date time.Time) (*entity.StockCount, error) {
	query := "SELECT " + countColumns + " FROM stock_counts WHERE count_date = $1"
	return r.getCount(query, date)
}

func (r *CountRepo) getCount(query string, arg any) (*entity.StockCount, error) {
	var c entity.StockCount
	var status string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&c.ID, &c.CountDate, &status, &c.Creator,
		&c.Approver, &c.CreatedAt, &c.CompletedAt, &c.ApprovedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count: %w", err)
	}
	c.Status = entity.CountStatus(status)
	return &c, nil
}

// UpdateCount persiste estado y marcas de tiempo de la toma.
func (r *CountRepo) UpdateCount(count *entity.StockCount) error {
	query := `
		UPDATE stock_counts
		SET status = $2, approver = $3, completed_at = $4, approved_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		count.ID, string(count.Status), count.Approver, count.CompletedAt, count.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("update count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetItem obtiene una línea por toma y producto.
func (r *CountRepo) GetItem(countID, productID string) (*entity.CountItem, error) {
	query := "SELECT " + countItemColumns + " FROM stock_count_items WHERE count_id = $1 AND product_id = $2"
	var it entity.CountItem
	err := r.q.QueryRow(context.Background(), query, countID, productID).Scan(
		&it.CountID, &it.ProductID, &it.SystemQuantity,
		&it.ActualQuantity, &it.Difference, &it.Reason, &it.Note,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count item: %w", err)
	}
	return &it, nil
}

// UpdateItem persiste cantidad contada, diferencia, motivo y nota de una línea.
func (r *CountRepo) UpdateItem(item *entity.CountItem) error {
	query := `
		UPDATE stock_count_items
		SET actual_quantity = $3, difference = $4, reason = $5, note = $6
		WHERE count_id = $1 AND product_id = $2`
	tag, err := r.q.Exec(context.Background(), query,
		item.CountID, item.ProductID, item.ActualQuantity, item.Difference, item.Reason, item.Note,
	)
	if err != nil {
		return fmt.Errorf("update count item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListItems devuelve las líneas de la toma ordenadas por producto.
func (r *CountRepo) ListItems(countID string) ([]*entity.CountItem, error) {
	query := "SELECT " + countItemColumns + " FROM stock_count_items WHERE count_id = $1 ORDER BY product_id"
	rows, err := r.q.Query(context.Background(), query, countID)
	if err != nil {
		return nil, fmt.Errorf("list count items: %w", err)
	}
	defer rows.Close()

	var list []*entity.CountItem
	for rows.Next() {
		var it entity.CountItem
		if err := rows.Scan(&it.CountID, &it.ProductID, &it.SystemQuantity,
			&it.ActualQuantity, &it.Difference, &it.Reason, &it.Note); err != nil {
			return nil, fmt.Errorf("scan count item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListCounts devuelve las tomas ordenadas por fecha descendente.
func (r *CountRepo) ListCounts(limit, offset int) ([]*entity.StockCount, error) {
	query := "SELECT " + countColumns + " FROM stock_counts ORDER BY count_date DESC LIMIT $1 OFFSET $2"
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list counts: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockCount
	for rows.Next() {
		var c entity.StockCount
		var status string
		if err := rows.Scan(&c.ID, &c.CountDate, &status, &c.Creator,
			&c.Approver, &c.CreatedAt, &c.CompletedAt, &c.ApprovedAt); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		c.Status = entity.CountStatus(status)
		list = append(list, &c)
	}
	return list, rows.Err()
}

// PendingItems cuenta las líneas sin cantidad contada.
func (r *CountRepo) PendingItems(countID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM stock_count_items WHERE count_id = $1 AND actual_quantity IS NULL`,
		countID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pending items: %w", err)
	}
	return n, nil
}

// DeleteCount elimina la toma; las líneas caen por ON DELETE CASCADE.
func (r *CountRepo) DeleteCount(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM stock_counts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
