package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = "id, product_id, requested_quantity, requester, status, approved_quantity, approver, approved_at, note, actor_id, requested_at"

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste una solicitud de pedido.
func (r *OrderRepo) Create(order *entity.OrderRequest) error {
	query := `
		INSERT INTO order_requests (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.ProductID, order.RequestedQuantity, order.Requester,
		string(order.Status), order.ApprovedQuantity, order.Approver, order.ApprovedAt,
		order.Note, order.ActorID, order.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *OrderRepo) GetByID(id string) (*entity.OrderRequest, error) {
	query := "SELECT " + orderColumns + " FROM order_requests WHERE id = $1"
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// Update persiste el estado completo de la solicitud.
func (r *OrderRepo) Update(order *entity.OrderRequest) error {
	query := `
		UPDATE order_requests
		SET requested_quantity = $2, status = $3, approved_quantity = $4,
		    approver = $5, approved_at = $6, note = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		order.ID, order.RequestedQuantity, string(order.Status),
		order.ApprovedQuantity, order.Approver, order.ApprovedAt, order.Note,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve solicitudes ordenadas por requested_at descendente. status vacío = todas.
func (r *OrderRepo) List(status entity.OrderStatus, limit, offset int) ([]*entity.OrderRequest, error) {
	query := "SELECT " + orderColumns + " FROM order_requests"
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, string(status))
		pos++
	}
	query += fmt.Sprintf(" ORDER BY requested_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.OrderRequest
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.OrderRequest, error) {
	var o entity.OrderRequest
	var status string
	err := row.Scan(
		&o.ID, &o.ProductID, &o.RequestedQuantity, &o.Requester, &status,
		&o.ApprovedQuantity, &o.Approver, &o.ApprovedAt, &o.Note, &o.ActorID, &o.RequestedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}
