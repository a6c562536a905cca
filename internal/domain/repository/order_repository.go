package repository

import "github.com/tu-usuario/stockbook/internal/domain/entity"

// OrderRepository define el puerto de persistencia de solicitudes de pedido.
type OrderRepository interface {
	Create(order *entity.OrderRequest) error
	GetByID(id string) (*entity.OrderRequest, error)
	Update(order *entity.OrderRequest) error
	// List devuelve solicitudes ordenadas por RequestedAt descendente.
	// status vacío = todas.
	List(status entity.OrderStatus, limit, offset int) ([]*entity.OrderRequest, error)
}
