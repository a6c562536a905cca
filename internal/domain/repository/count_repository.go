package repository

import (
	"time"

	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// CountRepository define el puerto de persistencia del flujo de conteo físico.
type CountRepository interface {
	CreateCount(count *entity.StockCount) error
	CreateItem(item *entity.CountItem) error
	GetCount(id string) (*entity.StockCount, error)
	// GetByDate devuelve el conteo de esa fecha de negocio, si existe.
	GetByDate(date time.Time) (*entity.StockCount, error)
	UpdateCount(count *entity.StockCount) error
	GetItem(countID, productID string) (*entity.CountItem, error)
	UpdateItem(item *entity.CountItem) error
	// ListItems devuelve las líneas del conteo ordenadas por ProductID.
	ListItems(countID string) ([]*entity.CountItem, error)
	ListCounts(limit, offset int) ([]*entity.StockCount, error)
	// PendingItems cuenta las líneas sin ActualQuantity registrada.
	PendingItems(countID string) (int64, error)
	// DeleteCount elimina el conteo y sus líneas.
	DeleteCount(id string) error
}
