package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) dentro de una tx.
	// Serializa las actualizaciones de CurrentStock por producto.
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateStock fija la proyección CurrentStock. Solo debe llamarse desde el
	// camino transaccional del libro.
	UpdateStock(id string, stock decimal.Decimal, at time.Time) error
	List(limit, offset int) ([]*entity.Product, error)
	// ListAll devuelve todos los productos de la sede (snapshot de conteos).
	ListAll() ([]*entity.Product, error)
	Delete(id string) error
}
