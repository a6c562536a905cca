package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario de una sede.
// CurrentStock es una proyección cacheada: debe igualar siempre la suma firmada
// de sus movimientos en el libro. Solo el camino transaccional del libro la actualiza.
type Product struct {
	ID           string
	Name         string
	Category     string
	ReorderPoint decimal.Decimal // punto de reorden configurado por el operador
	CurrentStock decimal.Decimal // proyección derivada del libro, no fuente de verdad
	ImageRef     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
