package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockbook/internal/application/analytics"
	"github.com/tu-usuario/stockbook/internal/application/counts"
	"github.com/tu-usuario/stockbook/internal/application/ledger"
	"github.com/tu-usuario/stockbook/internal/application/orders"
	"github.com/tu-usuario/stockbook/internal/application/products"
	"github.com/tu-usuario/stockbook/internal/application/projection"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *products.UseCase
	LedgerUC    *ledger.UseCase
	SeriesUC    *projection.UseCase
	AnalyticsUC *analytics.UseCase
	OrderUC     *orders.UseCase
	CountUC     *counts.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Toda la API exige Bearer Token; el
// tenant_code del token decide la sede sobre la que opera cada petición.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole(entity.RoleAdmin)

	// Productos
	productos := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	productos.Post("/", productHandler.Create)
	productos.Get("/", productHandler.List)
	productos.Get("/:id", productHandler.GetByID)
	productos.Put("/:id", productHandler.Update)
	productos.Delete("/:id", admin, productHandler.Delete)

	// Lecturas derivadas del libro
	stockHandler := NewStockHandler(deps.SeriesUC, deps.AnalyticsUC)
	productos.Get("/:id/stock-series", stockHandler.StockSeries)
	productos.Get("/:id/analysis", stockHandler.Analysis)

	// Libro de movimientos
	libro := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	libro.Post("/movements", ledgerHandler.Record)
	libro.Post("/movements/batch", ledgerHandler.RecordBatch)
	libro.Put("/movements/:id", admin, ledgerHandler.Correct)
	libro.Get("/history", ledgerHandler.History)

	// Solicitudes de pedido
	pedidos := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	pedidos.Post("/", orderHandler.Create)
	pedidos.Get("/", orderHandler.List)
	pedidos.Post("/:id/approve", admin, orderHandler.Approve)
	pedidos.Post("/:id/reject", admin, orderHandler.Reject)
	pedidos.Post("/:id/cancel", orderHandler.Cancel)
	pedidos.Put("/:id", admin, orderHandler.Edit)
	pedidos.Post("/:id/receive", admin, orderHandler.Receive)

	// Tomas físicas
	tomas := api.Group("/counts")
	countHandler := NewCountHandler(deps.CountUC)
	tomas.Post("/", countHandler.Create)
	tomas.Get("/", countHandler.List)
	tomas.Get("/:id", countHandler.Get)
	tomas.Put("/:id/items/:productId", countHandler.RecordItem)
	tomas.Put("/:id/items/:productId/reason", countHandler.SetReason)
	tomas.Post("/:id/complete", countHandler.Complete)
	tomas.Post("/:id/approve", admin, countHandler.Approve)
	tomas.Delete("/:id", countHandler.Delete)
	tomas.Get("/:id/report", countHandler.Report)
}
