package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockbook/internal/application/analytics"
	"github.com/tu-usuario/stockbook/internal/application/dto"
	"github.com/tu-usuario/stockbook/internal/application/projection"
)

// StockHandler expone las lecturas derivadas del libro: serie histórica de stock
// y análisis de consumo.
type StockHandler struct {
	series    *projection.UseCase
	analytics *analytics.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(series *projection.UseCase, an *analytics.UseCase) *StockHandler {
	return &StockHandler{series: series, analytics: an}
}

// StockSeries godoc
// @Summary      Serie de stock al cierre de cada día del rango
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true  "ID del producto"
// @Param        from  query  string  true  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  true  "Hasta (YYYY-MM-DD)"
// @Success      200  {array}  dto.StockPointDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock-series [get]
func (h *StockHandler) StockSeries(c *fiber.Ctx) error {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser YYYY-MM-DD"})
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser YYYY-MM-DD"})
	}
	points, err := h.series.StockSeries(c.UserContext(), GetTenantCode(c), c.Params("id"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, dto.StockPointDTO{Date: p.Date.Format("2006-01-02"), Stock: p.Stock})
	}
	return c.JSON(out)
}

// Analysis godoc
// @Summary      Análisis de consumo de los últimos 30 días
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.AnalysisDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/analysis [get]
func (h *StockHandler) Analysis(c *fiber.Ctx) error {
	out, err := h.analytics.Analyze(c.UserContext(), GetTenantCode(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
