package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockbook/internal/application/counts"
	"github.com/tu-usuario/stockbook/internal/application/dto"
)

// CountHandler maneja el flujo de tomas físicas de inventario.
type CountHandler struct {
	uc *counts.UseCase
}

// NewCountHandler construye el handler.
func NewCountHandler(uc *counts.UseCase) *CountHandler {
	return &CountHandler{uc: uc}
}

// countResponse es el cuerpo de respuesta de una toma con sus líneas.
type countResponse struct {
	Count dto.CountDTO       `json:"count"`
	Items []dto.CountItemDTO `json:"items"`
}

// Create godoc
// @Summary      Abrir una toma física (congela el stock de sistema de todos los productos)
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCountRequest  true  "Fecha de la toma"
// @Success      201   {object}  dto.CountDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/counts [post]
func (h *CountHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	countDate, err := time.Parse("2006-01-02", in.CountDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "count_date debe ser YYYY-MM-DD"})
	}
	out, err := h.uc.Create(c.UserContext(), GetTenantCode(c), GetActor(c), countDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCount(out))
}

// RecordItem godoc
// @Summary      Registrar la cantidad contada de un producto
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id         path  string                      true  "ID de la toma"
// @Param        productId  path  string                      true  "ID del producto"
// @Param        body       body  dto.RecordCountItemRequest  true  "Cantidad real"
// @Success      200   {object}  dto.CountItemDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/items/{productId} [put]
func (h *CountHandler) RecordItem(c *fiber.Ctx) error {
	var in dto.RecordCountItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.RecordItem(c.UserContext(), GetTenantCode(c), c.Params("id"), c.Params("productId"), in.ActualQuantity, in.Reason, in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCountItem(item))
}

// SetReason godoc
// @Summary      Anotar motivo/nota de la diferencia de una línea
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id         path  string                true  "ID de la toma"
// @Param        productId  path  string                true  "ID del producto"
// @Param        body       body  dto.SetReasonRequest  true  "Motivo"
// @Success      200   {object}  dto.CountItemDTO
// @Router       /api/counts/{id}/items/{productId}/reason [put]
func (h *CountHandler) SetReason(c *fiber.Ctx) error {
	var in dto.SetReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.SetReason(c.UserContext(), GetTenantCode(c), c.Params("id"), c.Params("productId"), in.Reason, in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCountItem(item))
}

// Complete godoc
// @Summary      Cerrar el conteo (requiere todas las líneas contadas)
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la toma"
// @Success      200  {object}  dto.CountDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/complete [post]
func (h *CountHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetTenantCode(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCount(out))
}

// Approve godoc
// @Summary      Aprobar la toma y asentar los ajustes (admin)
// @Description  Crea un asiento adjust por cada diferencia no nula, todo o nada.
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la toma"
// @Success      200  {object}  dto.CountDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/approve [post]
func (h *CountHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.UserContext(), GetTenantCode(c), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCount(out))
}

// Delete godoc
// @Summary      Descartar una toma en curso
// @Tags         counts
// @Security     Bearer
// @Param        id  path  string  true  "ID de la toma"
// @Success      204  "Eliminada"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/{id} [delete]
func (h *CountHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantCode(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get godoc
// @Summary      Obtener una toma con sus líneas
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la toma"
// @Success      200  {object}  countResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/counts/{id} [get]
func (h *CountHandler) Get(c *fiber.Ctx) error {
	count, items, err := h.uc.Get(c.UserContext(), GetTenantCode(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := countResponse{Count: dto.FromCount(count), Items: make([]dto.CountItemDTO, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, dto.FromCountItem(it))
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar tomas físicas
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.CountDTO
// @Router       /api/counts [get]
func (h *CountHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.List(c.UserContext(), GetTenantCode(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CountDTO, 0, len(list))
	for _, cnt := range list {
		out = append(out, dto.FromCount(cnt))
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte agregado de una toma (solo lectura)
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la toma"
// @Success      200  {object}  dto.CountReportDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/counts/{id}/report [get]
func (h *CountHandler) Report(c *fiber.Ctx) error {
	report, err := h.uc.Report(c.UserContext(), GetTenantCode(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCountReport(*report))
}
