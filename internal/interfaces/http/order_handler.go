package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockbook/internal/application/dto"
	"github.com/tu-usuario/stockbook/internal/application/orders"
	"github.com/tu-usuario/stockbook/internal/domain/entity"
)

// OrderHandler maneja el ciclo de vida de las solicitudes de pedido.
type OrderHandler struct {
	uc *orders.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Solicitud"
// @Success      201   {object}  dto.OrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), GetTenantCode(c), GetActor(c), in.ProductID, in.RequestedQuantity, in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(out))
}

// Approve godoc
// @Summary      Aprobar solicitud (admin)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la solicitud"
// @Param        body  body  dto.ApproveOrderRequest  true  "Cantidad aprobada"
// @Success      200   {object}  dto.OrderDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Approve(c.UserContext(), GetTenantCode(c), GetActor(c), c.Params("id"), in.ApprovedQuantity, in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(out))
}

// Reject godoc
// @Summary      Rechazar solicitud (admin)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la solicitud"
// @Param        body  body  dto.RejectOrderRequest  false  "Motivo"
// @Success      200   {object}  dto.OrderDTO
// @Router       /api/orders/{id}/reject [post]
func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectOrderRequest
	_ = c.BodyParser(&in)
	out, err := h.uc.Reject(c.UserContext(), GetTenantCode(c), GetActor(c), c.Params("id"), in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(out))
}

// Cancel godoc
// @Summary      Cancelar solicitud (solicitante o admin)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.OrderDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetTenantCode(c), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(out))
}

// Edit godoc
// @Summary      Editar cantidad de una solicitud (admin)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la solicitud"
// @Param        body  body  dto.EditOrderRequest  true  "Nueva cantidad"
// @Success      200   {object}  dto.OrderDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Edit(c *fiber.Ctx) error {
	var in dto.EditOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Edit(c.UserContext(), GetTenantCode(c), GetActor(c), c.Params("id"), in.Quantity, in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(out))
}

// Receive godoc
// @Summary      Recibir mercancía de una solicitud aprobada (admin)
// @Description  Asienta una entrada en el libro y pasa la solicitud a fulfilled.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "ID de la solicitud"
// @Param        body  body  dto.ReceiveOrderRequest  false  "Cantidad recibida (default: aprobada)"
// @Success      200   {object}  dto.OrderDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receive [post]
func (h *OrderHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveOrderRequest
	_ = c.BodyParser(&in)
	out, err := h.uc.Receive(c.UserContext(), GetTenantCode(c), GetActor(c), c.Params("id"), in.Quantity, in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(out))
}

// List godoc
// @Summary      Listar solicitudes de pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.OrderDTO
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	status := entity.OrderStatus(c.Query("status"))
	if status != "" && !entity.ValidOrderStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido"})
	}
	list, err := h.uc.List(c.UserContext(), GetTenantCode(c), status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.OrderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, dto.FromOrder(o))
	}
	return c.JSON(out)
}
