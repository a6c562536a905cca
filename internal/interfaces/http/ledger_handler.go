package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockbook/internal/application/dto"
	"github.com/tu-usuario/stockbook/internal/application/ledger"
	"github.com/tu-usuario/stockbook/internal/domain/repository"
)

// LedgerHandler maneja el libro de movimientos: registro, lote, corrección e historial.
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

func movementInput(in dto.RecordMovementRequest, actorID string) (ledger.MovementInput, error) {
	mi := ledger.MovementInput{
		ProductID: in.ProductID,
		Kind:      in.Kind,
		Quantity:  in.Quantity,
		Note:      in.Note,
		ActorID:   actorID,
	}
	if in.EffectiveDate != "" {
		d, err := time.Parse("2006-01-02", in.EffectiveDate)
		if err != nil {
			return mi, err
		}
		mi.EffectiveDate = d
	}
	return mi, nil
}

// Record godoc
// @Summary      Registrar un movimiento (in/out/adjust)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.LedgerEntryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mi, err := movementInput(in, GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "effective_date debe ser YYYY-MM-DD"})
	}
	entry, err := h.uc.Record(c.UserContext(), GetTenantCode(c), mi)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLedgerEntry(entry))
}

// RecordBatch godoc
// @Summary      Registrar varios movimientos en una sola transacción
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchMovementRequest  true  "Movimientos"
// @Success      201   {array}  dto.LedgerEntryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements/batch [post]
func (h *LedgerHandler) RecordBatch(c *fiber.Ctx) error {
	var in dto.BatchMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actorID := GetUserID(c)
	ins := make([]ledger.MovementInput, 0, len(in.Movements))
	for _, m := range in.Movements {
		mi, err := movementInput(m, actorID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "effective_date debe ser YYYY-MM-DD"})
		}
		ins = append(ins, mi)
	}
	entries, err := h.uc.RecordBatch(c.UserContext(), GetTenantCode(c), ins)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromLedgerEntry(e))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Correct godoc
// @Summary      Corregir cantidad/nota de un asiento (admin)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del asiento"
// @Param        body  body  dto.CorrectMovementRequest  true  "Corrección"
// @Success      200   {object}  dto.LedgerEntryDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements/{id} [put]
func (h *LedgerHandler) Correct(c *fiber.Ctx) error {
	var in dto.CorrectMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.uc.Correct(c.UserContext(), GetTenantCode(c), c.Params("id"), in.Quantity, in.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromLedgerEntry(entry))
}

// History godoc
// @Summary      Historial de movimientos de la sede
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        from        query  string  false  "Desde (YYYY-MM-DD, por fecha efectiva)"
// @Param        to          query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite (default 100, máx 500)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.LedgerEntryDTO
// @Router       /api/ledger/history [get]
func (h *LedgerHandler) History(c *fiber.Ctx) error {
	filter := repository.LedgerFilter{
		ProductID: c.Query("product_id"),
		Limit:     c.QueryInt("limit"),
		Offset:    c.QueryInt("offset"),
	}
	if v := c.Query("from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser YYYY-MM-DD"})
		}
		filter.From = &d
	}
	if v := c.Query("to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser YYYY-MM-DD"})
		}
		filter.To = &d
	}
	entries, err := h.uc.History(c.UserContext(), GetTenantCode(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromLedgerEntry(e))
	}
	return c.JSON(out)
}
