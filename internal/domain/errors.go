package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP los mapea a códigos de estado; la capa postgres envuelve los suyos con %w.
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrInvalidState  = errors.New("transición de estado no permitida")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrForbidden     = errors.New("acceso denegado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrStockDrift    = errors.New("el stock cambió desde la toma del conteo")
	ErrConsistency   = errors.New("el stock proyectado no coincide con el libro de movimientos")
	ErrTenantCode    = errors.New("código de sede inválido")
)
