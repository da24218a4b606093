package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorStatus traduce los errores de dominio a estado HTTP y código de la respuesta.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvariantViolation):
		return fiber.StatusInternalServerError, "INVARIANT"
	case errors.Is(err, domain.ErrStorage):
		return fiber.StatusServiceUnavailable, "STORAGE"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// writeError responde con dto.ErrorResponse. Los errores de almacenamiento e internos no exponen el detalle del driver.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	switch code {
	case "STORAGE":
		msg = domain.ErrStorage.Error()
	case "INTERNAL":
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func parsePage(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Page: c.QueryInt("page", 1), Size: c.QueryInt("size", dto.DefaultPageSize)}
}
