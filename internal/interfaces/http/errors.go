package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/leogomez74/credicore/internal/application/dto"
	"github.com/leogomez74/credicore/internal/domain"
)

// respondError traduce los errores centinela del dominio a respuestas HTTP.
// Los errores no mapeados se responden como 500 sin filtrar el detalle.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMotivoRequerido):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrTokenPreview):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TOKEN_PREVIEW", Message: err.Error()})
	case errors.Is(err, domain.ErrPlanillaAnulada),
		errors.Is(err, domain.ErrSaldoYaAplicado),
		errors.Is(err, domain.ErrCreditoNoFormalizado),
		errors.Is(err, domain.ErrTransicionInvalida),
		errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrMontoExcedeSaldo):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "MONTO_EXCEDE_SALDO", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
