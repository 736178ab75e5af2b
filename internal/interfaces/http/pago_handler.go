package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/dto"
	"github.com/leogomez74/credicore/internal/application/pago"
)

// PagoHandler maneja el registro de pagos manuales.
type PagoHandler struct {
	asignador *pago.Asignador
}

// NewPagoHandler construye el handler.
func NewPagoHandler(asignador *pago.Asignador) *PagoHandler {
	return &PagoHandler{asignador: asignador}
}

// Crear registra un pago manual contra un crédito. La asignación a cuotas
// sigue el orden de prelación de rubros; el excedente queda como saldo
// pendiente hasta que un operador lo resuelva.
func (h *PagoHandler) Crear(c *fiber.Ctx) error {
	var in dto.CrearPagoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if !in.Monto.GreaterThan(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "monto debe ser mayor que cero"})
	}
	fecha, err := dto.ParseFecha(in.Fecha, time.Now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato yyyy-mm-dd"})
	}

	res, err := h.asignador.Pagar(c.Context(), pago.AsignarInput{
		CreditoID:      in.CreditoID,
		Monto:          in.Monto,
		Fecha:          fecha,
		CuotasObjetivo: in.Cuotas,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DesdeAsignacion(res))
}
