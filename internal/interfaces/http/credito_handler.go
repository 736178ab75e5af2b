package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/credito"
	"github.com/leogomez74/credicore/internal/application/dto"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

// CreditoHandler maneja las peticiones HTTP sobre un crédito: plan de pagos,
// historial, abonos extraordinarios y cancelación anticipada.
type CreditoHandler struct {
	planificador *credito.Planificador
	extra        *credito.Extraordinario
	cancelador   *credito.Cancelador
	pagos        repository.PagoRepository
}

// NewCreditoHandler construye el handler.
func NewCreditoHandler(
	planificador *credito.Planificador,
	extra *credito.Extraordinario,
	cancelador *credito.Cancelador,
	pagos repository.PagoRepository,
) *CreditoHandler {
	return &CreditoHandler{planificador: planificador, extra: extra, cancelador: cancelador, pagos: pagos}
}

// GenerarPlan genera el plan de pagos del crédito. La operación es idempotente:
// si el plan ya existe se devuelve tal cual con generado=false.
func (h *CreditoHandler) GenerarPlan(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	cuotas, generado, err := h.planificador.Generar(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if generado {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.PlanResponse{CreditoID: id, Generado: generado, Cuotas: dto.DesdeCuotas(cuotas)})
}

// Plan devuelve el plan de pagos vigente.
func (h *CreditoHandler) Plan(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	cuotas, err := h.planificador.Plan(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PlanResponse{CreditoID: id, Cuotas: dto.DesdeCuotas(cuotas)})
}

// Pagos devuelve el historial de pagos del crédito con su desglose.
func (h *CreditoHandler) Pagos(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	pagos, err := h.pagos.ListByCredito(id)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PagoResponse, 0, len(pagos))
	for _, p := range pagos {
		out = append(out, dto.DesdePago(p))
	}
	return c.JSON(out)
}

// Extraordinario aplica un abono extraordinario a capital y reescribe la cola
// del plan según la estrategia elegida.
func (h *CreditoHandler) Extraordinario(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AbonoExtraordinarioRequest
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

	res, err := h.extra.Abonar(c.Context(), credito.AbonoInput{
		CreditoID:  id,
		Monto:      in.Monto,
		Fecha:      fecha,
		Estrategia: in.Estrategia,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AbonoExtraordinarioResponse{
		PagoID:        res.Pago.ID,
		NuevoSaldo:    res.NuevoSaldo,
		PlazoAnterior: res.PlazoAnterior,
		CuotasNuevas:  res.CuotasNuevas,
	})
}

// Cotizar calcula la cotización de cancelación anticipada a una fecha. No muta
// estado; el total cotizado es el monto exacto que acepta el commit.
func (h *CreditoHandler) Cotizar(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	fecha, err := dto.ParseFecha(c.Query("fecha"), time.Now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato yyyy-mm-dd"})
	}
	cot, err := h.cancelador.Cotizar(c.Context(), id, fecha)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DesdeCotizacion(cot))
}

// Cancelar confirma la cancelación anticipada del crédito.
func (h *CreditoHandler) Cancelar(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.CancelacionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if !in.Monto.GreaterThan(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "monto debe ser mayor que cero"})
	}
	fecha, err := dto.ParseFecha(in.Fecha, time.Now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato yyyy-mm-dd"})
	}

	cot, res, err := h.cancelador.Cancelar(c.Context(), id, in.Monto, fecha)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CancelacionResponse{
		Cotizacion: dto.DesdeCotizacion(cot),
		PagoID:     res.Pago.ID,
		Cerrado:    res.CreditoCerrado,
	})
}
