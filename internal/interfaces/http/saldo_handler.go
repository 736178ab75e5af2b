package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/leogomez74/credicore/internal/application/dto"
	"github.com/leogomez74/credicore/internal/application/saldo"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

// SaldoHandler maneja la cola de saldos pendientes y su resolución explícita.
type SaldoHandler struct {
	resolver *saldo.Resolver
	saldos   repository.SaldoPendienteRepository
}

// NewSaldoHandler construye el handler.
func NewSaldoHandler(resolver *saldo.Resolver, saldos repository.SaldoPendienteRepository) *SaldoHandler {
	return &SaldoHandler{resolver: resolver, saldos: saldos}
}

// Listar devuelve los saldos pendientes activos, opcionalmente filtrados por
// crédito.
func (h *SaldoHandler) Listar(c *fiber.Ctx) error {
	saldos, err := h.saldos.ListActivos(c.Query("credito_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DesdeSaldos(saldos))
}

// Aplicar resuelve un saldo pendiente hacia cuotas o hacia capital, total o
// parcialmente, por decisión explícita del operador.
func (h *SaldoHandler) Aplicar(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AplicarSaldoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	fecha, err := dto.ParseFecha(in.Fecha, time.Now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato yyyy-mm-dd"})
	}

	res, err := h.resolver.Aplicar(c.Context(), saldo.AplicarInput{
		SaldoID:    id,
		Destino:    in.Destino,
		CreditoID:  in.CreditoID,
		Monto:      in.Monto,
		Estrategia: in.Estrategia,
		Fecha:      fecha,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DesdeAplicacion(res))
}
