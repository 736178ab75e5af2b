package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/saldo"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

// SaldoPendienteResponse un excedente sin destino.
type SaldoPendienteResponse struct {
	ID         string          `json:"id"`
	CreditoID  string          `json:"credito_id,omitempty"`
	PlanillaID string          `json:"planilla_id,omitempty"`
	PagoID     string          `json:"pago_id,omitempty"`
	Identidad  string          `json:"identidad,omitempty"`
	Monto      decimal.Decimal `json:"monto"`
	Estado     string          `json:"estado"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AplicarSaldoRequest entrada para resolver un saldo pendiente.
type AplicarSaldoRequest struct {
	Destino    string          `json:"destino" validate:"required,oneof=cuota capital"`
	CreditoID  string          `json:"credito_id"` // requerido si el saldo no trae crédito
	Monto      decimal.Decimal `json:"monto"`      // cero = aplicar todo
	Estrategia string          `json:"estrategia" validate:"omitempty,oneof=reduce_amount reduce_term"`
	Fecha      string          `json:"fecha"` // yyyy-mm-dd; vacío = hoy
}

// AplicarSaldoResponse resultado de la aplicación.
type AplicarSaldoResponse struct {
	Saldo     SaldoPendienteResponse `json:"saldo"`
	PagoID    string                 `json:"pago_id,omitempty"`
	Restante  decimal.Decimal        `json:"restante"`
	Consumido bool                   `json:"consumido"`
}

// DesdeSaldo mapea un saldo pendiente a su respuesta HTTP.
func DesdeSaldo(sp *entity.SaldoPendiente) SaldoPendienteResponse {
	return SaldoPendienteResponse{
		ID:         sp.ID,
		CreditoID:  sp.CreditoID,
		PlanillaID: sp.PlanillaID,
		PagoID:     sp.PagoID,
		Identidad:  sp.Identidad,
		Monto:      sp.Monto,
		Estado:     string(sp.Estado),
		CreatedAt:  sp.CreatedAt,
	}
}

// DesdeSaldos mapea una lista de saldos pendientes.
func DesdeSaldos(saldos []*entity.SaldoPendiente) []SaldoPendienteResponse {
	out := make([]SaldoPendienteResponse, 0, len(saldos))
	for _, sp := range saldos {
		out = append(out, DesdeSaldo(sp))
	}
	return out
}

// DesdeAplicacion mapea el resultado del resolver.
func DesdeAplicacion(res *saldo.ResultadoAplicacion) AplicarSaldoResponse {
	return AplicarSaldoResponse{
		Saldo:     DesdeSaldo(res.Saldo),
		PagoID:    res.PagoID,
		Restante:  res.Restante,
		Consumido: res.Consumido,
	}
}
