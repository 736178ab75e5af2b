package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/credito"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

// CuotaResponse una fila del plan de pagos tal como se sirve por la API.
// Los rubros son los montos pendientes de cada cuota, en orden de prelación.
type CuotaResponse struct {
	ID               string          `json:"id"`
	Numero           int             `json:"numero"`
	FechaVencimiento string          `json:"fecha_vencimiento"` // yyyy-mm-dd
	SaldoInicial     decimal.Decimal `json:"saldo_inicial"`
	InteresMoratorio decimal.Decimal `json:"interes_moratorio"`
	InteresVencido   decimal.Decimal `json:"interes_vencido"`
	InteresCorriente decimal.Decimal `json:"interes_corriente"`
	Amortizacion     decimal.Decimal `json:"amortizacion"`
	Poliza           decimal.Decimal `json:"poliza"`
	CuotaTotal       decimal.Decimal `json:"cuota_total"`
	SaldoFinal       decimal.Decimal `json:"saldo_final"`
	Estado           string          `json:"estado"`
	DiasAtraso       int             `json:"dias_atraso,omitempty"`
	MontoPagado      decimal.Decimal `json:"monto_pagado"`
}

// PlanResponse plan de pagos completo de un crédito.
type PlanResponse struct {
	CreditoID string          `json:"credito_id"`
	Generado  bool            `json:"generado"` // false si el plan ya existía
	Cuotas    []CuotaResponse `json:"cuotas"`
}

// AbonoExtraordinarioRequest entrada para un abono extraordinario a capital.
type AbonoExtraordinarioRequest struct {
	Monto      decimal.Decimal `json:"monto"`
	Fecha      string          `json:"fecha"` // yyyy-mm-dd; vacío = hoy
	Estrategia string          `json:"estrategia" validate:"required,oneof=reduce_amount reduce_term"`
}

// AbonoExtraordinarioResponse resultado del abono. CuotasNuevas es el número
// de cuotas del plan reescrito; el plan completo se consulta por GET /plan.
type AbonoExtraordinarioResponse struct {
	PagoID        string          `json:"pago_id"`
	NuevoSaldo    decimal.Decimal `json:"nuevo_saldo"`
	PlazoAnterior int             `json:"plazo_anterior"`
	CuotasNuevas  int             `json:"cuotas_nuevas"`
}

// CotizacionResponse cotización de cancelación anticipada.
type CotizacionResponse struct {
	CreditoID          string          `json:"credito_id"`
	Fecha              string          `json:"fecha"`
	Capital            decimal.Decimal `json:"capital"`
	InteresProrrata    decimal.Decimal `json:"interes_prorrata"`
	Atrasos            decimal.Decimal `json:"atrasos"`
	Penalizacion       decimal.Decimal `json:"penalizacion"`
	AplicaPenalizacion bool            `json:"aplica_penalizacion"`
	Total              decimal.Decimal `json:"total"`
}

// CancelacionRequest entrada para confirmar una cancelación anticipada.
// El monto debe calzar exactamente con el total cotizado a la fecha.
type CancelacionRequest struct {
	Monto decimal.Decimal `json:"monto"`
	Fecha string          `json:"fecha"` // yyyy-mm-dd; vacío = hoy
}

// CancelacionResponse resultado de la cancelación confirmada.
type CancelacionResponse struct {
	Cotizacion CotizacionResponse `json:"cotizacion"`
	PagoID     string             `json:"pago_id"`
	Cerrado    bool               `json:"cerrado"`
}

// DesdeCuota mapea una cuota de dominio a su respuesta HTTP.
func DesdeCuota(q *entity.Cuota) CuotaResponse {
	return CuotaResponse{
		ID:               q.ID,
		Numero:           q.Numero,
		FechaVencimiento: q.FechaVencimiento.Format("2006-01-02"),
		SaldoInicial:     q.SaldoInicial,
		InteresMoratorio: q.InteresMoratorio,
		InteresVencido:   q.InteresVencido,
		InteresCorriente: q.InteresCorriente,
		Amortizacion:     q.Amortizacion,
		Poliza:           q.Poliza,
		CuotaTotal:       q.CuotaTotal,
		SaldoFinal:       q.SaldoFinal,
		Estado:           string(q.Estado),
		DiasAtraso:       q.DiasAtraso,
		MontoPagado:      q.MontoPagado,
	}
}

// DesdeCuotas mapea el plan completo.
func DesdeCuotas(cuotas []*entity.Cuota) []CuotaResponse {
	out := make([]CuotaResponse, 0, len(cuotas))
	for _, q := range cuotas {
		out = append(out, DesdeCuota(q))
	}
	return out
}

// DesdeCotizacion mapea la cotización de cancelación.
func DesdeCotizacion(c *credito.Cotizacion) CotizacionResponse {
	return CotizacionResponse{
		CreditoID:          c.CreditoID,
		Fecha:              c.Fecha.Format("2006-01-02"),
		Capital:            c.Capital,
		InteresProrrata:    c.InteresProrrata,
		Atrasos:            c.Atrasos,
		Penalizacion:       c.Penalizacion,
		AplicaPenalizacion: c.AplicaPenalizacion,
		Total:              c.Total,
	}
}

// ParseFecha interpreta una fecha yyyy-mm-dd de la API; vacía devuelve ahora.
func ParseFecha(s string, ahora time.Time) (time.Time, error) {
	if s == "" {
		return ahora, nil
	}
	return time.Parse("2006-01-02", s)
}
