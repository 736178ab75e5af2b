package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/pago"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

// CrearPagoRequest entrada para registrar un pago manual.
type CrearPagoRequest struct {
	CreditoID string          `json:"credito_id" validate:"required"`
	Monto     decimal.Decimal `json:"monto"`
	Fecha     string          `json:"fecha"`  // yyyy-mm-dd; vacío = hoy
	Cuotas    []int           `json:"cuotas"` // números de cuota explícitos; vacío = en orden
}

// PagoDetalleResponse desglose de asignación de un pago sobre una cuota.
type PagoDetalleResponse struct {
	NumeroCuota      int             `json:"numero_cuota"`
	InteresMoratorio decimal.Decimal `json:"interes_moratorio"`
	InteresVencido   decimal.Decimal `json:"interes_vencido"`
	InteresCorriente decimal.Decimal `json:"interes_corriente"`
	Amortizacion     decimal.Decimal `json:"amortizacion"`
	Poliza           decimal.Decimal `json:"poliza"`
	Total            decimal.Decimal `json:"total"`
}

// PagoResponse un pago liquidado con su desglose.
type PagoResponse struct {
	ID         string                `json:"id"`
	CreditoID  string                `json:"credito_id"`
	PlanillaID string                `json:"planilla_id,omitempty"`
	Monto      decimal.Decimal       `json:"monto"`
	Fecha      string                `json:"fecha"`
	Origen     string                `json:"origen"`
	Detalles   []PagoDetalleResponse `json:"detalles"`
	CreatedAt  time.Time             `json:"created_at"`
}

// AsignacionResponse resultado de aplicar un pago.
type AsignacionResponse struct {
	Pago           PagoResponse    `json:"pago"`
	CuotasPagadas  int             `json:"cuotas_pagadas"`
	Excedente      decimal.Decimal `json:"excedente"` // enviado a saldo pendiente
	SaldoID        string          `json:"saldo_pendiente_id,omitempty"`
	CreditoCerrado bool            `json:"credito_cerrado"`
}

// DesdePago mapea un pago de dominio a su respuesta HTTP.
func DesdePago(p *entity.Pago) PagoResponse {
	detalles := make([]PagoDetalleResponse, 0, len(p.Detalles))
	for _, d := range p.Detalles {
		detalles = append(detalles, PagoDetalleResponse{
			NumeroCuota:      d.NumeroCuota,
			InteresMoratorio: d.InteresMoratorio,
			InteresVencido:   d.InteresVencido,
			InteresCorriente: d.InteresCorriente,
			Amortizacion:     d.Amortizacion,
			Poliza:           d.Poliza,
			Total:            d.Total(),
		})
	}
	return PagoResponse{
		ID:         p.ID,
		CreditoID:  p.CreditoID,
		PlanillaID: p.PlanillaID,
		Monto:      p.Monto,
		Fecha:      p.Fecha.Format("2006-01-02"),
		Origen:     p.Origen,
		Detalles:   detalles,
		CreatedAt:  p.CreatedAt,
	}
}

// DesdeAsignacion mapea el resultado del asignador.
func DesdeAsignacion(res *pago.ResultadoAsignacion) AsignacionResponse {
	out := AsignacionResponse{
		Pago:           DesdePago(res.Pago),
		CuotasPagadas:  res.CuotasPagadas,
		Excedente:      decimal.Zero,
		CreditoCerrado: res.CreditoCerrado,
	}
	if res.SaldoPendiente != nil {
		out.Excedente = res.SaldoPendiente.Monto
		out.SaldoID = res.SaldoPendiente.ID
	}
	return out
}
