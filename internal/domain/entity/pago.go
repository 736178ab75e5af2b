package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origen de un pago.
const (
	PagoManual   = "manual"
	PagoPlanilla = "planilla"
	PagoTransfer = "transferencia"
)

// Pago es un movimiento de dinero liquidado contra un crédito. Es inmutable
// después de crearse; la única reversa permitida es el borrado compensatorio
// dentro de la anulación transaccional de una planilla.
type Pago struct {
	ID         string
	CreditoID  string
	PlanillaID string // vacío si el pago no vino de una planilla
	Monto      decimal.Decimal
	Fecha      time.Time
	Origen     string // manual | planilla | transferencia
	Detalles   []PagoDetalle
	CreatedAt  time.Time
}

// PagoDetalle es el desglose de asignación de un pago sobre una cuota.
// La suma de los rubros de todos los detalles (más el excedente enviado a
// saldo pendiente) es exactamente el monto del pago, y es la operación inversa
// exacta que usa la anulación de planillas.
type PagoDetalle struct {
	ID               string
	PagoID           string
	CuotaID          string
	NumeroCuota      int
	InteresMoratorio decimal.Decimal
	InteresVencido   decimal.Decimal
	InteresCorriente decimal.Decimal
	Amortizacion     decimal.Decimal
	Poliza           decimal.Decimal
}

// Total devuelve lo asignado a la cuota por este detalle.
func (d PagoDetalle) Total() decimal.Decimal {
	return d.InteresMoratorio.
		Add(d.InteresVencido).
		Add(d.InteresCorriente).
		Add(d.Amortizacion).
		Add(d.Poliza)
}

// TotalAsignado suma todos los detalles del pago.
func (p *Pago) TotalAsignado() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Detalles {
		total = total.Add(d.Total())
	}
	return total
}
