package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoSaldoPendiente estados del excedente sin destino.
type EstadoSaldoPendiente string

const (
	SaldoPendienteActivo   EstadoSaldoPendiente = "pendiente"
	SaldoPendienteAplicado EstadoSaldoPendiente = "aplicado"
)

// Destinos de aplicación de un saldo pendiente.
const (
	DestinoCuota   = "cuota"   // se enruta por el asignador de pagos
	DestinoCapital = "capital" // abono extraordinario a capital
)

// SaldoPendiente es un excedente de pago que aún no tiene destino: sobrante de
// un pago manual, desborde de una fila de planilla o fila sin deudor
// identificado. Se resuelve solo por acción explícita de un operador; una
// aplicación parcial reduce el monto y lo deja pendiente.
type SaldoPendiente struct {
	ID         string
	CreditoID  string // vacío para filas de planilla sin crédito identificado
	PlanillaID string // planilla de origen, si aplica
	PagoID     string // pago de origen, si aplica
	Identidad  string // identidad de la fila de planilla no encontrada
	Monto      decimal.Decimal
	Estado     EstadoSaldoPendiente
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
