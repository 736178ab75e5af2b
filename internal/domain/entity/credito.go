package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/domain"
)

// EstadoCredito es la enumeración cerrada de estados de un crédito.
type EstadoCredito string

const (
	CreditoFormalizado EstadoCredito = "Formalizado" // desembolsado, plan vigente
	CreditoEnMora      EstadoCredito = "En Mora"     // al menos una cuota en mora
	CreditoCancelado   EstadoCredito = "Cancelado"   // saldado en su totalidad
)

// transicionesCredito tabla explícita de transiciones permitidas.
// Cualquier movimiento fuera de la tabla se rechaza.
var transicionesCredito = map[EstadoCredito][]EstadoCredito{
	CreditoFormalizado: {CreditoEnMora, CreditoCancelado},
	CreditoEnMora:      {CreditoFormalizado, CreditoCancelado},
	CreditoCancelado:   {},
}

// Credito representa un préstamo formalizado.
// SaldoActual es el capital vivo; lo muta cada evento de pago bajo la
// transacción serializada por crédito.
type Credito struct {
	ID          string
	ClienteID   string          // deudor (gestión de identidad es un colaborador externo)
	Cedula      string          // identidad usada por la conciliación de planillas
	Monto       decimal.Decimal // principal original
	TasaAnual   decimal.Decimal // % anual contractual
	PlazoMeses  int
	Poliza      decimal.Decimal // cargo de póliza por cuota (puede ser cero)
	Estado      EstadoCredito
	SaldoActual decimal.Decimal
	FechaInicio time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Transicionar mueve el crédito a un nuevo estado validando la tabla.
// La transición a un estado igual al actual es un no-op válido.
func (c *Credito) Transicionar(to EstadoCredito) error {
	if c.Estado == to {
		return nil
	}
	for _, permitido := range transicionesCredito[c.Estado] {
		if permitido == to {
			c.Estado = to
			return nil
		}
	}
	return domain.ErrTransicionInvalida
}

// TasaMensual devuelve la tasa mensual i = r/12/100 (sin redondear; el
// redondeo monetario ocurre al aplicarla sobre un saldo).
func (c *Credito) TasaMensual() decimal.Decimal {
	return c.TasaAnual.Div(decimal.NewFromInt(1200))
}
