package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/money"
)

// EstadoCuota es la enumeración cerrada de estados de una cuota.
type EstadoCuota string

const (
	CuotaPendiente EstadoCuota = "Pendiente"
	CuotaParcial   EstadoCuota = "Parcial"
	CuotaPagado    EstadoCuota = "Pagado"
	CuotaMora      EstadoCuota = "Mora"
)

var transicionesCuota = map[EstadoCuota][]EstadoCuota{
	CuotaPendiente: {CuotaParcial, CuotaPagado, CuotaMora},
	CuotaParcial:   {CuotaPagado, CuotaMora},
	CuotaMora:      {CuotaParcial, CuotaPagado},
	CuotaPagado:    {},
}

// Cuota es una fila del plan de pagos de un crédito.
//
// Los componentes (InteresMoratorio, InteresVencido, InteresCorriente,
// Amortizacion, Poliza) guardan el monto PENDIENTE de cada rubro, en el mismo
// orden de prelación en que los consume el asignador de pagos. CuotaTotal
// conserva la cuota fija programada y no cambia con los pagos. La cuota número
// 0 es la fila de inicialización (saldo previo al desembolso) y se excluye de
// los conteos de cuotas activas.
type Cuota struct {
	ID               string
	CreditoID        string
	Numero           int // 0 = fila de inicialización, 1..N cuotas reales
	FechaVencimiento time.Time
	SaldoInicial     decimal.Decimal
	InteresMoratorio decimal.Decimal // pendiente, acumulado por el barrido de mora
	InteresVencido   decimal.Decimal // interés corriente que pasó a vencido
	InteresCorriente decimal.Decimal // pendiente del período
	Amortizacion     decimal.Decimal // capital pendiente de la cuota
	Poliza           decimal.Decimal // cargo de póliza pendiente
	CuotaTotal       decimal.Decimal // cuota fija programada (no muta)
	SaldoFinal       decimal.Decimal
	Estado           EstadoCuota
	DiasAtraso       int
	FechaUltimaMora  *time.Time // última fecha con mora acumulada (idempotencia del barrido)
	MontoPagado      decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Transicionar mueve la cuota a un nuevo estado validando la tabla.
func (q *Cuota) Transicionar(to EstadoCuota) error {
	if q.Estado == to {
		return nil
	}
	for _, permitido := range transicionesCuota[q.Estado] {
		if permitido == to {
			q.Estado = to
			return nil
		}
	}
	return domain.ErrTransicionInvalida
}

// SaldoPendiente devuelve cuánto falta por pagar de la cuota (todos los rubros).
func (q *Cuota) SaldoPendiente() decimal.Decimal {
	return q.InteresMoratorio.
		Add(q.InteresVencido).
		Add(q.InteresCorriente).
		Add(q.Amortizacion).
		Add(q.Poliza)
}

// Resuelta indica si la cuota ya no admite asignaciones.
func (q *Cuota) Resuelta() bool {
	return q.Estado == CuotaPagado || q.SaldoPendiente().IsZero()
}

// Vencida indica si la cuota está vencida a la fecha dada.
func (q *Cuota) Vencida(fecha time.Time) bool {
	return q.Numero > 0 && q.Estado != CuotaPagado && q.FechaVencimiento.Before(fecha)
}

// Clonar devuelve una copia superficial (snapshot para anulaciones).
func (q *Cuota) Clonar() *Cuota {
	copia := *q
	if q.FechaUltimaMora != nil {
		f := *q.FechaUltimaMora
		copia.FechaUltimaMora = &f
	}
	return &copia
}

// NormalizarEstado recalcula el estado según lo pendiente y lo pagado.
// No degrada una cuota en mora a Parcial mientras siga vencida.
func (q *Cuota) NormalizarEstado() {
	switch {
	case q.SaldoPendiente().IsZero():
		q.Estado = CuotaPagado
	case q.Estado == CuotaMora:
		// sigue en mora hasta quedar pagada
	case money.Round(q.MontoPagado).GreaterThan(decimal.Zero):
		q.Estado = CuotaParcial
	default:
		q.Estado = CuotaPendiente
	}
}
