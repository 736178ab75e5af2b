package pago

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/money"
	"github.com/leogomez74/credicore/pkg/logger"
)

// AsignarInput entrada del asignador de pagos.
type AsignarInput struct {
	CreditoID      string
	Monto          decimal.Decimal
	Fecha          time.Time
	Origen         string // manual | planilla | transferencia
	PlanillaID     string // solo para pagos de planilla
	CuotasObjetivo []int  // números de cuota explícitos; vacío = en orden
}

// ResultadoAsignacion salida del asignador.
type ResultadoAsignacion struct {
	Pago           *entity.Pago
	SaldoPendiente *entity.SaldoPendiente // nil si no hubo excedente
	CuotasPagadas  int
	CreditoCerrado bool
}

// Asignador es el caso de uso de pagos manuales. El núcleo (AsignarEnTx) lo
// comparten el commit de planillas, la cancelación anticipada y la aplicación
// de saldos pendientes: toda asignación de dinero a cuotas pasa por el mismo
// código.
type Asignador struct {
	tx  ports.TxRunner
	enc *contabilidad.Encolador
	log *logger.Logger
}

// NewAsignador construye el caso de uso.
func NewAsignador(tx ports.TxRunner, enc *contabilidad.Encolador, log *logger.Logger) *Asignador {
	return &Asignador{tx: tx, enc: enc, log: log}
}

// Pagar aplica un pago manual: asignación sobre cuotas, registro del pago,
// actualización del saldo del crédito y encolado del despacho contable, todo
// en una sola transacción.
func (a *Asignador) Pagar(ctx context.Context, in AsignarInput) (*ResultadoAsignacion, error) {
	if !in.Monto.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Origen == "" {
		in.Origen = entity.PagoManual
	}

	var res *ResultadoAsignacion
	err := a.tx.Run(ctx, func(r ports.Repos) error {
		credito, err := r.Creditos.GetForUpdate(in.CreditoID)
		if err != nil {
			return err
		}
		if credito == nil {
			return domain.ErrNotFound
		}
		res, err = AsignarEnTx(r, credito, in)
		if err != nil {
			return err
		}
		_, err = a.enc.EncolarEnTx(r, entity.EventoPago, res.Pago.ID, credito.ID,
			in.Monto, detalleContable(res.Pago), in.Fecha)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.log.Info().
		Str("credito", in.CreditoID).
		Str("pago", res.Pago.ID).
		Str("monto", in.Monto.StringFixed(2)).
		Int("cuotas_pagadas", res.CuotasPagadas).
		Bool("cerrado", res.CreditoCerrado).
		Msg("pago aplicado")
	return res, nil
}

// AsignarEnTx distribuye un monto sobre las cuotas no resueltas del crédito,
// usando los repositorios de la transacción del caller.
//
// Prelación por cuota, estricta hasta agotar el monto: interés moratorio,
// interés corriente vencido, interés corriente del período, amortización de
// capital, póliza. Si el monto cubre la cuota completa pasa a Pagado y el
// remanente cae en cascada a la siguiente no resuelta; si la cubre parcial
// queda en Parcial. El excedente sobre todas las cuotas no resueltas se
// registra como SaldoPendiente, nunca se descarta ni se aplica a otro crédito.
func AsignarEnTx(r ports.Repos, credito *entity.Credito, in AsignarInput) (*ResultadoAsignacion, error) {
	if !in.Monto.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if credito.Estado == entity.CreditoCancelado {
		return nil, domain.ErrConflict
	}

	todas, err := r.Cuotas.ListByCredito(credito.ID)
	if err != nil {
		return nil, err
	}
	objetivo := seleccionarCuotas(todas, in.CuotasObjetivo)

	ahora := in.Fecha
	pago := &entity.Pago{
		ID:         uuid.New().String(),
		CreditoID:  credito.ID,
		PlanillaID: in.PlanillaID,
		Monto:      money.Round(in.Monto),
		Fecha:      in.Fecha,
		Origen:     in.Origen,
		CreatedAt:  ahora,
	}

	restante := money.Round(in.Monto)
	capitalAbonado := decimal.Zero
	cuotasPagadas := 0

	for _, cuota := range objetivo {
		if !restante.GreaterThan(decimal.Zero) {
			break
		}
		detalle := drenarCuota(cuota, &restante)
		if detalle.Total().IsZero() {
			continue
		}
		detalle.ID = uuid.New().String()
		detalle.PagoID = pago.ID
		pago.Detalles = append(pago.Detalles, detalle)

		cuota.MontoPagado = money.Round(cuota.MontoPagado.Add(detalle.Total()))
		cuota.NormalizarEstado()
		cuota.UpdatedAt = ahora
		if cuota.Estado == entity.CuotaPagado {
			cuotasPagadas++
		}
		if err := r.Cuotas.Update(cuota); err != nil {
			return nil, err
		}
		capitalAbonado = capitalAbonado.Add(detalle.Amortizacion)
	}

	// Invariante: desglose + excedente == monto del pago.
	asignado := pago.TotalAsignado()
	excedente := money.Round(pago.Monto.Sub(asignado))
	if excedente.IsNegative() {
		return nil, fmt.Errorf("asignación excede el monto del pago: %s > %s",
			asignado.StringFixed(2), pago.Monto.StringFixed(2))
	}

	res := &ResultadoAsignacion{Pago: pago, CuotasPagadas: cuotasPagadas}

	if excedente.GreaterThan(decimal.Zero) {
		sp := &entity.SaldoPendiente{
			ID:         uuid.New().String(),
			CreditoID:  credito.ID,
			PlanillaID: in.PlanillaID,
			PagoID:     pago.ID,
			Monto:      excedente,
			Estado:     entity.SaldoPendienteActivo,
			CreatedAt:  ahora,
			UpdatedAt:  ahora,
		}
		if err := r.Saldos.Create(sp); err != nil {
			return nil, err
		}
		res.SaldoPendiente = sp
	}

	if err := r.Pagos.Create(pago); err != nil {
		return nil, err
	}

	credito.SaldoActual = money.ClampZero(money.Round(credito.SaldoActual.Sub(capitalAbonado)))
	if err := actualizarEstadoCredito(credito, todas); err != nil {
		return nil, err
	}
	credito.UpdatedAt = ahora
	if err := r.Creditos.Update(credito); err != nil {
		return nil, err
	}
	res.CreditoCerrado = credito.Estado == entity.CreditoCancelado
	return res, nil
}

// seleccionarCuotas devuelve las cuotas asignables en orden: las no resueltas
// con número >= 1, filtradas por los objetivos explícitos si los hay.
func seleccionarCuotas(todas []*entity.Cuota, numeros []int) []*entity.Cuota {
	var filtro map[int]bool
	if len(numeros) > 0 {
		filtro = make(map[int]bool, len(numeros))
		for _, n := range numeros {
			filtro[n] = true
		}
	}
	var out []*entity.Cuota
	for _, q := range todas {
		if q.Numero < 1 || q.Resuelta() {
			continue
		}
		if filtro != nil && !filtro[q.Numero] {
			continue
		}
		out = append(out, q)
	}
	return out
}

// drenarCuota consume los rubros de la cuota en orden de prelación contra el
// monto restante y devuelve el desglose aplicado. Muta cuota y restante.
func drenarCuota(cuota *entity.Cuota, restante *decimal.Decimal) entity.PagoDetalle {
	detalle := entity.PagoDetalle{CuotaID: cuota.ID, NumeroCuota: cuota.Numero}

	aplicar := func(rubro *decimal.Decimal) decimal.Decimal {
		pago := money.Min(*rubro, *restante)
		if !pago.GreaterThan(decimal.Zero) {
			return decimal.Zero
		}
		*rubro = money.Round(rubro.Sub(pago))
		*restante = money.Round(restante.Sub(pago))
		return pago
	}

	detalle.InteresMoratorio = aplicar(&cuota.InteresMoratorio)
	detalle.InteresVencido = aplicar(&cuota.InteresVencido)
	detalle.InteresCorriente = aplicar(&cuota.InteresCorriente)
	detalle.Amortizacion = aplicar(&cuota.Amortizacion)
	detalle.Poliza = aplicar(&cuota.Poliza)
	return detalle
}

// actualizarEstadoCredito recalcula el estado del crédito tras una asignación:
// Cancelado si no queda nada pendiente; saneado de la mora si ya no hay cuotas
// en mora.
func actualizarEstadoCredito(credito *entity.Credito, cuotas []*entity.Cuota) error {
	pendientes := 0
	enMora := false
	for _, q := range cuotas {
		if q.Numero < 1 || q.Resuelta() {
			continue
		}
		pendientes++
		if q.Estado == entity.CuotaMora {
			enMora = true
		}
	}
	switch {
	case pendientes == 0:
		return credito.Transicionar(entity.CreditoCancelado)
	case enMora:
		return credito.Transicionar(entity.CreditoEnMora)
	case credito.Estado == entity.CreditoEnMora:
		return credito.Transicionar(entity.CreditoFormalizado)
	}
	return nil
}

// detalleContable serializa el desglose del pago para el asiento externo.
func detalleContable(p *entity.Pago) string {
	s := fmt.Sprintf("pago %s origen=%s monto=%s", p.ID, p.Origen, p.Monto.StringFixed(2))
	for _, d := range p.Detalles {
		s += fmt.Sprintf(" cuota[%d]=%s", d.NumeroCuota, d.Total().StringFixed(2))
	}
	return s
}
