package planilla

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/money"
	"github.com/leogomez74/credicore/pkg/logger"
)

// AnularInput entrada de la anulación de una planilla.
type AnularInput struct {
	PlanillaID string
	Motivo     string
	Usuario    string
	Fecha      time.Time
}

// ResultadoAnulacion salida de la anulación.
type ResultadoAnulacion struct {
	Planilla            *entity.Planilla
	PagosRevertidos     int
	SaldosEliminados    int
	CreditosRestaurados int
}

// Anulador revierte una planilla confirmada: borra exactamente los pagos que
// la planilla creó y restaura cada cuota y cada saldo de crédito a su valor
// previo al commit, usando el desglose de asignación como inversa exacta.
type Anulador struct {
	tx  ports.TxRunner
	enc *contabilidad.Encolador
	log *logger.Logger
}

// NewAnulador construye el caso de uso. La restricción de rol (solo un
// administrador puede anular) se aplica en la capa de entrada.
func NewAnulador(tx ports.TxRunner, enc *contabilidad.Encolador, log *logger.Logger) *Anulador {
	return &Anulador{tx: tx, enc: enc, log: log}
}

// Anular ejecuta la reversa completa en una sola transacción. El motivo es
// obligatorio. Si algún saldo pendiente originado por la planilla ya fue
// aplicado a un crédito, la anulación se rechaza: revertirlo requeriría
// deshacer una operación posterior ajena a la planilla.
func (uc *Anulador) Anular(ctx context.Context, in AnularInput) (*ResultadoAnulacion, error) {
	if in.Motivo == "" {
		return nil, domain.ErrMotivoRequerido
	}

	res := &ResultadoAnulacion{}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		plan, err := r.Planillas.GetByID(in.PlanillaID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrNotFound
		}
		if plan.Estado == entity.PlanillaAnulada {
			return domain.ErrPlanillaAnulada
		}

		saldos, err := r.Saldos.ListByPlanilla(plan.ID)
		if err != nil {
			return err
		}
		for _, sp := range saldos {
			if sp.Estado == entity.SaldoPendienteAplicado {
				return domain.ErrSaldoYaAplicado
			}
		}

		pagos, err := r.Pagos.ListByPlanilla(plan.ID)
		if err != nil {
			return err
		}

		capitalPorCredito := map[string]decimal.Decimal{}
		for _, p := range pagos {
			capital, err := revertirPago(r, p)
			if err != nil {
				return fmt.Errorf("pago %s: %w", p.ID, err)
			}
			capitalPorCredito[p.CreditoID] = capitalPorCredito[p.CreditoID].Add(capital)
			if err := r.Pagos.Delete(p.ID); err != nil {
				return err
			}
			res.PagosRevertidos++
		}

		for creditoID, capital := range capitalPorCredito {
			if err := restaurarCredito(r, creditoID, capital, in.Fecha); err != nil {
				return err
			}
			res.CreditosRestaurados++
		}

		for _, sp := range saldos {
			if err := r.Saldos.Delete(sp.ID); err != nil {
				return err
			}
			res.SaldosEliminados++
		}

		plan.Estado = entity.PlanillaAnulada
		plan.MotivoAnulado = in.Motivo
		plan.AnuladaPor = in.Usuario
		anuladaEn := in.Fecha
		plan.AnuladaEn = &anuladaEn
		if err := r.Planillas.Update(plan); err != nil {
			return err
		}
		res.Planilla = plan

		_, err = uc.enc.EncolarEnTx(r, entity.EventoAnulacion, plan.ID, "",
			plan.MontoTotal, fmt.Sprintf("anulación planilla %s: %s", plan.Archivo, in.Motivo), in.Fecha)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("planilla", in.PlanillaID).
		Str("usuario", in.Usuario).
		Int("pagos_revertidos", res.PagosRevertidos).
		Msg("planilla anulada")
	return res, nil
}

// revertirPago devuelve a cada cuota los rubros que el pago drenó y retorna el
// capital total a restituir al crédito.
func revertirPago(r ports.Repos, p *entity.Pago) (decimal.Decimal, error) {
	capital := decimal.Zero
	for _, d := range p.Detalles {
		q, err := r.Cuotas.GetByID(d.CuotaID)
		if err != nil {
			return capital, err
		}
		if q == nil {
			return capital, domain.ErrNotFound
		}

		q.InteresMoratorio = money.Round(q.InteresMoratorio.Add(d.InteresMoratorio))
		q.InteresVencido = money.Round(q.InteresVencido.Add(d.InteresVencido))
		q.InteresCorriente = money.Round(q.InteresCorriente.Add(d.InteresCorriente))
		q.Amortizacion = money.Round(q.Amortizacion.Add(d.Amortizacion))
		q.Poliza = money.Round(q.Poliza.Add(d.Poliza))
		q.MontoPagado = money.Round(q.MontoPagado.Sub(d.Total()))
		q.Estado = estadoRestaurado(q)
		q.UpdatedAt = p.Fecha
		if err := r.Cuotas.Update(q); err != nil {
			return capital, err
		}
		capital = capital.Add(d.Amortizacion)
	}
	return capital, nil
}

// estadoRestaurado recalcula el estado de la cuota tras devolverle rubros. Una
// cuota que había pasado por mora vuelve a Mora, no a Parcial.
func estadoRestaurado(q *entity.Cuota) entity.EstadoCuota {
	if q.SaldoPendiente().IsZero() {
		return entity.CuotaPagado
	}
	if q.FechaUltimaMora != nil {
		return entity.CuotaMora
	}
	if q.MontoPagado.GreaterThan(decimal.Zero) {
		return entity.CuotaParcial
	}
	return entity.CuotaPendiente
}

// restaurarCredito restituye capital y recalcula estado. El estado se asigna
// directo, sin pasar por la tabla de transiciones: la anulación puede reabrir
// un crédito que el commit dejó cancelado.
func restaurarCredito(r ports.Repos, creditoID string, capital decimal.Decimal, fecha time.Time) error {
	credito, err := r.Creditos.GetForUpdate(creditoID)
	if err != nil {
		return err
	}
	if credito == nil {
		return domain.ErrNotFound
	}
	credito.SaldoActual = money.Round(credito.SaldoActual.Add(capital))

	cuotas, err := r.Cuotas.ListByCredito(creditoID)
	if err != nil {
		return err
	}
	pendientes, enMora := 0, false
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
		credito.Estado = entity.CreditoCancelado
	case enMora:
		credito.Estado = entity.CreditoEnMora
	default:
		credito.Estado = entity.CreditoFormalizado
	}
	credito.UpdatedAt = fecha
	return r.Creditos.Update(credito)
}
