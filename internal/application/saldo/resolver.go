package saldo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/credito"
	"github.com/leogomez74/credicore/internal/application/pago"
	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/money"
	"github.com/leogomez74/credicore/pkg/logger"
)

// AplicarInput entrada de la resolución de un saldo pendiente.
type AplicarInput struct {
	SaldoID    string
	Destino    string          // cuota | capital
	CreditoID  string          // obligatorio solo si el saldo no tiene crédito asociado
	Monto      decimal.Decimal // cero = aplicar el saldo completo
	Estrategia string          // para destino capital; por defecto reduce_amount
	Fecha      time.Time
}

// ResultadoAplicacion salida de la resolución.
type ResultadoAplicacion struct {
	Saldo     *entity.SaldoPendiente
	PagoID    string
	Restante  decimal.Decimal
	Consumido bool
}

// Resolver aplica saldos pendientes por decisión explícita de un operador: a
// la siguiente cuota (por el asignador de pagos) o a capital (por el abono
// extraordinario). La aplicación parcial deja el remanente pendiente; un saldo
// consumido no puede aplicarse dos veces.
type Resolver struct {
	tx  ports.TxRunner
	enc *contabilidad.Encolador
	log *logger.Logger
}

// NewResolver construye el caso de uso.
func NewResolver(tx ports.TxRunner, enc *contabilidad.Encolador, log *logger.Logger) *Resolver {
	return &Resolver{tx: tx, enc: enc, log: log}
}

// Aplicar consume total o parcialmente un saldo pendiente.
func (uc *Resolver) Aplicar(ctx context.Context, in AplicarInput) (*ResultadoAplicacion, error) {
	if in.Destino != entity.DestinoCuota && in.Destino != entity.DestinoCapital {
		return nil, domain.ErrInvalidInput
	}

	res := &ResultadoAplicacion{}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		sp, err := r.Saldos.GetByID(in.SaldoID)
		if err != nil {
			return err
		}
		if sp == nil {
			return domain.ErrNotFound
		}
		if sp.Estado == entity.SaldoPendienteAplicado {
			return domain.ErrSaldoYaAplicado
		}

		creditoID := sp.CreditoID
		if creditoID == "" {
			creditoID = in.CreditoID
		}
		if creditoID == "" {
			return domain.ErrInvalidInput
		}

		monto := in.Monto
		if monto.IsZero() {
			monto = sp.Monto
		}
		if !monto.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if monto.GreaterThan(sp.Monto) {
			return domain.ErrMontoExcedeSaldo
		}

		cred, err := r.Creditos.GetForUpdate(creditoID)
		if err != nil {
			return err
		}
		if cred == nil {
			return domain.ErrNotFound
		}

		switch in.Destino {
		case entity.DestinoCuota:
			asignado, err := pago.AsignarEnTx(r, cred, pago.AsignarInput{
				CreditoID: cred.ID,
				Monto:     monto,
				Fecha:     in.Fecha,
				Origen:    entity.PagoManual,
			})
			if err != nil {
				return err
			}
			res.PagoID = asignado.Pago.ID
			if _, err := uc.enc.EncolarEnTx(r, entity.EventoPago, asignado.Pago.ID, cred.ID,
				monto, "aplicación de saldo pendiente a cuota", in.Fecha); err != nil {
				return err
			}
		case entity.DestinoCapital:
			estrategia := in.Estrategia
			if estrategia == "" {
				estrategia = credito.EstrategiaReducirCuota
			}
			abono, err := credito.AbonarEnTx(r, cred, credito.AbonoInput{
				CreditoID:  cred.ID,
				Monto:      monto,
				Fecha:      in.Fecha,
				Estrategia: estrategia,
			})
			if err != nil {
				return err
			}
			res.PagoID = abono.Pago.ID
			if _, err := uc.enc.EncolarEnTx(r, entity.EventoPago, abono.Pago.ID, cred.ID,
				monto, "aplicación de saldo pendiente a capital", in.Fecha); err != nil {
				return err
			}
		}

		sp.Monto = money.Round(sp.Monto.Sub(monto))
		if sp.Monto.IsZero() {
			sp.Estado = entity.SaldoPendienteAplicado
			res.Consumido = true
		}
		sp.UpdatedAt = in.Fecha
		if err := r.Saldos.Update(sp); err != nil {
			return err
		}
		res.Saldo = sp
		res.Restante = sp.Monto
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("saldo", in.SaldoID).
		Str("destino", in.Destino).
		Bool("consumido", res.Consumido).
		Str("restante", res.Restante.StringFixed(2)).
		Msg("saldo pendiente aplicado")
	return res, nil
}
