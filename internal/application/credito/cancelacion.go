package credito

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/pago"
	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/amortizacion"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/money"
	"github.com/leogomez74/credicore/pkg/logger"
)

// Cotizacion es el desglose de una cancelación anticipada a una fecha dada.
// El total es vinculante: la cancelación solo se ejecuta por ese monto exacto.
type Cotizacion struct {
	CreditoID          string
	Fecha              time.Time
	Capital            decimal.Decimal // saldo de capital vivo
	InteresProrrata    decimal.Decimal // interés corrido desde el último vencimiento
	Atrasos            decimal.Decimal // rubros pendientes de cuotas ya vencidas
	Penalizacion       decimal.Decimal
	AplicaPenalizacion bool
	Total              decimal.Decimal
	CuotaReferencia    int // número de la primera cuota futura sin pagar
}

// Cancelador cotiza y ejecuta cancelaciones anticipadas. La penalización
// aplica cuando el crédito se cancela antes de alcanzar el umbral de cuotas y
// equivale a un número fijo de meses de interés sobre el capital vivo.
type Cancelador struct {
	tx     ports.TxRunner
	enc    *contabilidad.Encolador
	umbral int // cuota a partir de la cual la cancelación no penaliza
	meses  int // meses de interés cobrados como penalización
	log    *logger.Logger
}

// NewCancelador construye el caso de uso.
func NewCancelador(tx ports.TxRunner, enc *contabilidad.Encolador, umbralCuota, cuotasPenalizacion int, log *logger.Logger) *Cancelador {
	return &Cancelador{tx: tx, enc: enc, umbral: umbralCuota, meses: cuotasPenalizacion, log: log}
}

// Cotizar calcula el monto de cancelación a la fecha dada sin tocar nada.
func (uc *Cancelador) Cotizar(ctx context.Context, creditoID string, fecha time.Time) (*Cotizacion, error) {
	var cot *Cotizacion
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		credito, err := r.Creditos.GetByID(creditoID)
		if err != nil {
			return err
		}
		if credito == nil {
			return domain.ErrNotFound
		}
		cot, err = uc.cotizarEnTx(r, credito, fecha)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cot, nil
}

// Cancelar liquida el crédito completo. El monto debe coincidir exactamente
// con la cotización vigente a la fecha; cualquier diferencia se rechaza para
// que el operador vuelva a cotizar.
func (uc *Cancelador) Cancelar(ctx context.Context, creditoID string, monto decimal.Decimal, fecha time.Time) (*Cotizacion, *pago.ResultadoAsignacion, error) {
	var (
		cot *Cotizacion
		res *pago.ResultadoAsignacion
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		credito, err := r.Creditos.GetForUpdate(creditoID)
		if err != nil {
			return err
		}
		if credito == nil {
			return domain.ErrNotFound
		}

		cot, err = uc.cotizarEnTx(r, credito, fecha)
		if err != nil {
			return err
		}
		if !money.Equal(monto, cot.Total) {
			return fmt.Errorf("%w: cotizado %s, recibido %s",
				domain.ErrInvalidInput, cot.Total.StringFixed(2), monto.StringFixed(2))
		}

		// Las cuotas futuras se colapsan en una sola cuota de liquidación con
		// el capital vivo más el interés corrido y la penalización. Las cuotas
		// vencidas no se tocan: sus rubros pendientes los drena la asignación.
		if cot.CuotaReferencia > 0 {
			if err := r.Cuotas.DeleteDesde(credito.ID, cot.CuotaReferencia); err != nil {
				return err
			}
			liq := cuotaLiquidacion(credito.ID, cot, fecha)
			if err := r.Cuotas.CreateBatch([]*entity.Cuota{liq}); err != nil {
				return err
			}
		}

		res, err = pago.AsignarEnTx(r, credito, pago.AsignarInput{
			CreditoID: credito.ID,
			Monto:     cot.Total,
			Fecha:     fecha,
			Origen:    entity.PagoManual,
		})
		if err != nil {
			return err
		}
		if !res.CreditoCerrado {
			return fmt.Errorf("cancelación no cerró el crédito %s", credito.ID)
		}

		_, err = uc.enc.EncolarEnTx(r, entity.EventoCancelacion, res.Pago.ID, credito.ID,
			cot.Total, fmt.Sprintf("cancelación anticipada crédito %s", credito.ID), fecha)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	uc.log.Info().
		Str("credito", creditoID).
		Str("total", cot.Total.StringFixed(2)).
		Bool("penalizada", cot.AplicaPenalizacion).
		Msg("crédito cancelado anticipadamente")
	return cot, res, nil
}

func (uc *Cancelador) cotizarEnTx(r ports.Repos, credito *entity.Credito, fecha time.Time) (*Cotizacion, error) {
	if credito.Estado == entity.CreditoCancelado {
		return nil, domain.ErrConflict
	}
	cuotas, err := r.Cuotas.ListByCredito(credito.ID)
	if err != nil {
		return nil, err
	}

	cot := &Cotizacion{CreditoID: credito.ID, Fecha: fecha}
	atrasos := decimal.Zero
	var futura *entity.Cuota
	for _, q := range cuotas {
		if q.Numero < 1 || q.Resuelta() {
			continue
		}
		if !q.FechaVencimiento.After(fecha) {
			atrasos = atrasos.Add(q.SaldoPendiente())
			continue
		}
		if futura == nil {
			futura = q
		}
	}
	if futura == nil && atrasos.IsZero() {
		return nil, domain.ErrConflict
	}

	cot.Atrasos = money.Round(atrasos)
	if futura != nil {
		cot.CuotaReferencia = futura.Numero
		cot.Capital = futura.SaldoInicial

		i := credito.TasaMensual()
		desde := futura.FechaVencimiento.AddDate(0, -1, 0)
		dias := diasEntre(desde, fecha)
		cot.InteresProrrata = amortizacion.InteresAcumulado(cot.Capital, i, dias)

		if futura.Numero < uc.umbral {
			cot.AplicaPenalizacion = true
			cot.Penalizacion = money.Round(cot.Capital.Mul(i).Mul(decimal.NewFromInt(int64(uc.meses))))
		}
	}
	cot.Total = money.Round(cot.Atrasos.Add(cot.Capital).Add(cot.InteresProrrata).Add(cot.Penalizacion))
	return cot, nil
}

// cuotaLiquidacion arma la cuota única que reemplaza a las futuras. La
// penalización se cobra como interés corriente para que el desglose del pago
// cierre contra los mismos rubros de siempre.
func cuotaLiquidacion(creditoID string, cot *Cotizacion, fecha time.Time) *entity.Cuota {
	interes := money.Round(cot.InteresProrrata.Add(cot.Penalizacion))
	return &entity.Cuota{
		ID:               uuid.New().String(),
		CreditoID:        creditoID,
		Numero:           cot.CuotaReferencia,
		FechaVencimiento: fecha,
		CuotaTotal:       money.Round(cot.Capital.Add(interes)),
		InteresCorriente: interes,
		Amortizacion:     cot.Capital,
		Poliza:           decimal.Zero,
		SaldoInicial:     cot.Capital,
		SaldoFinal:       decimal.Zero,
		Estado:           entity.CuotaPendiente,
		CreatedAt:        fecha,
		UpdatedAt:        fecha,
	}
}

func diasEntre(desde, hasta time.Time) int {
	if hasta.Before(desde) {
		return 0
	}
	return int(hasta.Sub(desde).Hours() / 24)
}
