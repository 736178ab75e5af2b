package credito

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/amortizacion"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/money"
	"github.com/leogomez74/credicore/pkg/logger"
)

// Estrategias de reestructura tras un abono extraordinario.
const (
	EstrategiaReducirCuota = "reduce_amount" // mismo plazo, cuota menor
	EstrategiaReducirPlazo = "reduce_term"   // misma cuota, menos períodos
)

// AbonoInput entrada del abono extraordinario a capital.
type AbonoInput struct {
	CreditoID  string
	Monto      decimal.Decimal
	Fecha      time.Time
	Estrategia string
}

// ResultadoAbono salida del abono extraordinario.
type ResultadoAbono struct {
	Pago          *entity.Pago
	NuevoSaldo    decimal.Decimal
	CuotasNuevas  int
	PlazoAnterior int
}

// Extraordinario procesa abonos a capital fuera de ciclo y reestructura el
// plan restante. Las cuotas pagadas o ya vencidas jamás se reescriben; solo
// las futuras.
type Extraordinario struct {
	tx  ports.TxRunner
	enc *contabilidad.Encolador
	log *logger.Logger
}

// NewExtraordinario construye el caso de uso.
func NewExtraordinario(tx ports.TxRunner, enc *contabilidad.Encolador, log *logger.Logger) *Extraordinario {
	return &Extraordinario{tx: tx, enc: enc, log: log}
}

// Abonar aplica el abono y reestructura en una sola transacción.
func (uc *Extraordinario) Abonar(ctx context.Context, in AbonoInput) (*ResultadoAbono, error) {
	if in.Estrategia != EstrategiaReducirCuota && in.Estrategia != EstrategiaReducirPlazo {
		return nil, domain.ErrInvalidInput
	}

	var res *ResultadoAbono
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		credito, err := r.Creditos.GetForUpdate(in.CreditoID)
		if err != nil {
			return err
		}
		if credito == nil {
			return domain.ErrNotFound
		}
		res, err = AbonarEnTx(r, credito, in)
		if err != nil {
			return err
		}
		_, err = uc.enc.EncolarEnTx(r, entity.EventoPago, res.Pago.ID, credito.ID,
			in.Monto, fmt.Sprintf("abono extraordinario %s estrategia=%s", res.Pago.ID, in.Estrategia), in.Fecha)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("credito", in.CreditoID).
		Str("estrategia", in.Estrategia).
		Str("monto", in.Monto.StringFixed(2)).
		Int("cuotas_nuevas", res.CuotasNuevas).
		Msg("abono extraordinario aplicado")
	return res, nil
}

// AbonarEnTx núcleo del abono extraordinario, usable desde otros casos de uso
// (la aplicación de saldos pendientes a capital lo reutiliza).
func AbonarEnTx(r ports.Repos, credito *entity.Credito, in AbonoInput) (*ResultadoAbono, error) {
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

	// Reescribibles: cuotas futuras sin pagar. La frontera es la última cuota
	// pagada o vencida; todo lo anterior queda intacto.
	var reescribibles []*entity.Cuota
	frontera := 0
	fronteraFecha := credito.FechaInicio
	for _, q := range todas {
		if q.Numero < 1 {
			continue
		}
		if q.Estado == entity.CuotaPagado || !q.FechaVencimiento.After(in.Fecha) {
			if q.Numero > frontera {
				frontera = q.Numero
				fronteraFecha = q.FechaVencimiento
			}
			continue
		}
		reescribibles = append(reescribibles, q)
	}
	if len(reescribibles) == 0 {
		return nil, domain.ErrConflict
	}
	// Una cuota pagada por adelantado deja cuotas sin resolver por debajo de la
	// frontera: reescribir numeraría filas nuevas encima de las viejas.
	if reescribibles[0].Numero != frontera+1 {
		return nil, fmt.Errorf("%w: cuota pagada por adelantado impide reescribir el plan", domain.ErrConflict)
	}

	principalRestante := money.Round(reescribibles[0].SaldoInicial.Sub(in.Monto))
	if !principalRestante.GreaterThan(decimal.Zero) {
		// Un abono que liquida el capital completo es una cancelación, no una
		// reestructura.
		return nil, domain.ErrMontoExcedeSaldo
	}

	params := amortizacion.Parametros{
		Principal:   principalRestante,
		TasaAnual:   credito.TasaAnual,
		Plazo:       len(reescribibles),
		FechaInicio: fronteraFecha,
		Poliza:      credito.Poliza,
		NumeroBase:  frontera + 1,
	}

	var filas []amortizacion.Fila
	switch in.Estrategia {
	case EstrategiaReducirCuota:
		filas, err = amortizacion.Generar(params)
	case EstrategiaReducirPlazo:
		// La cuota fija del generador excluye la póliza.
		fija := reescribibles[0].CuotaTotal.Sub(credito.Poliza)
		filas, err = amortizacion.GenerarConCuota(params, fija)
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	ahora := in.Fecha
	if err := r.Cuotas.DeleteDesde(credito.ID, frontera+1); err != nil {
		return nil, err
	}
	nuevas := make([]*entity.Cuota, 0, len(filas))
	for _, f := range filas {
		nuevas = append(nuevas, cuotaDesdeF(credito.ID, f, ahora))
	}
	if err := r.Cuotas.CreateBatch(nuevas); err != nil {
		return nil, err
	}

	// El abono es solo capital: el desglose del pago lo refleja completo como
	// amortización, referido a la fila 0 del plan.
	pago := &entity.Pago{
		ID:        uuid.New().String(),
		CreditoID: credito.ID,
		Monto:     money.Round(in.Monto),
		Fecha:     in.Fecha,
		Origen:    entity.PagoTransfer,
		CreatedAt: ahora,
		Detalles: []entity.PagoDetalle{{
			ID:           uuid.New().String(),
			CuotaID:      filaCero(todas),
			NumeroCuota:  0,
			Amortizacion: money.Round(in.Monto),
		}},
	}
	pago.Detalles[0].PagoID = pago.ID
	if err := r.Pagos.Create(pago); err != nil {
		return nil, err
	}

	credito.SaldoActual = money.ClampZero(money.Round(credito.SaldoActual.Sub(in.Monto)))
	credito.UpdatedAt = ahora
	if err := r.Creditos.Update(credito); err != nil {
		return nil, err
	}

	return &ResultadoAbono{
		Pago:          pago,
		NuevoSaldo:    credito.SaldoActual,
		CuotasNuevas:  len(nuevas),
		PlazoAnterior: len(reescribibles),
	}, nil
}

func filaCero(cuotas []*entity.Cuota) string {
	for _, q := range cuotas {
		if q.Numero == 0 {
			return q.ID
		}
	}
	return ""
}
