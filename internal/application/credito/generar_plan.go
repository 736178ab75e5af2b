package credito

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/amortizacion"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/repository"
	"github.com/leogomez74/credicore/pkg/logger"
)

// Planificador genera el plan de pagos de un crédito formalizado.
//
// La generación es un comando explícito invocado una sola vez por el flujo de
// formalización; nunca es efecto lateral de otra inserción. Si el plan ya
// existe la llamada es un no-op que devuelve el plan vigente.
type Planificador struct {
	tx      ports.TxRunner
	cuotas  repository.CuotaRepository
	credits repository.CreditoRepository
	log     *logger.Logger
}

// NewPlanificador construye el caso de uso.
func NewPlanificador(tx ports.TxRunner, cuotas repository.CuotaRepository, credits repository.CreditoRepository, log *logger.Logger) *Planificador {
	return &Planificador{tx: tx, cuotas: cuotas, credits: credits, log: log}
}

// Generar crea las cuotas 0..N del crédito. La fila 0 registra el saldo previo
// al desembolso y queda fuera de los conteos de cuotas activas. Un plan cuya
// suma de amortizaciones no cierre contra el principal es un error fatal de
// generación: no se escribe ninguna fila.
func (p *Planificador) Generar(ctx context.Context, creditoID string) ([]*entity.Cuota, bool, error) {
	var plan []*entity.Cuota
	generado := false

	err := p.tx.Run(ctx, func(r ports.Repos) error {
		credito, err := r.Creditos.GetForUpdate(creditoID)
		if err != nil {
			return err
		}
		if credito == nil {
			return domain.ErrNotFound
		}
		if credito.Estado != entity.CreditoFormalizado {
			return domain.ErrCreditoNoFormalizado
		}

		activas, err := r.Cuotas.CountActivas(creditoID)
		if err != nil {
			return err
		}
		if activas > 0 {
			// Plan ya generado: no-op, se devuelve el existente.
			plan, err = r.Cuotas.ListByCredito(creditoID)
			return err
		}

		filas, err := amortizacion.Generar(amortizacion.Parametros{
			Principal:   credito.Monto,
			TasaAnual:   credito.TasaAnual,
			Plazo:       credito.PlazoMeses,
			FechaInicio: credito.FechaInicio,
			Poliza:      credito.Poliza,
		})
		if err != nil {
			return err
		}

		ahora := time.Now()
		plan = append(plan, filaInicializacion(credito, ahora))
		for _, f := range filas {
			plan = append(plan, cuotaDesdeF(credito.ID, f, ahora))
		}
		if err := r.Cuotas.CreateBatch(plan); err != nil {
			return err
		}

		credito.SaldoActual = credito.Monto
		credito.UpdatedAt = ahora
		if err := r.Creditos.Update(credito); err != nil {
			return err
		}
		generado = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if generado {
		p.log.Info().
			Str("credito", creditoID).
			Int("cuotas", len(plan)-1).
			Msg("plan de pagos generado")
	}
	return plan, generado, nil
}

// Plan devuelve el plan vigente del crédito (lectura).
func (p *Planificador) Plan(ctx context.Context, creditoID string) ([]*entity.Cuota, error) {
	credito, err := p.credits.GetByID(creditoID)
	if err != nil {
		return nil, err
	}
	if credito == nil {
		return nil, domain.ErrNotFound
	}
	return p.cuotas.ListByCredito(creditoID)
}

// filaInicializacion construye la cuota 0: registra el saldo previo al
// desembolso, nace resuelta y nunca recibe asignaciones.
func filaInicializacion(c *entity.Credito, ahora time.Time) *entity.Cuota {
	return &entity.Cuota{
		ID:               uuid.New().String(),
		CreditoID:        c.ID,
		Numero:           0,
		FechaVencimiento: c.FechaInicio,
		SaldoInicial:     c.Monto,
		SaldoFinal:       c.Monto,
		CuotaTotal:       decimal.Zero,
		Estado:           entity.CuotaPagado,
		CreatedAt:        ahora,
		UpdatedAt:        ahora,
	}
}

// cuotaDesdeF mapea una fila calculada a la entidad persistible. Los rubros
// nacen con el monto programado completo pendiente.
func cuotaDesdeF(creditoID string, f amortizacion.Fila, ahora time.Time) *entity.Cuota {
	return &entity.Cuota{
		ID:               uuid.New().String(),
		CreditoID:        creditoID,
		Numero:           f.Numero,
		FechaVencimiento: f.FechaVencimiento,
		SaldoInicial:     f.SaldoInicial,
		InteresCorriente: f.Interes,
		Amortizacion:     f.Amortizacion,
		Poliza:           f.Poliza,
		CuotaTotal:       f.Cuota,
		SaldoFinal:       f.SaldoFinal,
		Estado:           entity.CuotaPendiente,
		CreatedAt:        ahora,
		UpdatedAt:        ahora,
	}
}
