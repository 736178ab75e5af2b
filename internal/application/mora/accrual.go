package mora

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/money"
	"github.com/leogomez74/credicore/internal/domain/repository"
	"github.com/leogomez74/credicore/pkg/logger"
)

// base360 base de días para el devengo diario (anual/360).
var base360 = decimal.NewFromInt(360)

// ResumenBarrido resultado agregado de una corrida del barrido de mora.
type ResumenBarrido struct {
	Fecha            time.Time
	CreditosTocados  int
	CuotasAfectadas  int
	CreditosFallidos int
}

// Barrido es el proceso diario de mora: para cada cuota vencida y no pagada
// devenga interés por los días transcurridos y mueve cuota y crédito a Mora.
// El devengo es idempotente por día: correr el barrido dos veces la misma
// fecha no duplica intereses.
type Barrido struct {
	tx         ports.TxRunner
	cuotas     repository.CuotaRepository // lectura fuera de transacción
	tasaMaxima decimal.Decimal            // % anual tope para interés moratorio
	log        *logger.Logger
}

// NewBarrido construye el barrido. tasaMaxima es la tasa anual máxima legal.
func NewBarrido(tx ports.TxRunner, cuotas repository.CuotaRepository, tasaMaxima decimal.Decimal, log *logger.Logger) *Barrido {
	return &Barrido{tx: tx, cuotas: cuotas, tasaMaxima: tasaMaxima, log: log}
}

// Ejecutar corre el barrido a la fecha dada. Cada crédito se procesa en su
// propia transacción: el fallo de uno no detiene a los demás.
func (b *Barrido) Ejecutar(ctx context.Context, fecha time.Time) (*ResumenBarrido, error) {
	vencidas, err := b.cuotas.ListVencidas(fecha)
	if err != nil {
		return nil, err
	}

	porCredito := make(map[string]bool)
	orden := make([]string, 0)
	for _, q := range vencidas {
		if !porCredito[q.CreditoID] {
			porCredito[q.CreditoID] = true
			orden = append(orden, q.CreditoID)
		}
	}

	resumen := &ResumenBarrido{Fecha: fecha}
	for _, creditoID := range orden {
		afectadas, err := b.acumularCredito(ctx, creditoID, fecha)
		if err != nil {
			resumen.CreditosFallidos++
			b.log.Error().Err(err).Str("credito", creditoID).Msg("barrido de mora falló para el crédito")
			continue
		}
		if afectadas > 0 {
			resumen.CreditosTocados++
			resumen.CuotasAfectadas += afectadas
		}
	}

	b.log.Info().
		Time("fecha", fecha).
		Int("creditos", resumen.CreditosTocados).
		Int("cuotas", resumen.CuotasAfectadas).
		Int("fallidos", resumen.CreditosFallidos).
		Msg("barrido de mora completado")
	return resumen, nil
}

func (b *Barrido) acumularCredito(ctx context.Context, creditoID string, fecha time.Time) (int, error) {
	afectadas := 0
	err := b.tx.Run(ctx, func(r ports.Repos) error {
		credito, err := r.Creditos.GetForUpdate(creditoID)
		if err != nil {
			return err
		}
		if credito == nil {
			return domain.ErrNotFound
		}
		afectadas, err = AcumularEnTx(r, credito, b.tasaMaxima, fecha)
		return err
	})
	return afectadas, err
}

// AcumularEnTx devenga mora sobre las cuotas vencidas de un crédito dentro de
// la transacción del caller. Devuelve cuántas cuotas fueron tocadas.
//
// Dos regímenes según la tasa contractual frente al tope legal:
//   - tasa >= tope: solo devenga interés corriente vencido, a la tasa del
//     contrato; no hay margen para moratorio.
//   - tasa < tope: además devenga interés moratorio sobre el margen
//     (tope - tasa) hasta completar el tope.
func AcumularEnTx(r ports.Repos, credito *entity.Credito, tasaMaxima decimal.Decimal, fecha time.Time) (int, error) {
	if credito.Estado == entity.CreditoCancelado {
		return 0, nil
	}
	cuotas, err := r.Cuotas.ListByCredito(credito.ID)
	if err != nil {
		return 0, err
	}

	afectadas := 0
	enMora := false
	for _, q := range cuotas {
		if !q.Vencida(fecha) {
			if q.Estado == entity.CuotaMora {
				enMora = true
			}
			continue
		}
		toco, err := acumularCuota(r, credito, q, tasaMaxima, fecha)
		if err != nil {
			return afectadas, err
		}
		if toco {
			afectadas++
		}
		enMora = true
	}

	if enMora && credito.Estado == entity.CreditoFormalizado {
		if err := credito.Transicionar(entity.CreditoEnMora); err != nil {
			return afectadas, err
		}
		credito.UpdatedAt = fecha
		if err := r.Creditos.Update(credito); err != nil {
			return afectadas, err
		}
	}
	return afectadas, nil
}

func acumularCuota(r ports.Repos, credito *entity.Credito, q *entity.Cuota, tasaMaxima decimal.Decimal, fecha time.Time) (bool, error) {
	desde := q.FechaVencimiento
	if q.FechaUltimaMora != nil {
		desde = *q.FechaUltimaMora
	}
	diasNuevos := diasEntre(desde, fecha)
	if diasNuevos <= 0 && q.FechaUltimaMora != nil {
		return false, nil // ya devengado hoy
	}

	// Primer barrido sobre la cuota: el interés corriente no pagado pasa a
	// vencido y la cuota entra en mora.
	if q.FechaUltimaMora == nil {
		q.InteresVencido = money.Round(q.InteresVencido.Add(q.InteresCorriente))
		q.InteresCorriente = decimal.Zero
		if err := q.Transicionar(entity.CuotaMora); err != nil {
			return false, err
		}
	}

	if diasNuevos > 0 {
		base := q.Amortizacion
		dias := decimal.NewFromInt(int64(diasNuevos))

		vencido := base.Mul(credito.TasaAnual).Div(decimal.NewFromInt(100)).Mul(dias).Div(base360)
		q.InteresVencido = money.Round(q.InteresVencido.Add(vencido))

		if credito.TasaAnual.LessThan(tasaMaxima) {
			margen := tasaMaxima.Sub(credito.TasaAnual)
			moratorio := base.Mul(margen).Div(decimal.NewFromInt(100)).Mul(dias).Div(base360)
			q.InteresMoratorio = money.Round(q.InteresMoratorio.Add(moratorio))
		}
	}

	marca := fecha
	q.FechaUltimaMora = &marca
	q.DiasAtraso = diasEntre(q.FechaVencimiento, fecha)
	q.UpdatedAt = fecha
	if err := r.Cuotas.Update(q); err != nil {
		return false, err
	}
	return true, nil
}

func diasEntre(desde, hasta time.Time) int {
	if hasta.Before(desde) {
		return 0
	}
	return int(hasta.Sub(desde).Hours() / 24)
}
