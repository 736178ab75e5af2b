package planilla

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/pago"
	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/money"
	"github.com/leogomez74/credicore/internal/domain/repository"
	"github.com/leogomez74/credicore/pkg/logger"
)

// Fila es una fila cruda de planilla ya parseada del archivo.
type Fila struct {
	Identidad string
	Nombre    string
	Monto     decimal.Decimal
	CuotaHint int // número de cuota sugerido por el archivo; 0 = sin pista
}

// FilaPreview es una fila calzada contra los créditos vigentes.
type FilaPreview struct {
	Fila
	Clasificacion string // Completo | Parcial | No-encontrado
	CreditoID     string
	NumeroCuota   int
	Esperado      decimal.Decimal
	Diferencia    decimal.Decimal // aportado - esperado
}

// VistaPrevia resultado de la fase de preview. No muta estado; el token ata el
// commit posterior a este archivo y esta fecha exactos.
type VistaPrevia struct {
	Archivo       string
	Fecha         time.Time
	Token         string
	Filas         []FilaPreview
	TotalAportado decimal.Decimal
	TotalEsperado decimal.Decimal
	Completas     int
	Parciales     int
	NoEncontradas int
}

// CommitInput entrada de la fase de commit.
type CommitInput struct {
	Archivo string
	Fecha   time.Time
	Token   string
	Filas   []Fila
	Usuario string
}

// ResultadoCommit salida del commit de una planilla.
type ResultadoCommit struct {
	Planilla        *entity.Planilla
	PagosCreados    int
	SaldosCreados   int
	CreditosTocados int
}

// Procesador implementa la conciliación de planillas en dos fases. El preview
// clasifica sin tocar nada; el commit aplica toda la planilla en una sola
// transacción: o entra completa o no entra nada.
type Procesador struct {
	tx       ports.TxRunner
	creditos repository.CreditoRepository // lecturas del preview, fuera de transacción
	cuotas   repository.CuotaRepository
	enc      *contabilidad.Encolador
	log      *logger.Logger
}

// NewProcesador construye el caso de uso.
func NewProcesador(tx ports.TxRunner, creditos repository.CreditoRepository, cuotas repository.CuotaRepository, enc *contabilidad.Encolador, log *logger.Logger) *Procesador {
	return &Procesador{tx: tx, creditos: creditos, cuotas: cuotas, enc: enc, log: log}
}

// Preview calza cada fila contra el crédito activo de su identidad y clasifica
// el aporte contra lo esperado de la primera cuota sin resolver.
func (p *Procesador) Preview(ctx context.Context, archivo string, fecha time.Time, filas []Fila) (*VistaPrevia, error) {
	if len(filas) == 0 {
		return nil, domain.ErrInvalidInput
	}

	vista := &VistaPrevia{
		Archivo:       archivo,
		Fecha:         fecha,
		Token:         TokenPlanilla(archivo, fecha, filas),
		TotalAportado: decimal.Zero,
		TotalEsperado: decimal.Zero,
	}

	for idx, f := range filas {
		f.Identidad = NormalizarIdentidad(f.Identidad)
		if !f.Monto.GreaterThan(decimal.Zero) {
			// Misma regla que el commit: la fila mala se reporta aquí, antes de
			// que el operador confirme.
			return nil, fmt.Errorf("%w: fila %d con monto no positivo", domain.ErrInvalidInput, idx+1)
		}
		fp := FilaPreview{Fila: f, Clasificacion: entity.FilaNoEncontrado}
		vista.TotalAportado = vista.TotalAportado.Add(f.Monto)

		credito, err := p.creditos.GetActivoPorCedula(f.Identidad)
		if err != nil {
			return nil, err
		}
		if credito == nil {
			vista.NoEncontradas++
			vista.Filas = append(vista.Filas, fp)
			continue
		}

		objetivo, err := p.cuotaObjetivo(credito.ID, f.CuotaHint)
		if err != nil {
			return nil, err
		}
		fp.CreditoID = credito.ID
		if objetivo != nil {
			fp.NumeroCuota = objetivo.Numero
			fp.Esperado = objetivo.SaldoPendiente()
		}
		fp.Diferencia = money.Round(f.Monto.Sub(fp.Esperado))
		if f.Monto.GreaterThanOrEqual(fp.Esperado) {
			fp.Clasificacion = entity.FilaCompleto
			vista.Completas++
		} else {
			fp.Clasificacion = entity.FilaParcial
			vista.Parciales++
		}
		vista.TotalEsperado = vista.TotalEsperado.Add(fp.Esperado)
		vista.Filas = append(vista.Filas, fp)
	}

	vista.TotalAportado = money.Round(vista.TotalAportado)
	vista.TotalEsperado = money.Round(vista.TotalEsperado)
	return vista, nil
}

// Commit confirma una planilla previamente cotizada por Preview. El token debe
// corresponder al mismo archivo, filas y fecha; una planilla activa para el
// mismo archivo y fecha es un doble commit y se rechaza.
func (p *Procesador) Commit(ctx context.Context, in CommitInput) (*ResultadoCommit, error) {
	if len(in.Filas) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Token == "" || in.Token != TokenPlanilla(in.Archivo, in.Fecha, in.Filas) {
		return nil, domain.ErrTokenPreview
	}

	res := &ResultadoCommit{}
	err := p.tx.Run(ctx, func(r ports.Repos) error {
		existe, err := r.Planillas.ExisteActiva(in.Archivo, in.Fecha)
		if err != nil {
			return err
		}
		if existe {
			return domain.ErrDuplicate
		}

		plan := &entity.Planilla{
			ID:        uuid.New().String(),
			Archivo:   in.Archivo,
			Token:     in.Token,
			Fecha:     in.Fecha,
			Filas:     len(in.Filas),
			Estado:    entity.PlanillaActiva,
			CreadaPor: in.Usuario,
			CreatedAt: in.Fecha,
		}
		if err := r.Planillas.Create(plan); err != nil {
			return err
		}

		total := decimal.Zero
		tocados := map[string]bool{}
		for idx, f := range in.Filas {
			f.Identidad = NormalizarIdentidad(f.Identidad)
			if !f.Monto.GreaterThan(decimal.Zero) {
				return fmt.Errorf("%w: fila %d con monto no positivo", domain.ErrInvalidInput, idx+1)
			}
			total = total.Add(f.Monto)

			credito, err := r.Creditos.GetActivoPorCedula(f.Identidad)
			if err != nil {
				return err
			}
			if credito == nil {
				// Fila sin crédito: el dinero no se descarta, queda como saldo
				// pendiente identificado por la cédula para resolución manual.
				sp := &entity.SaldoPendiente{
					ID:         uuid.New().String(),
					PlanillaID: plan.ID,
					Identidad:  f.Identidad,
					Monto:      money.Round(f.Monto),
					Estado:     entity.SaldoPendienteActivo,
					CreatedAt:  in.Fecha,
					UpdatedAt:  in.Fecha,
				}
				if err := r.Saldos.Create(sp); err != nil {
					return err
				}
				res.SaldosCreados++
				continue
			}

			credito, err = r.Creditos.GetForUpdate(credito.ID)
			if err != nil {
				return err
			}
			var objetivo []int
			if f.CuotaHint > 0 {
				objetivo = []int{f.CuotaHint}
			}
			asignado, err := pago.AsignarEnTx(r, credito, pago.AsignarInput{
				CreditoID:      credito.ID,
				Monto:          f.Monto,
				Fecha:          in.Fecha,
				Origen:         entity.PagoPlanilla,
				PlanillaID:     plan.ID,
				CuotasObjetivo: objetivo,
			})
			if err != nil {
				return fmt.Errorf("fila %d (%s): %w", idx+1, f.Identidad, err)
			}
			res.PagosCreados++
			if asignado.SaldoPendiente != nil {
				res.SaldosCreados++
			}
			tocados[credito.ID] = true
		}

		plan.MontoTotal = money.Round(total)
		if err := r.Planillas.Update(plan); err != nil {
			return err
		}
		res.Planilla = plan
		res.CreditosTocados = len(tocados)

		_, err = p.enc.EncolarEnTx(r, entity.EventoPlanilla, plan.ID, "",
			plan.MontoTotal, fmt.Sprintf("planilla %s (%d filas)", in.Archivo, len(in.Filas)), in.Fecha)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.log.Info().
		Str("planilla", res.Planilla.ID).
		Str("archivo", in.Archivo).
		Int("filas", len(in.Filas)).
		Int("pagos", res.PagosCreados).
		Int("saldos", res.SaldosCreados).
		Msg("planilla confirmada")
	return res, nil
}

// cuotaObjetivo primera cuota sin resolver, o la sugerida por el archivo.
func (p *Procesador) cuotaObjetivo(creditoID string, hint int) (*entity.Cuota, error) {
	cuotas, err := p.cuotas.ListByCredito(creditoID)
	if err != nil {
		return nil, err
	}
	for _, q := range cuotas {
		if q.Numero < 1 || q.Resuelta() {
			continue
		}
		if hint > 0 && q.Numero != hint {
			continue
		}
		return q, nil
	}
	return nil, nil
}

// TokenPlanilla deriva el token de confirmación del contenido normalizado del
// archivo y la fecha de proceso. Cambiar una fila, un monto o la fecha produce
// otro token y obliga a un nuevo preview.
func TokenPlanilla(archivo string, fecha time.Time, filas []Fila) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s\n", archivo, fecha.Format("2006-01-02"))
	for _, f := range filas {
		fmt.Fprintf(h, "%s|%s|%d\n", NormalizarIdentidad(f.Identidad), f.Monto.StringFixed(2), f.CuotaHint)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizarIdentidad deja solo los dígitos de la cédula: los archivos llegan
// con guiones y espacios inconsistentes.
func NormalizarIdentidad(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
