package contabilidad

import (
	"context"
	"time"

	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/repository"
	"github.com/leogomez74/credicore/pkg/logger"
)

// loteDespachos máximo de registros por pasada del barrido.
const loteDespachos = 100

// Despachador envía despachos pendientes al sistema contable y programa los
// reintentos. Lee y escribe el registro fuera de toda transacción de negocio:
// el estado de reintento vive en la base, así que el barrido es reanudable
// tras un reinicio del proceso sin efecto doble.
type Despachador struct {
	despachos repository.DespachoRepository
	poster    Poster
	log       *logger.Logger
}

// NewDespachador construye el barrido de despachos.
func NewDespachador(despachos repository.DespachoRepository, poster Poster, log *logger.Logger) *Despachador {
	return &Despachador{despachos: despachos, poster: poster, log: log}
}

// ProcesarPendientes intenta enviar todos los despachos en estado pendiente.
func (d *Despachador) ProcesarPendientes(ctx context.Context, ahora time.Time) error {
	pendientes, err := d.despachos.ListPendientes(loteDespachos)
	if err != nil {
		return err
	}
	for _, despacho := range pendientes {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.enviar(ctx, despacho, ahora)
	}
	return nil
}

// Reintentar retoma los despachos en error cuyo NextRetryAt ya venció:
// incrementa el contador, vuelve el registro a pendiente y lo envía de nuevo.
// Los que agotaron reintentos no aparecen en la consulta y quedan en la cola
// del operador.
func (d *Despachador) Reintentar(ctx context.Context, ahora time.Time) error {
	vencidos, err := d.despachos.ListParaReintento(ahora, loteDespachos)
	if err != nil {
		return err
	}
	for _, despacho := range vencidos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := despacho.IncrementarReintento(ahora); err != nil {
			continue
		}
		if err := d.despachos.Update(despacho); err != nil {
			d.log.Error().Err(err).Str("despacho", despacho.ID).Msg("actualizar despacho para reintento")
			continue
		}
		d.enviar(ctx, despacho, ahora)
	}
	return nil
}

func (d *Despachador) enviar(ctx context.Context, despacho *entity.DespachoContable, ahora time.Time) {
	res, err := d.poster.Postear(ctx, despacho)
	if err != nil {
		despacho.MarcarError(err.Error(), ahora)
		if updErr := d.despachos.Update(despacho); updErr != nil {
			d.log.Error().Err(updErr).Str("despacho", despacho.ID).Msg("guardar error de despacho")
			return
		}
		evt := d.log.Warn().Err(err).
			Str("despacho", despacho.ID).
			Str("evento", despacho.TipoEvento).
			Int("reintentos", despacho.RetryCount)
		if despacho.NextRetryAt == nil {
			evt.Msg("despacho contable agotó reintentos; requiere intervención del operador")
		} else {
			evt.Time("proximo_reintento", *despacho.NextRetryAt).Msg("despacho contable falló; reintento programado")
		}
		return
	}

	despacho.MarcarExitoso(res.ExternalID, res.Cuerpo, ahora)
	if err := d.despachos.Update(despacho); err != nil {
		d.log.Error().Err(err).Str("despacho", despacho.ID).Msg("guardar éxito de despacho")
		return
	}
	d.log.Info().
		Str("despacho", despacho.ID).
		Str("evento", despacho.TipoEvento).
		Str("external_id", res.ExternalID).
		Msg("despacho contable asentado")
}
