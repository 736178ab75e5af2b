package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/mora"
	"github.com/leogomez74/credicore/pkg/config"
	"github.com/leogomez74/credicore/pkg/logger"
)

// Scheduler agrupa los barridos de fondo: la acumulación diaria de mora y el
// envío/reintento de despachos contables. El estado de ambos vive en la base
// de datos, de modo que un reinicio del proceso no pierde trabajo.
type Scheduler struct {
	cron        *cron.Cron
	barrido     *mora.Barrido
	despachador *contabilidad.Despachador
	cfg         config.JobsConfig
	log         *logger.Logger
}

// NewScheduler construye el planificador de trabajos de fondo.
func NewScheduler(barrido *mora.Barrido, despachador *contabilidad.Despachador, cfg config.JobsConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		barrido:     barrido,
		despachador: despachador,
		cfg:         cfg,
		log:         log,
	}
}

// Start registra y arranca los trabajos. Devuelve error si algún spec de cron
// es inválido.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.MoraSpec, func() {
		s.ejecutarBarridoMora(ctx)
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.ReintentoSpec, func() {
		s.ejecutarDespachos(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().
		Str("mora_spec", s.cfg.MoraSpec).
		Str("reintento_spec", s.cfg.ReintentoSpec).
		Msg("trabajos de fondo iniciados")
	return nil
}

// Stop detiene el cron y espera a que terminen los trabajos en curso.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Scheduler) ejecutarBarridoMora(ctx context.Context) {
	resumen, err := s.barrido.Ejecutar(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("barrido de mora fallido")
		return
	}
	s.log.Info().
		Int("creditos", resumen.CreditosTocados).
		Int("cuotas", resumen.CuotasAfectadas).
		Int("fallidos", resumen.CreditosFallidos).
		Msg("barrido de mora completado")
}

func (s *Scheduler) ejecutarDespachos(ctx context.Context) {
	ahora := time.Now()
	if err := s.despachador.ProcesarPendientes(ctx, ahora); err != nil {
		s.log.Error().Err(err).Msg("procesamiento de despachos pendientes fallido")
	}
	if err := s.despachador.Reintentar(ctx, ahora); err != nil {
		s.log.Error().Err(err).Msg("reintento de despachos fallido")
	}
}
