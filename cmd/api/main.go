package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	appcontabilidad "github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/credito"
	"github.com/leogomez74/credicore/internal/application/mora"
	"github.com/leogomez74/credicore/internal/application/pago"
	"github.com/leogomez74/credicore/internal/application/planilla"
	"github.com/leogomez74/credicore/internal/application/saldo"
	infracontabilidad "github.com/leogomez74/credicore/internal/infrastructure/contabilidad"
	"github.com/leogomez74/credicore/internal/infrastructure/postgres"
	"github.com/leogomez74/credicore/internal/jobs"
	httpRouter "github.com/leogomez74/credicore/internal/interfaces/http"
	"github.com/leogomez74/credicore/pkg/config"
	"github.com/leogomez74/credicore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	creditoRepo := postgres.NewCreditoRepository(pool)
	cuotaRepo := postgres.NewCuotaRepository(pool)
	pagoRepo := postgres.NewPagoRepository(pool)
	saldoRepo := postgres.NewSaldoPendienteRepository(pool)
	despachoRepo := postgres.NewDespachoRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Despachos contables: el encolador escribe dentro de la transacción de
	// cada evento; el despachador envía después, fuera de transacción.
	contabilidadConfigurada := cfg.Contabilidad.BaseURL != ""
	encolador := appcontabilidad.NewEncolador(contabilidadConfigurada, cfg.Contabilidad.MaxReintentos)
	poster := infracontabilidad.NewClient(cfg.Contabilidad)
	despachador := appcontabilidad.NewDespachador(despachoRepo, poster, log)

	planificador := credito.NewPlanificador(txRunner, cuotaRepo, creditoRepo, log)
	asignador := pago.NewAsignador(txRunner, encolador, log)
	extraordinario := credito.NewExtraordinario(txRunner, encolador, log)
	cancelador := credito.NewCancelador(txRunner, encolador,
		cfg.Cancelacion.UmbralCuota, cfg.Cancelacion.CuotasPenalizacion, log)
	barrido := mora.NewBarrido(txRunner, cuotaRepo, decimal.NewFromFloat(cfg.Mora.TasaMaxima), log)
	procesador := planilla.NewProcesador(txRunner, creditoRepo, cuotaRepo, encolador, log)
	anulador := planilla.NewAnulador(txRunner, encolador, log)
	resolver := saldo.NewResolver(txRunner, encolador, log)

	scheduler := jobs.NewScheduler(barrido, despachador, cfg.Jobs, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("iniciar trabajos de fondo")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Planificador: planificador,
		Extra:        extraordinario,
		Cancelador:   cancelador,
		Asignador:    asignador,
		Procesador:   procesador,
		Anulador:     anulador,
		Resolver:     resolver,
		Pagos:        pagoRepo,
		Saldos:       saldoRepo,
		Despachos:    despachoRepo,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
