package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leogomez74/credicore/internal/application/credito"
	"github.com/leogomez74/credicore/internal/application/pago"
	"github.com/leogomez74/credicore/internal/application/planilla"
	"github.com/leogomez74/credicore/internal/application/saldo"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Planificador *credito.Planificador
	Extra        *credito.Extraordinario
	Cancelador   *credito.Cancelador
	Asignador    *pago.Asignador
	Procesador   *planilla.Procesador
	Anulador     *planilla.Anulador
	Resolver     *saldo.Resolver
	Pagos        repository.PagoRepository
	Saldos       repository.SaldoPendienteRepository
	Despachos    repository.DespachoRepository
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Créditos: plan de pagos, historial, abonos y cancelación
	creditos := api.Group("/creditos")
	creditoHandler := NewCreditoHandler(deps.Planificador, deps.Extra, deps.Cancelador, deps.Pagos)
	creditos.Post("/:id/plan", creditoHandler.GenerarPlan)
	creditos.Get("/:id/plan", creditoHandler.Plan)
	creditos.Get("/:id/pagos", creditoHandler.Pagos)
	creditos.Post("/:id/extraordinario", creditoHandler.Extraordinario)
	creditos.Get("/:id/cancelacion", creditoHandler.Cotizar)
	creditos.Post("/:id/cancelacion", creditoHandler.Cancelar)

	// Pagos manuales
	pagos := api.Group("/pagos")
	pagoHandler := NewPagoHandler(deps.Asignador)
	pagos.Post("/", pagoHandler.Crear)

	// Planillas: preview, commit y anulación (anular requiere rol admin)
	planillas := api.Group("/planillas")
	planillaHandler := NewPlanillaHandler(deps.Procesador, deps.Anulador)
	planillas.Post("/preview", planillaHandler.Preview)
	planillas.Post("/", planillaHandler.Commit)
	planillas.Post("/:id/anular", RequireRole("admin"), planillaHandler.Anular)

	// Saldos pendientes
	saldos := api.Group("/saldos-pendientes")
	saldoHandler := NewSaldoHandler(deps.Resolver, deps.Saldos)
	saldos.Get("/", saldoHandler.Listar)
	saldos.Post("/:id/aplicar", saldoHandler.Aplicar)

	// Bitácora de despachos contables
	contabilidad := api.Group("/contabilidad")
	despachoHandler := NewDespachoHandler(deps.Despachos)
	contabilidad.Get("/despachos", despachoHandler.Listar)
}
