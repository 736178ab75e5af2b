package ports

import (
	"context"

	"github.com/leogomez74/credicore/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Creditos  repository.CreditoRepository
	Cuotas    repository.CuotaRepository
	Pagos     repository.PagoRepository
	Saldos    repository.SaldoPendienteRepository
	Planillas repository.PlanillaRepository
	Despachos repository.DespachoRepository
}

// TxRunner ejecuta fn dentro de una transacción: todos los repos del bundle
// operan sobre la misma tx y el conjunto hace Commit o Rollback completo.
// Toda mutación de un crédito (plan, pagos, mora, planillas, abonos) pasa por
// aquí; el bloqueo por fila del crédito serializa los mutadores concurrentes
// del mismo crédito sin bloquear créditos distintos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
