package contabilidad

import (
	"context"

	"github.com/leogomez74/credicore/internal/domain/entity"
)

// Resultado respuesta del sistema contable externo a un despacho.
type Resultado struct {
	ExternalID string // identificador del asiento en el sistema externo
	Cuerpo     string // respuesta cruda (se guarda en el registro)
}

// Poster define el puerto de salida hacia el sistema contable externo.
// La implementación concreta es un cliente HTTP con timeout acotado; para
// tests se inyecta un mock. Nunca se invoca con una transacción de base de
// datos abierta: la mutación financiera ya quedó confirmada antes del envío.
type Poster interface {
	Postear(ctx context.Context, despacho *entity.DespachoContable) (*Resultado, error)
}
