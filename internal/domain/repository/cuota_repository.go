package repository

import (
	"time"

	"github.com/leogomez74/credicore/internal/domain/entity"
)

// CuotaRepository define el puerto de persistencia para las cuotas del plan.
type CuotaRepository interface {
	CreateBatch(cuotas []*entity.Cuota) error
	GetByID(id string) (*entity.Cuota, error)
	// ListByCredito devuelve todas las filas del plan ordenadas por número
	// (incluida la fila 0 de inicialización).
	ListByCredito(creditoID string) ([]*entity.Cuota, error)
	Update(cuota *entity.Cuota) error
	// CountActivas cuenta filas con número >= 1; el plan solo se genera una vez.
	CountActivas(creditoID string) (int, error)
	// DeleteDesde elimina las filas no vencidas desde un número en adelante
	// (truncado de la estrategia reduce_term).
	DeleteDesde(creditoID string, numero int) error
	// ListVencidas devuelve cuotas vencidas y no pagadas de todos los créditos,
	// para el barrido de mora.
	ListVencidas(fecha time.Time) ([]*entity.Cuota, error)
}
