package repository

import (
	"time"

	"github.com/leogomez74/credicore/internal/domain/entity"
)

// PlanillaRepository define el puerto de persistencia para planillas confirmadas.
type PlanillaRepository interface {
	Create(planilla *entity.Planilla) error
	GetByID(id string) (*entity.Planilla, error)
	// ExisteActiva detecta el doble commit del mismo archivo para la misma fecha.
	ExisteActiva(archivo string, fecha time.Time) (bool, error)
	Update(planilla *entity.Planilla) error
	List(limit, offset int) ([]*entity.Planilla, error)
}
