package repository

import "github.com/leogomez74/credicore/internal/domain/entity"

// SaldoPendienteRepository define el puerto para los excedentes sin destino.
type SaldoPendienteRepository interface {
	Create(saldo *entity.SaldoPendiente) error
	GetByID(id string) (*entity.SaldoPendiente, error)
	ListActivos(creditoID string) ([]*entity.SaldoPendiente, error)
	ListByPlanilla(planillaID string) ([]*entity.SaldoPendiente, error)
	Update(saldo *entity.SaldoPendiente) error
	Delete(id string) error
}
