package repository

import "github.com/leogomez74/credicore/internal/domain/entity"

// PagoRepository define el puerto de persistencia para Pago y su desglose.
// Los pagos son inmutables: no hay Update; Delete existe únicamente para el
// borrado compensatorio dentro de la anulación transaccional de una planilla.
type PagoRepository interface {
	Create(pago *entity.Pago) error
	GetByID(id string) (*entity.Pago, error)
	ListByCredito(creditoID string) ([]*entity.Pago, error)
	ListByPlanilla(planillaID string) ([]*entity.Pago, error)
	Delete(id string) error
}
