package repository

import "github.com/leogomez74/credicore/internal/domain/entity"

// CreditoRepository define el puerto de persistencia para Credito.
// La mutación de saldo/estado siempre ocurre dentro de la transacción
// serializada por crédito (ver TxRunner).
type CreditoRepository interface {
	Create(credito *entity.Credito) error
	GetByID(id string) (*entity.Credito, error)
	// GetActivoPorCedula devuelve el crédito no cancelado del deudor, para el
	// calce de filas de planilla. Nil sin error si no existe.
	GetActivoPorCedula(cedula string) (*entity.Credito, error)
	Update(credito *entity.Credito) error
	// GetForUpdate bloquea la fila del crédito (SELECT FOR UPDATE): serializa
	// toda mutación concurrente sobre el mismo crédito sin bloquear otros.
	GetForUpdate(id string) (*entity.Credito, error)
}
