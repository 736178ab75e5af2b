package repository

import (
	"time"

	"github.com/leogomez74/credicore/internal/domain/entity"
)

// DespachoRepository define el puerto de persistencia para los despachos
// contables y su máquina de reintentos.
type DespachoRepository interface {
	Create(despacho *entity.DespachoContable) error
	GetByID(id string) (*entity.DespachoContable, error)
	Update(despacho *entity.DespachoContable) error
	// ExisteExitoso implementa la supresión de duplicados: true si ya hay un
	// despacho exitoso para el par (tipo de evento, referencia externa).
	ExisteExitoso(tipoEvento, referencia string) (bool, error)
	// ListPendientes devuelve despachos recién creados aún no intentados.
	ListPendientes(limit int) ([]*entity.DespachoContable, error)
	// ListParaReintento devuelve despachos en error cuyo NextRetryAt ya venció.
	ListParaReintento(ahora time.Time, limit int) ([]*entity.DespachoContable, error)
	ListByEstado(estado entity.EstadoDespacho, limit, offset int) ([]*entity.DespachoContable, error)
}
