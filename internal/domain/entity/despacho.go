package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/domain"
)

// EstadoDespacho estados del envío de un evento financiero al sistema
// contable externo.
type EstadoDespacho string

const (
	DespachoPendiente EstadoDespacho = "pendiente"
	DespachoExitoso   EstadoDespacho = "exitoso"
	DespachoError     EstadoDespacho = "error"
	DespachoOmitido   EstadoDespacho = "omitido" // sin sistema configurado o sin cuenta mapeada; terminal
)

// Tipos de evento contable despachado.
const (
	EventoPago        = "pago"
	EventoPlanilla    = "planilla"
	EventoAnulacion   = "anulacion_planilla"
	EventoCancelacion = "cancelacion_anticipada"
)

// Espera antes de cada reintento: 5, 15 y 45 minutos.
var esperasReintento = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	45 * time.Minute,
}

// DespachoContable es un intento de registrar un evento financiero en el
// sistema contable externo. El registro es el estado completo del reintento:
// el planificador que lee NextRetryAt es función pura de lo almacenado, de
// modo que los reintentos sobreviven reinicios del proceso.
type DespachoContable struct {
	ID          string
	TipoEvento  string // pago | planilla | anulacion_planilla | cancelacion_anticipada
	Referencia  string // ID del evento (pago, planilla, ...)
	CreditoID   string
	Monto       decimal.Decimal
	Detalle     string // desglose serializado que se envía al colaborador
	Estado      EstadoDespacho
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
	ExternalID  string // identificador devuelto por el sistema contable
	Respuesta   string // última respuesta externa (éxito o error)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarcarExitoso cierra el despacho con la respuesta externa.
func (d *DespachoContable) MarcarExitoso(externalID, respuesta string, ahora time.Time) {
	d.Estado = DespachoExitoso
	d.ExternalID = externalID
	d.Respuesta = respuesta
	d.NextRetryAt = nil
	d.UpdatedAt = ahora
}

// MarcarError registra el fallo y programa el próximo reintento según la
// escalera 5/15/45 min; con MaxRetries mayor que la escalera se repite la
// última espera. Agotados los reintentos queda en error permanente
// (NextRetryAt nulo): se muestra al operador, no se reintenta solo.
func (d *DespachoContable) MarcarError(respuesta string, ahora time.Time) {
	d.Estado = DespachoError
	d.Respuesta = respuesta
	d.UpdatedAt = ahora
	if d.RetryCount < d.MaxRetries {
		paso := d.RetryCount
		if paso >= len(esperasReintento) {
			paso = len(esperasReintento) - 1
		}
		siguiente := ahora.Add(esperasReintento[paso])
		d.NextRetryAt = &siguiente
	} else {
		d.NextRetryAt = nil
	}
}

// MarcarOmitido deja el despacho en estado terminal sin reintentos.
func (d *DespachoContable) MarcarOmitido(motivo string, ahora time.Time) {
	d.Estado = DespachoOmitido
	d.Respuesta = motivo
	d.NextRetryAt = nil
	d.UpdatedAt = ahora
}

// IncrementarReintento vuelve el despacho a pendiente para un nuevo intento.
// Solo es válido desde error y mientras queden reintentos.
func (d *DespachoContable) IncrementarReintento(ahora time.Time) error {
	if d.Estado != DespachoError || d.RetryCount >= d.MaxRetries {
		return domain.ErrTransicionInvalida
	}
	d.RetryCount++
	d.Estado = DespachoPendiente
	d.NextRetryAt = nil
	d.UpdatedAt = ahora
	return nil
}

// ListoParaReintento indica si el barrido debe retomar este despacho.
func (d *DespachoContable) ListoParaReintento(ahora time.Time) bool {
	return d.Estado == DespachoError &&
		d.RetryCount < d.MaxRetries &&
		d.NextRetryAt != nil &&
		!d.NextRetryAt.After(ahora)
}
