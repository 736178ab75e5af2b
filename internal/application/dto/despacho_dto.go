package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/domain/entity"
)

// DespachoResponse un registro de la bitácora de despachos contables. Los
// despachos en error permanente forman la cola que revisa el operador.
type DespachoResponse struct {
	ID          string          `json:"id"`
	TipoEvento  string          `json:"tipo_evento"`
	Referencia  string          `json:"referencia"`
	CreditoID   string          `json:"credito_id,omitempty"`
	Monto       decimal.Decimal `json:"monto"`
	Estado      string          `json:"estado"`
	RetryCount  int             `json:"retry_count"`
	MaxRetries  int             `json:"max_retries"`
	NextRetryAt *time.Time      `json:"next_retry_at,omitempty"`
	ExternalID  string          `json:"external_id,omitempty"`
	Respuesta   string          `json:"respuesta,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DespachoListResponse lista paginada de despachos.
type DespachoListResponse struct {
	Items  []DespachoResponse `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// DesdeDespacho mapea un despacho a su respuesta HTTP.
func DesdeDespacho(d *entity.DespachoContable) DespachoResponse {
	return DespachoResponse{
		ID:          d.ID,
		TipoEvento:  d.TipoEvento,
		Referencia:  d.Referencia,
		CreditoID:   d.CreditoID,
		Monto:       d.Monto,
		Estado:      string(d.Estado),
		RetryCount:  d.RetryCount,
		MaxRetries:  d.MaxRetries,
		NextRetryAt: d.NextRetryAt,
		ExternalID:  d.ExternalID,
		Respuesta:   d.Respuesta,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
