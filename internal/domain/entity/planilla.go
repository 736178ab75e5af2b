package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoPlanilla estados de una planilla confirmada.
type EstadoPlanilla string

const (
	PlanillaActiva  EstadoPlanilla = "activa"
	PlanillaAnulada EstadoPlanilla = "anulada"
)

// Clasificación de una fila de planilla en el preview.
const (
	FilaCompleto     = "Completo"      // lo aportado cubre lo esperado
	FilaParcial      = "Parcial"       // aporte menor a lo esperado
	FilaNoEncontrado = "No-encontrado" // identidad sin crédito activo
)

// Planilla registra una deducción de planilla confirmada (BatchUpload).
// Se crea en el commit; la anulación voltea el estado y revierte en cascada
// exactamente los pagos que la planilla creó.
type Planilla struct {
	ID            string
	Archivo       string // identidad del archivo fuente
	Token         string // token de confirmación emitido por el preview
	Fecha         time.Time
	MontoTotal    decimal.Decimal
	Filas         int
	Estado        EstadoPlanilla
	CreadaPor     string
	MotivoAnulado string
	AnuladaPor    string
	AnuladaEn     *time.Time
	CreatedAt     time.Time
}
