package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/planilla"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

// FilaPlanilla una fila de planilla en el cuerpo JSON de preview/commit.
type FilaPlanilla struct {
	Identidad string          `json:"identidad" validate:"required"`
	Nombre    string          `json:"nombre"`
	Monto     decimal.Decimal `json:"monto"`
	Cuota     int             `json:"cuota"` // número de cuota sugerido; 0 = sin pista
}

// PreviewPlanillaRequest entrada JSON del preview. El preview también acepta
// el archivo crudo por multipart, en cuyo caso Filas sale del parser.
type PreviewPlanillaRequest struct {
	Archivo string         `json:"archivo" validate:"required"`
	Fecha   string         `json:"fecha"` // yyyy-mm-dd; vacío = hoy
	Filas   []FilaPlanilla `json:"filas" validate:"required,min=1"`
}

// FilaPreviewResponse una fila calzada contra los créditos vigentes.
type FilaPreviewResponse struct {
	Identidad     string          `json:"identidad"`
	Nombre        string          `json:"nombre,omitempty"`
	Monto         decimal.Decimal `json:"monto"`
	Cuota         int             `json:"cuota,omitempty"`
	Clasificacion string          `json:"clasificacion"`
	CreditoID     string          `json:"credito_id,omitempty"`
	NumeroCuota   int             `json:"numero_cuota,omitempty"`
	Esperado      decimal.Decimal `json:"esperado"`
	Diferencia    decimal.Decimal `json:"diferencia"`
}

// PreviewPlanillaResponse resultado del preview con el token de confirmación.
type PreviewPlanillaResponse struct {
	Archivo       string                `json:"archivo"`
	Fecha         string                `json:"fecha"`
	Token         string                `json:"token"`
	Filas         []FilaPreviewResponse `json:"filas"`
	TotalAportado decimal.Decimal       `json:"total_aportado"`
	TotalEsperado decimal.Decimal       `json:"total_esperado"`
	Completas     int                   `json:"completas"`
	Parciales     int                   `json:"parciales"`
	NoEncontradas int                   `json:"no_encontradas"`
}

// CommitPlanillaRequest entrada del commit: las mismas filas del preview más
// el token emitido por él.
type CommitPlanillaRequest struct {
	Archivo string         `json:"archivo" validate:"required"`
	Fecha   string         `json:"fecha"`
	Token   string         `json:"token" validate:"required"`
	Filas   []FilaPlanilla `json:"filas" validate:"required,min=1"`
}

// PlanillaResponse una planilla confirmada.
type PlanillaResponse struct {
	ID            string          `json:"id"`
	Archivo       string          `json:"archivo"`
	Fecha         string          `json:"fecha"`
	MontoTotal    decimal.Decimal `json:"monto_total"`
	Filas         int             `json:"filas"`
	Estado        string          `json:"estado"`
	CreadaPor     string          `json:"creada_por,omitempty"`
	MotivoAnulado string          `json:"motivo_anulado,omitempty"`
	AnuladaPor    string          `json:"anulada_por,omitempty"`
	AnuladaEn     *time.Time      `json:"anulada_en,omitempty"`
}

// CommitPlanillaResponse resultado del commit.
type CommitPlanillaResponse struct {
	Planilla        PlanillaResponse `json:"planilla"`
	PagosCreados    int              `json:"pagos_creados"`
	SaldosCreados   int              `json:"saldos_creados"`
	CreditosTocados int              `json:"creditos_tocados"`
}

// AnularPlanillaRequest entrada de la anulación (solo rol admin).
type AnularPlanillaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// AnularPlanillaResponse resultado de la anulación en cascada.
type AnularPlanillaResponse struct {
	Planilla            PlanillaResponse `json:"planilla"`
	PagosRevertidos     int              `json:"pagos_revertidos"`
	SaldosEliminados    int              `json:"saldos_eliminados"`
	CreditosRestaurados int              `json:"creditos_restaurados"`
}

// AFilas convierte las filas del cuerpo JSON al tipo del caso de uso.
func AFilas(filas []FilaPlanilla) []planilla.Fila {
	out := make([]planilla.Fila, 0, len(filas))
	for _, f := range filas {
		out = append(out, planilla.Fila{
			Identidad: f.Identidad,
			Nombre:    f.Nombre,
			Monto:     f.Monto,
			CuotaHint: f.Cuota,
		})
	}
	return out
}

// DesdeVistaPrevia mapea el preview a su respuesta HTTP.
func DesdeVistaPrevia(v *planilla.VistaPrevia) PreviewPlanillaResponse {
	filas := make([]FilaPreviewResponse, 0, len(v.Filas))
	for _, f := range v.Filas {
		filas = append(filas, FilaPreviewResponse{
			Identidad:     f.Identidad,
			Nombre:        f.Nombre,
			Monto:         f.Monto,
			Cuota:         f.CuotaHint,
			Clasificacion: f.Clasificacion,
			CreditoID:     f.CreditoID,
			NumeroCuota:   f.NumeroCuota,
			Esperado:      f.Esperado,
			Diferencia:    f.Diferencia,
		})
	}
	return PreviewPlanillaResponse{
		Archivo:       v.Archivo,
		Fecha:         v.Fecha.Format("2006-01-02"),
		Token:         v.Token,
		Filas:         filas,
		TotalAportado: v.TotalAportado,
		TotalEsperado: v.TotalEsperado,
		Completas:     v.Completas,
		Parciales:     v.Parciales,
		NoEncontradas: v.NoEncontradas,
	}
}

// DesdePlanilla mapea una planilla de dominio a su respuesta HTTP.
func DesdePlanilla(p *entity.Planilla) PlanillaResponse {
	return PlanillaResponse{
		ID:            p.ID,
		Archivo:       p.Archivo,
		Fecha:         p.Fecha.Format("2006-01-02"),
		MontoTotal:    p.MontoTotal,
		Filas:         p.Filas,
		Estado:        string(p.Estado),
		CreadaPor:     p.CreadaPor,
		MotivoAnulado: p.MotivoAnulado,
		AnuladaPor:    p.AnuladaPor,
		AnuladaEn:     p.AnuladaEn,
	}
}
