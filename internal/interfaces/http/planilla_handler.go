package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/leogomez74/credicore/internal/application/dto"
	"github.com/leogomez74/credicore/internal/application/planilla"
	planillafile "github.com/leogomez74/credicore/internal/infrastructure/planilla"
)

// PlanillaHandler maneja la conciliación de planillas en dos fases y su
// anulación.
type PlanillaHandler struct {
	procesador *planilla.Procesador
	anulador   *planilla.Anulador
}

// NewPlanillaHandler construye el handler.
func NewPlanillaHandler(procesador *planilla.Procesador, anulador *planilla.Anulador) *PlanillaHandler {
	return &PlanillaHandler{procesador: procesador, anulador: anulador}
}

// Preview clasifica las filas de una planilla sin aplicar nada y emite el
// token que exige el commit. Acepta el archivo crudo por multipart (campo
// "archivo", campo opcional "fecha") o las filas ya parseadas en JSON.
func (h *PlanillaHandler) Preview(c *fiber.Ctx) error {
	archivo, fecha, filas, err := h.entradaPlanilla(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	vista, err := h.procesador.Preview(c.Context(), archivo, fecha, filas)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DesdeVistaPrevia(vista))
}

// Commit confirma una planilla previamente previsualizada. El token debe
// corresponder exactamente al archivo, fecha y filas del preview; toda la
// planilla entra en una sola transacción o no entra nada.
func (h *PlanillaHandler) Commit(c *fiber.Ctx) error {
	var in dto.CommitPlanillaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	fecha, err := dto.ParseFecha(in.Fecha, time.Now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato yyyy-mm-dd"})
	}

	res, err := h.procesador.Commit(c.Context(), planilla.CommitInput{
		Archivo: in.Archivo,
		Fecha:   fecha,
		Token:   in.Token,
		Filas:   dto.AFilas(in.Filas),
		Usuario: GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CommitPlanillaResponse{
		Planilla:        dto.DesdePlanilla(res.Planilla),
		PagosCreados:    res.PagosCreados,
		SaldosCreados:   res.SaldosCreados,
		CreditosTocados: res.CreditosTocados,
	})
}

// Anular revierte una planilla confirmada (solo rol admin). El motivo es
// obligatorio y queda en el registro de auditoría de la planilla.
func (h *PlanillaHandler) Anular(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AnularPlanillaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	res, err := h.anulador.Anular(c.Context(), planilla.AnularInput{
		PlanillaID: id,
		Motivo:     in.Motivo,
		Usuario:    GetUserID(c),
		Fecha:      time.Now(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AnularPlanillaResponse{
		Planilla:            dto.DesdePlanilla(res.Planilla),
		PagosRevertidos:     res.PagosRevertidos,
		SaldosEliminados:    res.SaldosEliminados,
		CreditosRestaurados: res.CreditosRestaurados,
	})
}

// entradaPlanilla extrae archivo, fecha y filas del preview, sea multipart o
// JSON.
func (h *PlanillaHandler) entradaPlanilla(c *fiber.Ctx) (string, time.Time, []planilla.Fila, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("archivo")
		if err != nil {
			return "", time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "archivo es requerido")
		}
		fecha, err := dto.ParseFecha(c.FormValue("fecha"), time.Now())
		if err != nil {
			return "", time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "fecha inválida, formato yyyy-mm-dd")
		}
		f, err := fh.Open()
		if err != nil {
			return "", time.Time{}, nil, err
		}
		defer f.Close()
		filas, err := planillafile.LeerArchivo(f)
		if err != nil {
			return "", time.Time{}, nil, err
		}
		return fh.Filename, fecha, filas, nil
	}

	var in dto.PreviewPlanillaRequest
	if err := c.BodyParser(&in); err != nil {
		return "", time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido")
	}
	if err := validate.Struct(&in); err != nil {
		return "", time.Time{}, nil, err
	}
	fecha, err := dto.ParseFecha(in.Fecha, time.Now())
	if err != nil {
		return "", time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "fecha inválida, formato yyyy-mm-dd")
	}
	return in.Archivo, fecha, dto.AFilas(in.Filas), nil
}
