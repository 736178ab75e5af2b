package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leogomez74/credicore/internal/application/dto"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

// DespachoHandler expone la bitácora de despachos contables. Filtrada por
// estado=error sirve como la cola que revisa el operador.
type DespachoHandler struct {
	despachos repository.DespachoRepository
}

// NewDespachoHandler construye el handler.
func NewDespachoHandler(despachos repository.DespachoRepository) *DespachoHandler {
	return &DespachoHandler{despachos: despachos}
}

// Listar devuelve los despachos por estado con paginación.
func (h *DespachoHandler) Listar(c *fiber.Ctx) error {
	estado := entity.EstadoDespacho(c.Query("estado", string(entity.DespachoError)))
	switch estado {
	case entity.DespachoPendiente, entity.DespachoExitoso, entity.DespachoError, entity.DespachoOmitido:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado inválido"})
	}

	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()

	despachos, err := h.despachos.ListByEstado(estado, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.DespachoResponse, 0, len(despachos))
	for _, d := range despachos {
		items = append(items, dto.DesdeDespacho(d))
	}
	return c.JSON(dto.DespachoListResponse{Items: items, Limit: page.Limit, Offset: page.Offset})
}
