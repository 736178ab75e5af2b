package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrCreditoNoFormalizado = errors.New("el crédito no está formalizado")
	ErrPlanYaGenerado       = errors.New("el plan de pagos ya fue generado")
	ErrPlanDesbalanceado    = errors.New("el plan de pagos no cuadra con el principal")
	ErrTransicionInvalida   = errors.New("transición de estado no permitida")
	ErrMontoExcedeSaldo     = errors.New("el monto excede el saldo de cancelación")
	ErrTokenPreview         = errors.New("el token de confirmación no corresponde al preview")
	ErrMotivoRequerido      = errors.New("el motivo de anulación es obligatorio")
	ErrPlanillaAnulada      = errors.New("la planilla ya fue anulada")
	ErrSaldoYaAplicado      = errors.New("el saldo pendiente ya fue aplicado")
)
