package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

func TestCredito_Transicionar(t *testing.T) {
	c := &entity.Credito{Estado: entity.CreditoFormalizado}

	assert.NoError(t, c.Transicionar(entity.CreditoEnMora))
	assert.NoError(t, c.Transicionar(entity.CreditoFormalizado), "la mora se puede sanear")
	assert.NoError(t, c.Transicionar(entity.CreditoCancelado))

	err := c.Transicionar(entity.CreditoFormalizado)
	assert.ErrorIs(t, err, domain.ErrTransicionInvalida, "Cancelado es terminal")
	assert.Equal(t, entity.CreditoCancelado, c.Estado)
}

func TestCuota_Transicionar(t *testing.T) {
	q := &entity.Cuota{Estado: entity.CuotaPendiente}

	assert.NoError(t, q.Transicionar(entity.CuotaMora))
	assert.NoError(t, q.Transicionar(entity.CuotaParcial))
	assert.NoError(t, q.Transicionar(entity.CuotaPagado))

	assert.ErrorIs(t, q.Transicionar(entity.CuotaParcial), domain.ErrTransicionInvalida,
		"una cuota pagada nunca regresa")
}

func TestCuota_SaldoPendienteYResuelta(t *testing.T) {
	q := &entity.Cuota{
		Numero:           1,
		InteresCorriente: decimal.NewFromInt(200),
		Amortizacion:     decimal.NewFromInt(100),
		Estado:           entity.CuotaPendiente,
	}
	assert.Equal(t, "300.00", q.SaldoPendiente().StringFixed(2))
	assert.False(t, q.Resuelta())

	q.InteresCorriente = decimal.Zero
	q.Amortizacion = decimal.Zero
	assert.True(t, q.Resuelta())
}

func TestCuota_Vencida(t *testing.T) {
	hoy := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	q := &entity.Cuota{Numero: 1, FechaVencimiento: hoy.AddDate(0, 0, -3), Estado: entity.CuotaPendiente}
	assert.True(t, q.Vencida(hoy))

	q.Estado = entity.CuotaPagado
	assert.False(t, q.Vencida(hoy))

	inicial := &entity.Cuota{Numero: 0, FechaVencimiento: hoy.AddDate(0, -1, 0)}
	assert.False(t, inicial.Vencida(hoy), "la fila 0 no participa")
}
