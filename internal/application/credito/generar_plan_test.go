package credito_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/application/apptest"
	"github.com/leogomez74/credicore/internal/application/credito"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/pkg/logger"
)

var inicio = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nuevoPlanificador(s *apptest.Store) *credito.Planificador {
	r := s.Repos()
	return credito.NewPlanificador(&apptest.TxRunner{S: s}, r.Cuotas, r.Creditos, logger.Nop())
}

func sembrarSinPlan(s *apptest.Store) *entity.Credito {
	c := &entity.Credito{
		ID:          "cr1",
		ClienteID:   "cliente-cr1",
		Cedula:      "800123456",
		Monto:       dec("1000000"),
		TasaAnual:   dec("36"),
		PlazoMeses:  12,
		Estado:      entity.CreditoFormalizado,
		FechaInicio: inicio,
	}
	s.Creditos[c.ID] = c
	return c
}

func TestGenerarPlanCompleto(t *testing.T) {
	s := apptest.NewStore()
	sembrarSinPlan(s)

	plan, generado, err := nuevoPlanificador(s).Generar(context.Background(), "cr1")
	require.NoError(t, err)
	assert.True(t, generado)
	require.Len(t, plan, 13) // fila 0 + 12 cuotas

	assert.Equal(t, 0, plan[0].Numero)
	assert.Equal(t, entity.CuotaPagado, plan[0].Estado)
	assert.True(t, plan[0].SaldoInicial.Equal(dec("1000000")))

	q1 := plan[1]
	assert.True(t, q1.CuotaTotal.Equal(dec("100462.09")), "cuota: %s", q1.CuotaTotal)
	assert.True(t, q1.InteresCorriente.Equal(dec("30000.00")))
	assert.True(t, q1.Amortizacion.Equal(dec("70462.09")))
	assert.True(t, plan[12].SaldoFinal.IsZero())

	assert.True(t, s.Creditos["cr1"].SaldoActual.Equal(dec("1000000")))
}

func TestGenerarPlanEsUnicoPorCredito(t *testing.T) {
	s := apptest.NewStore()
	sembrarSinPlan(s)
	uc := nuevoPlanificador(s)

	_, generado, err := uc.Generar(context.Background(), "cr1")
	require.NoError(t, err)
	require.True(t, generado)

	// La segunda invocación es un no-op que devuelve el plan existente.
	plan, generado, err := uc.Generar(context.Background(), "cr1")
	require.NoError(t, err)
	assert.False(t, generado)
	assert.Len(t, plan, 13)
	assert.Len(t, s.Cuotas, 13)
}

func TestGenerarPlanRequiereFormalizado(t *testing.T) {
	s := apptest.NewStore()
	c := sembrarSinPlan(s)
	require.NoError(t, c.Transicionar(entity.CreditoEnMora))

	_, _, err := nuevoPlanificador(s).Generar(context.Background(), "cr1")
	assert.ErrorIs(t, err, domain.ErrCreditoNoFormalizado)
}
