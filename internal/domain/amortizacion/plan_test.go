package amortizacion_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/domain/amortizacion"
)

var inicio = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

// TestGenerar_Escenario1M valida el plan de referencia: 1.000.000 al 36% anual
// a 12 meses. A = P·i·(1+i)^n/((1+i)^n−1) con i = 0.03 da 100462.09; el interés
// del primer período es exactamente 30000.00.
func TestGenerar_Escenario1M(t *testing.T) {
	filas, err := amortizacion.Generar(amortizacion.Parametros{
		Principal:   decimal.NewFromInt(1_000_000),
		TasaAnual:   decimal.NewFromInt(36),
		Plazo:       12,
		FechaInicio: inicio,
	})
	require.NoError(t, err)
	require.Len(t, filas, 12)

	assert.Equal(t, "100462.09", filas[0].Cuota.StringFixed(2))
	assert.Equal(t, "30000.00", filas[0].Interes.StringFixed(2))
	assert.Equal(t, "70462.09", filas[0].Amortizacion.StringFixed(2))
	assert.Equal(t, "929537.91", filas[0].SaldoFinal.StringFixed(2))

	// La suma de amortizaciones cierra al centavo contra el principal y el
	// saldo final de la última fila es exactamente cero.
	suma := decimal.Zero
	for _, f := range filas {
		suma = suma.Add(f.Amortizacion)
		assert.False(t, f.SaldoFinal.IsNegative(), "cuota %d: saldo negativo", f.Numero)
	}
	assert.Equal(t, "1000000.00", suma.StringFixed(2))
	assert.True(t, filas[11].SaldoFinal.IsZero())

	// Vencimientos mensuales a partir de la fecha de inicio.
	assert.Equal(t, inicio.AddDate(0, 1, 0), filas[0].FechaVencimiento)
	assert.Equal(t, inicio.AddDate(0, 12, 0), filas[11].FechaVencimiento)
}

func TestGenerar_TasaCero(t *testing.T) {
	filas, err := amortizacion.Generar(amortizacion.Parametros{
		Principal:   decimal.NewFromInt(1200),
		TasaAnual:   decimal.Zero,
		Plazo:       12,
		FechaInicio: inicio,
	})
	require.NoError(t, err)
	require.Len(t, filas, 12)
	for _, f := range filas {
		assert.True(t, f.Interes.IsZero())
		assert.Equal(t, "100.00", f.Amortizacion.StringFixed(2))
	}
	assert.True(t, filas[11].SaldoFinal.IsZero())
}

// TestGenerar_UltimaFilaAbsorbeRedondeo usa un principal que no divide limpio
// para forzar corrimiento de centavos: solo la última fila lo absorbe.
func TestGenerar_UltimaFilaAbsorbeRedondeo(t *testing.T) {
	filas, err := amortizacion.Generar(amortizacion.Parametros{
		Principal:   decimal.NewFromFloat(999_999.99),
		TasaAnual:   decimal.NewFromFloat(23.5),
		Plazo:       7,
		FechaInicio: inicio,
	})
	require.NoError(t, err)
	suma := decimal.Zero
	for _, f := range filas {
		suma = suma.Add(f.Amortizacion)
	}
	assert.Equal(t, "999999.99", suma.StringFixed(2))
	assert.True(t, filas[len(filas)-1].SaldoFinal.IsZero())
}

func TestGenerar_ParametrosInvalidos(t *testing.T) {
	_, err := amortizacion.Generar(amortizacion.Parametros{
		Principal: decimal.Zero, TasaAnual: decimal.NewFromInt(36), Plazo: 12, FechaInicio: inicio,
	})
	assert.ErrorIs(t, err, amortizacion.ErrParametros)

	_, err = amortizacion.Generar(amortizacion.Parametros{
		Principal: decimal.NewFromInt(1000), TasaAnual: decimal.NewFromInt(36), Plazo: 0, FechaInicio: inicio,
	})
	assert.ErrorIs(t, err, amortizacion.ErrParametros)
}

func TestPeriodosParaAmortizar(t *testing.T) {
	i := amortizacion.TasaMensual(decimal.NewFromInt(36)) // 0.03

	// Con la cuota fija original de 1M/36%/12, el principal completo toma los 12 períodos.
	cuota := amortizacion.CuotaFija(decimal.NewFromInt(1_000_000), i, 12)
	n, err := amortizacion.PeriodosParaAmortizar(decimal.NewFromInt(1_000_000), i, cuota)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	// Reducido el principal a la mitad, la misma cuota lo amortiza en menos períodos.
	n, err = amortizacion.PeriodosParaAmortizar(decimal.NewFromInt(500_000), i, cuota)
	require.NoError(t, err)
	assert.Less(t, n, 12)
	assert.Greater(t, n, 0)

	// Una cuota que no cubre el interés del período nunca amortiza.
	_, err = amortizacion.PeriodosParaAmortizar(decimal.NewFromInt(1_000_000), i, decimal.NewFromInt(30_000))
	assert.ErrorIs(t, err, amortizacion.ErrCuotaInsuficiente)
}

func TestPeriodosParaAmortizar_TasaCero(t *testing.T) {
	n, err := amortizacion.PeriodosParaAmortizar(decimal.NewFromInt(1000), decimal.Zero, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestInteresAcumulado(t *testing.T) {
	i := amortizacion.TasaMensual(decimal.NewFromInt(36))
	// 15 días sobre 1.000.000 al 3% mensual: 30000 · 15/30 = 15000.
	got := amortizacion.InteresAcumulado(decimal.NewFromInt(1_000_000), i, 15)
	assert.Equal(t, "15000.00", got.StringFixed(2))
	assert.True(t, amortizacion.InteresAcumulado(decimal.NewFromInt(1_000_000), i, 0).IsZero())
}
