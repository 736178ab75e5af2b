package planilla_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/application/apptest"
	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/planilla"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/pkg/logger"
)

var inicio = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nuevoProcesador(s *apptest.Store) *planilla.Procesador {
	r := s.Repos()
	return planilla.NewProcesador(&apptest.TxRunner{S: s}, r.Creditos, r.Cuotas, contabilidad.NewEncolador(true, 3), logger.Nop())
}

func sembrarDeudores(s *apptest.Store) {
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr2", Cedula: "800654321", Principal: "500000", TasaAnual: "24", Plazo: 6, Inicio: inicio,
	})
}

func filasEjemplo(s *apptest.Store) []planilla.Fila {
	return []planilla.Fila{
		{Identidad: "8-00123456", Nombre: "Deudor Uno", Monto: s.Cuotas["cr1-q1"].SaldoPendiente()},
		{Identidad: "800654321", Nombre: "Deudor Dos", Monto: dec("1000")},
		{Identidad: "999999999", Nombre: "Desconocido", Monto: dec("5000")},
	}
}

func TestPreviewClasificaFilas(t *testing.T) {
	s := apptest.NewStore()
	sembrarDeudores(s)
	fecha := inicio.AddDate(0, 1, 0)

	vista, err := nuevoProcesador(s).Preview(context.Background(), "planilla-feb.csv", fecha, filasEjemplo(s))
	require.NoError(t, err)

	require.Len(t, vista.Filas, 3)
	assert.Equal(t, entity.FilaCompleto, vista.Filas[0].Clasificacion)
	assert.Equal(t, "cr1", vista.Filas[0].CreditoID)
	assert.Equal(t, 1, vista.Filas[0].NumeroCuota)
	assert.True(t, vista.Filas[0].Diferencia.IsZero())

	assert.Equal(t, entity.FilaParcial, vista.Filas[1].Clasificacion)
	assert.True(t, vista.Filas[1].Diferencia.IsNegative())

	assert.Equal(t, entity.FilaNoEncontrado, vista.Filas[2].Clasificacion)
	assert.Empty(t, vista.Filas[2].CreditoID)

	assert.Equal(t, 1, vista.Completas)
	assert.Equal(t, 1, vista.Parciales)
	assert.Equal(t, 1, vista.NoEncontradas)
	assert.NotEmpty(t, vista.Token)

	// El preview no muta nada.
	assert.Empty(t, s.Pagos)
	assert.Empty(t, s.Planillas)
	assert.Equal(t, entity.CuotaPendiente, s.Cuotas["cr1-q1"].Estado)
}

func TestPreviewRechazaMontoNoPositivo(t *testing.T) {
	s := apptest.NewStore()
	sembrarDeudores(s)
	fecha := inicio.AddDate(0, 1, 0)

	filas := []planilla.Fila{
		{Identidad: "800123456", Monto: dec("1000")},
		{Identidad: "800654321", Monto: decimal.Zero},
	}
	_, err := nuevoProcesador(s).Preview(context.Background(), "planilla-feb.csv", fecha, filas)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "fila 2")

	filas[1].Monto = dec("-50")
	_, err = nuevoProcesador(s).Preview(context.Background(), "planilla-feb.csv", fecha, filas)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPreviewTokenSensibleAlContenido(t *testing.T) {
	s := apptest.NewStore()
	sembrarDeudores(s)
	fecha := inicio.AddDate(0, 1, 0)
	filas := filasEjemplo(s)

	a := planilla.TokenPlanilla("planilla-feb.csv", fecha, filas)
	assert.Equal(t, a, planilla.TokenPlanilla("planilla-feb.csv", fecha, filas))

	filas[1].Monto = filas[1].Monto.Add(dec("0.01"))
	assert.NotEqual(t, a, planilla.TokenPlanilla("planilla-feb.csv", fecha, filas))
	assert.NotEqual(t, a, planilla.TokenPlanilla("planilla-feb.csv", fecha.AddDate(0, 0, 1), filasEjemplo(s)))
}

func TestCommitAplicaPlanillaCompleta(t *testing.T) {
	s := apptest.NewStore()
	sembrarDeudores(s)
	fecha := inicio.AddDate(0, 1, 0)
	filas := filasEjemplo(s)
	uc := nuevoProcesador(s)

	res, err := uc.Commit(context.Background(), planilla.CommitInput{
		Archivo: "planilla-feb.csv",
		Fecha:   fecha,
		Token:   planilla.TokenPlanilla("planilla-feb.csv", fecha, filas),
		Filas:   filas,
		Usuario: "operador1",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.PagosCreados)
	assert.Equal(t, 1, res.SaldosCreados) // la fila sin deudor
	assert.Equal(t, 2, res.CreditosTocados)
	assert.Equal(t, entity.PlanillaActiva, res.Planilla.Estado)
	assert.Equal(t, "operador1", res.Planilla.CreadaPor)

	// La cuota completa quedó pagada; la parcial, parcial.
	assert.Equal(t, entity.CuotaPagado, s.Cuotas["cr1-q1"].Estado)
	assert.Equal(t, entity.CuotaParcial, s.Cuotas["cr2-q1"].Estado)

	// La fila no encontrada quedó como saldo pendiente identificado.
	var sinDeudor *entity.SaldoPendiente
	for _, sp := range s.Saldos {
		if sp.Identidad == "999999999" {
			sinDeudor = sp
		}
	}
	require.NotNil(t, sinDeudor)
	assert.True(t, sinDeudor.Monto.Equal(dec("5000")))
	assert.Empty(t, sinDeudor.CreditoID)
	assert.Equal(t, res.Planilla.ID, sinDeudor.PlanillaID)

	// Un solo despacho por la planilla completa.
	require.Len(t, s.Despachos, 1)
	for _, d := range s.Despachos {
		assert.Equal(t, entity.EventoPlanilla, d.TipoEvento)
		assert.Equal(t, res.Planilla.ID, d.Referencia)
	}
}

func TestCommitRechazaTokenAjeno(t *testing.T) {
	s := apptest.NewStore()
	sembrarDeudores(s)
	fecha := inicio.AddDate(0, 1, 0)
	filas := filasEjemplo(s)

	_, err := nuevoProcesador(s).Commit(context.Background(), planilla.CommitInput{
		Archivo: "planilla-feb.csv",
		Fecha:   fecha,
		Token:   "token-inventado",
		Filas:   filas,
		Usuario: "operador1",
	})
	assert.ErrorIs(t, err, domain.ErrTokenPreview)

	// Cambiar las filas después del preview también invalida el token.
	token := planilla.TokenPlanilla("planilla-feb.csv", fecha, filas)
	filas[0].Monto = filas[0].Monto.Add(dec("1"))
	_, err = nuevoProcesador(s).Commit(context.Background(), planilla.CommitInput{
		Archivo: "planilla-feb.csv", Fecha: fecha, Token: token, Filas: filas, Usuario: "operador1",
	})
	assert.ErrorIs(t, err, domain.ErrTokenPreview)
	assert.Empty(t, s.Planillas)
}

func TestCommitRechazaDobleCommit(t *testing.T) {
	s := apptest.NewStore()
	sembrarDeudores(s)
	fecha := inicio.AddDate(0, 1, 0)
	uc := nuevoProcesador(s)

	filas := []planilla.Fila{{Identidad: "800123456", Monto: dec("1000")}}
	in := planilla.CommitInput{
		Archivo: "planilla-feb.csv",
		Fecha:   fecha,
		Token:   planilla.TokenPlanilla("planilla-feb.csv", fecha, filas),
		Filas:   filas,
		Usuario: "operador1",
	}
	_, err := uc.Commit(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.Commit(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, s.Planillas, 1)
	assert.Len(t, s.Pagos, 1)
}

func TestCommitAtomico(t *testing.T) {
	s := apptest.NewStore()
	sembrarDeudores(s)
	fecha := inicio.AddDate(0, 1, 0)

	// La fila inválida está al final: las anteriores ya se habrían aplicado.
	filas := []planilla.Fila{
		{Identidad: "800123456", Monto: dec("1000")},
		{Identidad: "800654321", Monto: decimal.Zero},
	}
	_, err := nuevoProcesador(s).Commit(context.Background(), planilla.CommitInput{
		Archivo: "planilla-feb.csv",
		Fecha:   fecha,
		Token:   planilla.TokenPlanilla("planilla-feb.csv", fecha, filas),
		Filas:   filas,
		Usuario: "operador1",
	})
	require.Error(t, err)

	// Rollback total: ni planilla, ni pagos, ni cuotas tocadas.
	assert.Empty(t, s.Planillas)
	assert.Empty(t, s.Pagos)
	assert.True(t, s.Cuotas["cr1-q1"].MontoPagado.IsZero())
}
