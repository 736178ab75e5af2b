package credito_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/application/apptest"
	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/credito"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/pkg/logger"
)

func nuevoCancelador(s *apptest.Store, umbral int) *credito.Cancelador {
	return credito.NewCancelador(&apptest.TxRunner{S: s}, contabilidad.NewEncolador(true, 3), umbral, 3, logger.Nop())
}

func sembrarParaCancelar(s *apptest.Store) *entity.Credito {
	return apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
}

func TestCotizarConPenalizacion(t *testing.T) {
	s := apptest.NewStore()
	sembrarParaCancelar(s)

	// 15 días corridos del primer período, antes del umbral de 12 cuotas.
	fecha := inicio.AddDate(0, 0, 15)
	cot, err := nuevoCancelador(s, 12).Cotizar(context.Background(), "cr1", fecha)
	require.NoError(t, err)

	assert.Equal(t, 1, cot.CuotaReferencia)
	assert.True(t, cot.Capital.Equal(dec("1000000")))
	// 1000000 · 3% · 15/30 = 15000
	assert.True(t, cot.InteresProrrata.Equal(dec("15000.00")), "prorrata: %s", cot.InteresProrrata)
	assert.True(t, cot.AplicaPenalizacion)
	// 3 cuotas de interés: 3 · 1000000 · 3% = 90000
	assert.True(t, cot.Penalizacion.Equal(dec("90000.00")), "penalización: %s", cot.Penalizacion)
	assert.True(t, cot.Atrasos.IsZero())
	assert.True(t, cot.Total.Equal(dec("1105000.00")), "total: %s", cot.Total)
}

func TestCotizarSinPenalizacion(t *testing.T) {
	s := apptest.NewStore()
	sembrarParaCancelar(s)

	// Con umbral 1 la cuota de referencia ya no está antes del umbral.
	cot, err := nuevoCancelador(s, 1).Cotizar(context.Background(), "cr1", inicio.AddDate(0, 0, 15))
	require.NoError(t, err)

	assert.False(t, cot.AplicaPenalizacion)
	assert.True(t, cot.Penalizacion.IsZero())
	assert.True(t, cot.Total.Equal(dec("1015000.00")), "total: %s", cot.Total)
}

func TestCotizarIncluyeAtrasos(t *testing.T) {
	s := apptest.NewStore()
	sembrarParaCancelar(s)

	// Con la cuota 1 vencida y sin pagar, la cotización arrastra su pendiente
	// completo y el capital pasa a ser el saldo inicial de la cuota 2.
	fecha := inicio.AddDate(0, 1, 10)
	cot, err := nuevoCancelador(s, 12).Cotizar(context.Background(), "cr1", fecha)
	require.NoError(t, err)

	q1 := s.Cuotas["cr1-q1"]
	q2 := s.Cuotas["cr1-q2"]
	assert.Equal(t, 2, cot.CuotaReferencia)
	assert.True(t, cot.Atrasos.Equal(q1.SaldoPendiente()))
	assert.True(t, cot.Capital.Equal(q2.SaldoInicial))
}

func TestCancelarCierraElCredito(t *testing.T) {
	s := apptest.NewStore()
	sembrarParaCancelar(s)
	uc := nuevoCancelador(s, 12)

	fecha := inicio.AddDate(0, 0, 15)
	cot, err := uc.Cotizar(context.Background(), "cr1", fecha)
	require.NoError(t, err)

	cotFinal, res, err := uc.Cancelar(context.Background(), "cr1", cot.Total, fecha)
	require.NoError(t, err)

	assert.True(t, cotFinal.Total.Equal(cot.Total))
	assert.True(t, res.CreditoCerrado)
	assert.Equal(t, entity.CreditoCancelado, s.Creditos["cr1"].Estado)
	assert.True(t, s.Creditos["cr1"].SaldoActual.IsZero())
	assert.Nil(t, res.SaldoPendiente, "la liquidación no deja excedente")

	// Las cuotas futuras colapsaron en una sola de liquidación, ya pagada.
	for _, q := range s.Cuotas {
		if q.Numero >= 1 {
			assert.Equal(t, entity.CuotaPagado, q.Estado, "cuota %d", q.Numero)
		}
	}

	// El despacho de cancelación quedó encolado.
	encontrado := false
	for _, d := range s.Despachos {
		if d.TipoEvento == entity.EventoCancelacion {
			encontrado = true
		}
	}
	assert.True(t, encontrado)
}

func TestCancelarRechazaMontoDistinto(t *testing.T) {
	s := apptest.NewStore()
	sembrarParaCancelar(s)
	uc := nuevoCancelador(s, 12)

	fecha := inicio.AddDate(0, 0, 15)
	_, _, err := uc.Cancelar(context.Background(), "cr1", dec("999999"), fecha)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// Nada quedó mutado: el plan sigue con sus 12 cuotas pendientes.
	assert.Equal(t, entity.CreditoFormalizado, s.Creditos["cr1"].Estado)
	assert.Len(t, s.Cuotas, 13)
	assert.Empty(t, s.Pagos)
}

func TestCancelarCreditoYaCancelado(t *testing.T) {
	s := apptest.NewStore()
	c := sembrarParaCancelar(s)
	require.NoError(t, c.Transicionar(entity.CreditoCancelado))

	_, err := nuevoCancelador(s, 12).Cotizar(context.Background(), "cr1", inicio.AddDate(0, 0, 15))
	assert.ErrorIs(t, err, domain.ErrConflict)
}
