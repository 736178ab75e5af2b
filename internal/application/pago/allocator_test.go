package pago_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/application/apptest"
	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/pago"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/pkg/logger"
)

var inicio = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func nuevoAsignador(s *apptest.Store) *pago.Asignador {
	return pago.NewAsignador(&apptest.TxRunner{S: s}, contabilidad.NewEncolador(true, 3), logger.Nop())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPagarPrioridadDeRubros(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	q1 := s.Cuotas["cr1-q1"]
	q1.InteresMoratorio = dec("50")
	q1.InteresVencido = dec("100")

	res, err := nuevoAsignador(s).Pagar(context.Background(), pago.AsignarInput{
		CreditoID: "cr1", Monto: dec("150"), Fecha: inicio.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	require.Len(t, res.Pago.Detalles, 1)
	d := res.Pago.Detalles[0]
	assert.True(t, d.InteresMoratorio.Equal(dec("50")), "primero el moratorio: %s", d.InteresMoratorio)
	assert.True(t, d.InteresVencido.Equal(dec("100")), "luego el vencido: %s", d.InteresVencido)
	assert.True(t, d.InteresCorriente.IsZero(), "el corriente no se toca: %s", d.InteresCorriente)
	assert.True(t, d.Amortizacion.IsZero())

	assert.True(t, q1.InteresMoratorio.IsZero())
	assert.True(t, q1.InteresVencido.IsZero())
	assert.True(t, q1.InteresCorriente.Equal(dec("30000.00")))
	assert.Equal(t, entity.CuotaParcial, q1.Estado)
}

func TestPagarCascadaEntreCuotas(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	q1 := s.Cuotas["cr1-q1"]

	monto := q1.SaldoPendiente().Add(dec("200")) // cuota 1 completa + 200 de la 2
	res, err := nuevoAsignador(s).Pagar(context.Background(), pago.AsignarInput{
		CreditoID: "cr1", Monto: monto, Fecha: inicio.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	require.Len(t, res.Pago.Detalles, 2)
	assert.Equal(t, 1, res.Pago.Detalles[0].NumeroCuota)
	assert.Equal(t, 2, res.Pago.Detalles[1].NumeroCuota)
	assert.True(t, res.Pago.Detalles[1].Total().Equal(dec("200")))
	assert.Equal(t, 1, res.CuotasPagadas)
	assert.Equal(t, entity.CuotaPagado, q1.Estado)
	assert.Equal(t, entity.CuotaParcial, s.Cuotas["cr1-q2"].Estado)

	// El desglose cierra exacto contra el monto: sin fugas ni doble conteo.
	assert.True(t, res.Pago.TotalAsignado().Equal(monto))
	assert.Nil(t, res.SaldoPendiente)

	// El capital pagado baja el saldo del crédito.
	saldo := s.Creditos["cr1"].SaldoActual
	assert.True(t, saldo.Equal(dec("1000000").Sub(dec("70462.09"))), "saldo: %s", saldo)
}

func TestPagarExcedenteCreaSaldoPendiente(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "300", TasaAnual: "0", Plazo: 1, Inicio: inicio,
	})

	res, err := nuevoAsignador(s).Pagar(context.Background(), pago.AsignarInput{
		CreditoID: "cr1", Monto: dec("500"), Fecha: inicio.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.CuotaPagado, s.Cuotas["cr1-q1"].Estado)
	require.NotNil(t, res.SaldoPendiente)
	assert.True(t, res.SaldoPendiente.Monto.Equal(dec("200")), "excedente: %s", res.SaldoPendiente.Monto)
	assert.Equal(t, "cr1", res.SaldoPendiente.CreditoID)
	assert.Equal(t, entity.SaldoPendienteActivo, res.SaldoPendiente.Estado)
}

func TestPagarTotalCierraElCredito(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})

	total := decimal.Zero
	for _, q := range s.Cuotas {
		if q.Numero >= 1 {
			total = total.Add(q.SaldoPendiente())
		}
	}

	res, err := nuevoAsignador(s).Pagar(context.Background(), pago.AsignarInput{
		CreditoID: "cr1", Monto: total, Fecha: inicio.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.True(t, res.CreditoCerrado)
	assert.Equal(t, 12, res.CuotasPagadas)
	assert.Equal(t, entity.CreditoCancelado, s.Creditos["cr1"].Estado)
	assert.True(t, s.Creditos["cr1"].SaldoActual.IsZero())
	assert.Nil(t, res.SaldoPendiente)
	for _, q := range s.Cuotas {
		assert.Equal(t, entity.CuotaPagado, q.Estado, "cuota %d", q.Numero)
	}
}

func TestPagarCuotasObjetivoExplicitas(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	q3 := s.Cuotas["cr1-q3"]

	res, err := nuevoAsignador(s).Pagar(context.Background(), pago.AsignarInput{
		CreditoID:      "cr1",
		Monto:          q3.SaldoPendiente(),
		Fecha:          inicio.AddDate(0, 1, 0),
		CuotasObjetivo: []int{3},
	})
	require.NoError(t, err)

	require.Len(t, res.Pago.Detalles, 1)
	assert.Equal(t, 3, res.Pago.Detalles[0].NumeroCuota)
	assert.Equal(t, entity.CuotaPagado, q3.Estado)
	assert.Equal(t, entity.CuotaPendiente, s.Cuotas["cr1-q1"].Estado)
}

func TestPagarAtomicidad(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	boom := errors.New("falla inyectada")
	s.FailPagoCreate = boom

	_, err := nuevoAsignador(s).Pagar(context.Background(), pago.AsignarInput{
		CreditoID: "cr1", Monto: dec("100462.09"), Fecha: inicio.AddDate(0, 1, 0),
	})
	require.ErrorIs(t, err, boom)

	// Rollback completo: nada quedó a medias.
	assert.Empty(t, s.Pagos)
	assert.Empty(t, s.Despachos)
	q1 := s.Cuotas["cr1-q1"]
	assert.Equal(t, entity.CuotaPendiente, q1.Estado)
	assert.True(t, q1.MontoPagado.IsZero())
	assert.True(t, s.Creditos["cr1"].SaldoActual.Equal(dec("1000000")))
}

func TestPagarEncolaDespacho(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})

	res, err := nuevoAsignador(s).Pagar(context.Background(), pago.AsignarInput{
		CreditoID: "cr1", Monto: dec("1000"), Fecha: inicio.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	require.Len(t, s.Despachos, 1)
	for _, d := range s.Despachos {
		assert.Equal(t, entity.EventoPago, d.TipoEvento)
		assert.Equal(t, res.Pago.ID, d.Referencia)
		assert.Equal(t, entity.DespachoPendiente, d.Estado)
	}
}

func TestPagarValidaciones(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	uc := nuevoAsignador(s)

	_, err := uc.Pagar(context.Background(), pago.AsignarInput{CreditoID: "cr1", Monto: decimal.Zero, Fecha: inicio})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Pagar(context.Background(), pago.AsignarInput{CreditoID: "no-existe", Monto: dec("100"), Fecha: inicio})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Creditos["cr1"].Transicionar(entity.CreditoCancelado))
	_, err = uc.Pagar(context.Background(), pago.AsignarInput{CreditoID: "cr1", Monto: dec("100"), Fecha: inicio})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
