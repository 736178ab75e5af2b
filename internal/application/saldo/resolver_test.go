package saldo_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/application/apptest"
	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/application/saldo"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/pkg/logger"
)

var inicio = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nuevoResolver(s *apptest.Store) *saldo.Resolver {
	return saldo.NewResolver(&apptest.TxRunner{S: s}, contabilidad.NewEncolador(true, 3), logger.Nop())
}

func sembrarConSaldo(s *apptest.Store, monto string) *entity.SaldoPendiente {
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	sp := &entity.SaldoPendiente{
		ID:        "sp1",
		CreditoID: "cr1",
		Monto:     dec(monto),
		Estado:    entity.SaldoPendienteActivo,
	}
	s.Saldos[sp.ID] = sp
	return sp
}

func TestAplicarACuota(t *testing.T) {
	s := apptest.NewStore()
	sembrarConSaldo(s, "5000")

	res, err := nuevoResolver(s).Aplicar(context.Background(), saldo.AplicarInput{
		SaldoID: "sp1",
		Destino: entity.DestinoCuota,
		Fecha:   inicio.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.True(t, res.Consumido)
	assert.True(t, res.Restante.IsZero())
	assert.Equal(t, entity.SaldoPendienteAplicado, s.Saldos["sp1"].Estado)

	// El dinero entró por el asignador: la cuota 1 quedó parcial.
	q1 := s.Cuotas["cr1-q1"]
	assert.Equal(t, entity.CuotaParcial, q1.Estado)
	assert.True(t, q1.MontoPagado.Equal(dec("5000")))
	require.NotEmpty(t, res.PagoID)
	require.NotNil(t, s.Pagos[res.PagoID])
}

func TestAplicarACapital(t *testing.T) {
	s := apptest.NewStore()
	sembrarConSaldo(s, "100000")
	saldoAntes := s.Creditos["cr1"].SaldoActual

	res, err := nuevoResolver(s).Aplicar(context.Background(), saldo.AplicarInput{
		SaldoID: "sp1",
		Destino: entity.DestinoCapital,
		Fecha:   inicio.AddDate(0, 0, 10),
	})
	require.NoError(t, err)

	assert.True(t, res.Consumido)
	assert.True(t, s.Creditos["cr1"].SaldoActual.Equal(saldoAntes.Sub(dec("100000"))))
	assert.Equal(t, entity.SaldoPendienteAplicado, s.Saldos["sp1"].Estado)
}

func TestAplicarParcialDejaRemanente(t *testing.T) {
	s := apptest.NewStore()
	sembrarConSaldo(s, "5000")

	res, err := nuevoResolver(s).Aplicar(context.Background(), saldo.AplicarInput{
		SaldoID: "sp1",
		Destino: entity.DestinoCuota,
		Monto:   dec("2000"),
		Fecha:   inicio.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.False(t, res.Consumido)
	assert.True(t, res.Restante.Equal(dec("3000")))
	assert.Equal(t, entity.SaldoPendienteActivo, s.Saldos["sp1"].Estado)
}

func TestAplicarDosVeces(t *testing.T) {
	s := apptest.NewStore()
	sembrarConSaldo(s, "5000")
	uc := nuevoResolver(s)

	in := saldo.AplicarInput{SaldoID: "sp1", Destino: entity.DestinoCuota, Fecha: inicio.AddDate(0, 1, 0)}
	_, err := uc.Aplicar(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.Aplicar(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrSaldoYaAplicado)
}

func TestAplicarSinCreditoRequiereDestino(t *testing.T) {
	s := apptest.NewStore()
	apptest.SembrarCredito(s, apptest.ParamsCredito{
		ID: "cr1", Cedula: "800123456", Principal: "1000000", TasaAnual: "36", Plazo: 12, Inicio: inicio,
	})
	// Saldo de una fila de planilla sin deudor identificado.
	s.Saldos["sp1"] = &entity.SaldoPendiente{
		ID:        "sp1",
		Identidad: "999999999",
		Monto:     dec("5000"),
		Estado:    entity.SaldoPendienteActivo,
	}
	uc := nuevoResolver(s)

	_, err := uc.Aplicar(context.Background(), saldo.AplicarInput{
		SaldoID: "sp1", Destino: entity.DestinoCuota, Fecha: inicio,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Con el crédito indicado por el operador sí procede.
	res, err := uc.Aplicar(context.Background(), saldo.AplicarInput{
		SaldoID: "sp1", Destino: entity.DestinoCuota, CreditoID: "cr1", Fecha: inicio,
	})
	require.NoError(t, err)
	assert.True(t, res.Consumido)
}

func TestAplicarValidaciones(t *testing.T) {
	s := apptest.NewStore()
	sembrarConSaldo(s, "5000")
	uc := nuevoResolver(s)

	_, err := uc.Aplicar(context.Background(), saldo.AplicarInput{SaldoID: "sp1", Destino: "otro", Fecha: inicio})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Aplicar(context.Background(), saldo.AplicarInput{
		SaldoID: "sp1", Destino: entity.DestinoCuota, Monto: dec("9000"), Fecha: inicio,
	})
	assert.ErrorIs(t, err, domain.ErrMontoExcedeSaldo)

	_, err = uc.Aplicar(context.Background(), saldo.AplicarInput{
		SaldoID: "no-existe", Destino: entity.DestinoCuota, Fecha: inicio,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
