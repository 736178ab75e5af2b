package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/domain/entity"
)

func nuevoDespacho() *entity.DespachoContable {
	return &entity.DespachoContable{
		ID:         "d-1",
		TipoEvento: entity.EventoPago,
		Referencia: "pago-1",
		Estado:     entity.DespachoPendiente,
		MaxRetries: 3,
	}
}

// TestMarcarError_EscaleraDeEsperas valida la escalera exacta de reintentos:
// tras el primer error NextRetryAt = ahora+5min, tras el segundo +15min, tras
// el tercero +45min, y agotado el máximo no se programa más.
func TestMarcarError_EscaleraDeEsperas(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	d := nuevoDespacho()

	d.MarcarError("timeout", ahora)
	require.NotNil(t, d.NextRetryAt)
	assert.Equal(t, ahora.Add(5*time.Minute), *d.NextRetryAt)

	require.NoError(t, d.IncrementarReintento(*d.NextRetryAt))
	d.MarcarError("timeout", ahora)
	require.NotNil(t, d.NextRetryAt)
	assert.Equal(t, ahora.Add(15*time.Minute), *d.NextRetryAt)

	require.NoError(t, d.IncrementarReintento(*d.NextRetryAt))
	d.MarcarError("timeout", ahora)
	require.NotNil(t, d.NextRetryAt)
	assert.Equal(t, ahora.Add(45*time.Minute), *d.NextRetryAt)

	require.NoError(t, d.IncrementarReintento(*d.NextRetryAt))
	d.MarcarError("timeout", ahora)
	assert.Nil(t, d.NextRetryAt, "al agotar MaxRetries no se programa otro reintento")
	assert.Equal(t, entity.DespachoError, d.Estado)
}

// TestMarcarError_MaxRetriesSobreEscalera con más reintentos configurados que
// pasos en la escalera, los adicionales repiten la última espera en vez de
// quedar en error sin programación.
func TestMarcarError_MaxRetriesSobreEscalera(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	d := nuevoDespacho()
	d.MaxRetries = 5
	d.RetryCount = 4

	d.MarcarError("timeout", ahora)
	require.NotNil(t, d.NextRetryAt)
	assert.Equal(t, ahora.Add(45*time.Minute), *d.NextRetryAt)
	assert.True(t, d.ListoParaReintento(ahora.Add(45*time.Minute)))

	require.NoError(t, d.IncrementarReintento(*d.NextRetryAt))
	d.MarcarError("timeout", ahora)
	assert.Nil(t, d.NextRetryAt)
}

func TestIncrementarReintento_SoloDesdeError(t *testing.T) {
	d := nuevoDespacho()
	err := d.IncrementarReintento(time.Now())
	assert.Error(t, err, "desde pendiente no se incrementa")

	d.MarcarExitoso("ext-9", "ok", time.Now())
	assert.Error(t, d.IncrementarReintento(time.Now()), "exitoso es terminal")
}

func TestIncrementarReintento_AgotadoEsPermanente(t *testing.T) {
	d := nuevoDespacho()
	d.RetryCount = 3
	d.MarcarError("sin respuesta", time.Now())
	assert.Error(t, d.IncrementarReintento(time.Now()))
	assert.Nil(t, d.NextRetryAt)
}

func TestListoParaReintento(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	d := nuevoDespacho()
	d.MarcarError("timeout", ahora)

	assert.False(t, d.ListoParaReintento(ahora.Add(4*time.Minute)))
	assert.True(t, d.ListoParaReintento(ahora.Add(5*time.Minute)))

	d.MarcarOmitido("sin mapeo contable", ahora)
	assert.False(t, d.ListoParaReintento(ahora.Add(time.Hour)), "omitido nunca se reintenta")
}
