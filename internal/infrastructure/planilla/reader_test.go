package planilla

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leogomez74/credicore/internal/domain"
)

func TestLeerArchivoUTF8(t *testing.T) {
	archivo := strings.Join([]string{
		"identidad;nombre;monto;cuota",
		"8-00123456;Ana Rojas;100462.09;1",
		"800654321;;1000.00;",
		"999999999;5000.00",
	}, "\n")

	filas, err := LeerArchivo(strings.NewReader(archivo))
	require.NoError(t, err)
	require.Len(t, filas, 3)

	assert.Equal(t, "8-00123456", filas[0].Identidad)
	assert.Equal(t, "Ana Rojas", filas[0].Nombre)
	assert.Equal(t, "100462.09", filas[0].Monto.StringFixed(2))
	assert.Equal(t, 1, filas[0].CuotaHint)

	assert.Equal(t, "1000.00", filas[1].Monto.StringFixed(2))
	assert.Equal(t, 0, filas[1].CuotaHint)

	assert.Equal(t, "999999999", filas[2].Identidad)
	assert.Equal(t, "5000.00", filas[2].Monto.StringFixed(2))
}

func TestLeerArchivoISO88591(t *testing.T) {
	// "María Núñez" en Latin-1: bytes fuera de UTF-8 válido.
	var b bytes.Buffer
	b.WriteString("800123456;Mar\xeda N\xfa\xf1ez;1500.50\n")

	filas, err := LeerArchivo(&b)
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "María Núñez", filas[0].Nombre)
	assert.Equal(t, "1500.50", filas[0].Monto.StringFixed(2))
}

func TestLeerArchivoMontoConComaDecimal(t *testing.T) {
	filas, err := LeerArchivo(strings.NewReader("800123456;1.234,56\n"))
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "1234.56", filas[0].Monto.StringFixed(2))
}

func TestLeerArchivoTresCamposConHint(t *testing.T) {
	filas, err := LeerArchivo(strings.NewReader("800123456;1000.00;3\n"))
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, 3, filas[0].CuotaHint)
	assert.Empty(t, filas[0].Nombre)
}

func TestLeerArchivoInvalido(t *testing.T) {
	casos := []struct {
		nombre  string
		archivo string
	}{
		{"vacío", ""},
		{"solo encabezado", "identidad;monto\n"},
		{"monto no numérico", "800123456;abc\n"},
		{"hint no numérico", "800123456;1000.00;x\n"},
		{"sin identidad", ";1000.00\n"},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := LeerArchivo(strings.NewReader(c.archivo))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLeerArchivoIgnoraFilasVacias(t *testing.T) {
	filas, err := LeerArchivo(strings.NewReader("800123456;1000.00\n\n;;\n800654321;2000.00\n"))
	require.NoError(t, err)
	assert.Len(t, filas, 2)
}
