package planilla

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/leogomez74/credicore/internal/application/planilla"
	"github.com/leogomez74/credicore/internal/domain"
)

// tamMaxArchivo límite del archivo de planilla aceptado (4 MiB).
const tamMaxArchivo = 4 << 20

// LeerArchivo parsea un archivo de planilla separado por ';'. Acepta UTF-8 e
// ISO-8859-1 (los exportes institucionales suelen venir en Latin-1). Formatos
// de fila admitidos:
//
//	identidad;monto
//	identidad;monto;cuota
//	identidad;nombre;monto
//	identidad;nombre;monto;cuota
//
// Una primera fila sin monto parseable se trata como encabezado y se descarta.
func LeerArchivo(r io.Reader) ([]planilla.Fila, error) {
	raw, err := io.ReadAll(io.LimitReader(r, tamMaxArchivo+1))
	if err != nil {
		return nil, fmt.Errorf("leer archivo de planilla: %w", err)
	}
	if len(raw) > tamMaxArchivo {
		return nil, fmt.Errorf("archivo de planilla supera el límite: %w", domain.ErrInvalidInput)
	}

	if !utf8.Valid(raw) {
		raw, err = io.ReadAll(transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("decodificar ISO-8859-1: %w", err)
		}
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) // BOM

	lector := csv.NewReader(bytes.NewReader(raw))
	lector.Comma = ';'
	lector.FieldsPerRecord = -1
	lector.TrimLeadingSpace = true

	var filas []planilla.Fila
	numLinea := 0
	for {
		registro, err := lector.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", numLinea+1, err)
		}
		numLinea++

		if vacia(registro) {
			continue
		}
		fila, err := parsearFila(registro)
		if err != nil {
			if numLinea == 1 {
				continue // encabezado
			}
			return nil, fmt.Errorf("línea %d: %w", numLinea, err)
		}
		filas = append(filas, fila)
	}

	if len(filas) == 0 {
		return nil, fmt.Errorf("archivo de planilla sin filas: %w", domain.ErrInvalidInput)
	}
	return filas, nil
}

func parsearFila(campos []string) (planilla.Fila, error) {
	for i := range campos {
		campos[i] = strings.TrimSpace(campos[i])
	}
	var f planilla.Fila
	switch len(campos) {
	case 2:
		// identidad;monto
		f.Identidad = campos[0]
		m, err := parsearMonto(campos[1])
		if err != nil {
			return f, err
		}
		f.Monto = m
	case 3:
		// identidad;monto;cuota o identidad;nombre;monto
		f.Identidad = campos[0]
		if m, err := parsearMonto(campos[1]); err == nil {
			f.Monto = m
			hint, err := strconv.Atoi(campos[2])
			if err != nil {
				return f, fmt.Errorf("cuota inválida %q: %w", campos[2], domain.ErrInvalidInput)
			}
			f.CuotaHint = hint
		} else {
			f.Nombre = campos[1]
			m, err := parsearMonto(campos[2])
			if err != nil {
				return f, err
			}
			f.Monto = m
		}
	case 4:
		// identidad;nombre;monto;cuota
		f.Identidad = campos[0]
		f.Nombre = campos[1]
		m, err := parsearMonto(campos[2])
		if err != nil {
			return f, err
		}
		f.Monto = m
		if campos[3] != "" {
			hint, err := strconv.Atoi(campos[3])
			if err != nil {
				return f, fmt.Errorf("cuota inválida %q: %w", campos[3], domain.ErrInvalidInput)
			}
			f.CuotaHint = hint
		}
	default:
		return f, fmt.Errorf("fila con %d campos: %w", len(campos), domain.ErrInvalidInput)
	}
	if f.Identidad == "" {
		return f, fmt.Errorf("fila sin identidad: %w", domain.ErrInvalidInput)
	}
	return f, nil
}

// parsearMonto acepta punto decimal ("1234.56") y formato local con coma
// decimal y puntos de miles ("1.234,56").
func parsearMonto(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("monto vacío: %w", domain.ErrInvalidInput)
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	m, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("monto inválido %q: %w", s, domain.ErrInvalidInput)
	}
	return m, nil
}

func vacia(campos []string) bool {
	for _, c := range campos {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
