// Package money centraliza la regla de redondeo monetario del sistema.
//
// Todos los montos son de punto fijo con 2 decimales. Cada resultado intermedio
// (tasas aplicadas, intereses, componentes de cuota) pasa por Round antes de
// almacenarse o sumarse; ningún otro componente redondea por su cuenta. Sin una
// sola regla, el plan de pagos acumula corrimientos de centavos entre cuotas.
package money

import "github.com/shopspring/decimal"

// Round redondea a 2 decimales, mitad lejos de cero (shopspring Round).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromFloat convierte un float64 a decimal ya redondeado a 2 decimales.
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// Zero es el cero monetario.
var Zero = decimal.Zero

// Equal compara dos montos al centavo.
func Equal(a, b decimal.Decimal) bool {
	return Round(a).Equal(Round(b))
}

// Min devuelve el menor de dos montos.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ClampZero devuelve cero si el monto es negativo; los saldos nunca bajan de cero.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return d
}
