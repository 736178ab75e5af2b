// Package amortizacion contiene la matemática pura del plan de pagos
// (sistema francés: cuota total fija, proporción interés/capital variable).
// No toca persistencia; los casos de uso la envuelven en transacciones.
package amortizacion

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/domain/money"
)

var (
	// ErrParametros parámetros fuera de rango (principal <= 0, plazo <= 0, tasa negativa).
	ErrParametros = errors.New("amortizacion: parámetros inválidos")
	// ErrCuotaInsuficiente la cuota fija no cubre ni el interés del período:
	// el saldo nunca amortizaría.
	ErrCuotaInsuficiente = errors.New("amortizacion: la cuota no cubre el interés del período")
	// ErrDesbalance la suma de amortizaciones no cierra contra el principal.
	ErrDesbalance = errors.New("amortizacion: el plan no cuadra con el principal")
)

// Parametros entrada del generador.
type Parametros struct {
	Principal   decimal.Decimal
	TasaAnual   decimal.Decimal // % anual (ej. 36 para 36%)
	Plazo       int             // meses
	FechaInicio time.Time       // la cuota 1 vence un mes después
	Poliza      decimal.Decimal // cargo fijo de póliza por cuota (puede ser cero)
	NumeroBase  int             // número de la primera fila generada (1 para un plan nuevo)
}

// Fila es un período del plan generado.
type Fila struct {
	Numero           int
	FechaVencimiento time.Time
	SaldoInicial     decimal.Decimal
	Interes          decimal.Decimal
	Amortizacion     decimal.Decimal
	Poliza           decimal.Decimal
	Cuota            decimal.Decimal // interés + amortización (sin póliza)
	SaldoFinal       decimal.Decimal
}

// TasaMensual convierte la tasa anual porcentual a tasa mensual decimal: i = r/12/100.
func TasaMensual(tasaAnual decimal.Decimal) decimal.Decimal {
	return tasaAnual.Div(decimal.NewFromInt(1200))
}

// CuotaFija calcula A = P·i·(1+i)^n / ((1+i)^n − 1), redondeada al centavo.
// Con i = 0 degenera a P/n. La potencia se calcula en float64 y el resultado
// vuelve a decimal; toda la aritmética monetaria posterior es decimal.
func CuotaFija(principal decimal.Decimal, tasaMensual decimal.Decimal, plazo int) decimal.Decimal {
	if plazo <= 0 {
		return decimal.Zero
	}
	if tasaMensual.IsZero() {
		return money.Round(principal.Div(decimal.NewFromInt(int64(plazo))))
	}
	i := tasaMensual.InexactFloat64()
	factor := math.Pow(1+i, float64(plazo))
	cuota := principal.InexactFloat64() * i * factor / (factor - 1)
	return money.FromFloat(cuota)
}

// Generar produce las filas 1..Plazo del plan. La última fila absorbe el error
// de redondeo: su amortización se fuerza al saldo restante y su cuota se
// recalcula, de modo que el saldo final cierre exactamente en cero.
// Si aun así la suma de amortizaciones no iguala el principal, el plan está
// desbalanceado y se retorna error sin filas (la generación no debe continuar).
func Generar(p Parametros) ([]Fila, error) {
	if p.Plazo <= 0 || !p.Principal.GreaterThan(decimal.Zero) || p.TasaAnual.IsNegative() {
		return nil, ErrParametros
	}
	base := p.NumeroBase
	if base <= 0 {
		base = 1
	}

	i := TasaMensual(p.TasaAnual)
	cuota := CuotaFija(p.Principal, i, p.Plazo)

	filas := make([]Fila, 0, p.Plazo)
	saldo := money.Round(p.Principal)
	sumaCapital := decimal.Zero

	for k := 1; k <= p.Plazo; k++ {
		interes := money.Round(saldo.Mul(i))
		capital := money.Round(cuota.Sub(interes))
		total := cuota

		if k == p.Plazo {
			// La última fila liquida el saldo exacto y absorbe el redondeo.
			capital = saldo
			total = money.Round(capital.Add(interes))
		} else if capital.GreaterThan(saldo) {
			capital = saldo
			total = money.Round(capital.Add(interes))
		}

		nuevoSaldo := money.ClampZero(money.Round(saldo.Sub(capital)))
		filas = append(filas, Fila{
			Numero:           base + k - 1,
			FechaVencimiento: p.FechaInicio.AddDate(0, k, 0),
			SaldoInicial:     saldo,
			Interes:          interes,
			Amortizacion:     capital,
			Poliza:           money.Round(p.Poliza),
			Cuota:            total,
			SaldoFinal:       nuevoSaldo,
		})
		sumaCapital = sumaCapital.Add(capital)
		saldo = nuevoSaldo
	}

	if !money.Equal(sumaCapital, p.Principal) || !saldo.IsZero() {
		return nil, ErrDesbalance
	}
	return filas, nil
}

// GenerarConCuota produce un plan manteniendo fija la cuota dada: calcula el
// mínimo número de períodos que amortiza el principal a esa cuota y genera las
// filas, con la última absorbiendo el redondeo igual que Generar. Es la base
// de la estrategia reduce_term de los abonos extraordinarios.
func GenerarConCuota(p Parametros, cuota decimal.Decimal) ([]Fila, error) {
	if !p.Principal.GreaterThan(decimal.Zero) || p.TasaAnual.IsNegative() {
		return nil, ErrParametros
	}
	i := TasaMensual(p.TasaAnual)
	plazo, err := PeriodosParaAmortizar(p.Principal, i, cuota)
	if err != nil {
		return nil, err
	}
	base := p.NumeroBase
	if base <= 0 {
		base = 1
	}

	filas := make([]Fila, 0, plazo)
	saldo := money.Round(p.Principal)
	for k := 1; k <= plazo && saldo.GreaterThan(decimal.Zero); k++ {
		interes := money.Round(saldo.Mul(i))
		capital := money.Round(cuota.Sub(interes))
		total := cuota
		if k == plazo || capital.GreaterThan(saldo) {
			capital = saldo
			total = money.Round(capital.Add(interes))
		}
		nuevoSaldo := money.ClampZero(money.Round(saldo.Sub(capital)))
		filas = append(filas, Fila{
			Numero:           base + k - 1,
			FechaVencimiento: p.FechaInicio.AddDate(0, k, 0),
			SaldoInicial:     saldo,
			Interes:          interes,
			Amortizacion:     capital,
			Poliza:           money.Round(p.Poliza),
			Cuota:            total,
			SaldoFinal:       nuevoSaldo,
		})
		saldo = nuevoSaldo
	}
	if !saldo.IsZero() {
		return nil, ErrDesbalance
	}
	return filas, nil
}

// PeriodosParaAmortizar devuelve el mínimo número entero de períodos que
// amortiza el principal pagando la cuota fija dada:
// n = ⌈ −ln(1 − P·i/A) / ln(1+i) ⌉. Con i = 0 es ⌈P/A⌉.
// Se usa por la estrategia reduce_term de los abonos extraordinarios.
func PeriodosParaAmortizar(principal, tasaMensual, cuota decimal.Decimal) (int, error) {
	if !principal.GreaterThan(decimal.Zero) || !cuota.GreaterThan(decimal.Zero) {
		return 0, ErrParametros
	}
	if tasaMensual.IsZero() {
		n := principal.Div(cuota).Ceil().IntPart()
		return int(n), nil
	}
	interesPeriodo := principal.Mul(tasaMensual)
	if !cuota.GreaterThan(interesPeriodo) {
		return 0, ErrCuotaInsuficiente
	}
	i := tasaMensual.InexactFloat64()
	p := principal.InexactFloat64()
	a := cuota.InexactFloat64()
	n := math.Ceil(-math.Log(1-p*i/a) / math.Log(1+i))
	return int(n), nil
}

// InteresAcumulado calcula el interés corrido de un período parcial sobre un
// saldo: saldo · i · (días/30), redondeado. Base 30 días por mes.
func InteresAcumulado(saldo, tasaMensual decimal.Decimal, dias int) decimal.Decimal {
	if dias <= 0 {
		return decimal.Zero
	}
	proporcion := decimal.NewFromInt(int64(dias)).Div(decimal.NewFromInt(30))
	return money.Round(saldo.Mul(tasaMensual).Mul(proporcion))
}
