package apptest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/domain/amortizacion"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

// ParamsCredito parámetros para sembrar un crédito de prueba con su plan.
type ParamsCredito struct {
	ID        string
	Cedula    string
	Principal string // decimal en texto, p.ej. "1000000"
	TasaAnual string
	Plazo     int
	Poliza    string
	Inicio    time.Time
}

// SembrarCredito crea en el store un crédito formalizado con su plan completo
// (fila 0 incluida). Entra en pánico ante parámetros inválidos: es código de
// fixtures, no de producción.
func SembrarCredito(s *Store, p ParamsCredito) *entity.Credito {
	if p.Poliza == "" {
		p.Poliza = "0"
	}
	principal := decimal.RequireFromString(p.Principal)
	tasa := decimal.RequireFromString(p.TasaAnual)
	poliza := decimal.RequireFromString(p.Poliza)

	credito := &entity.Credito{
		ID:          p.ID,
		ClienteID:   "cliente-" + p.ID,
		Cedula:      p.Cedula,
		Monto:       principal,
		TasaAnual:   tasa,
		PlazoMeses:  p.Plazo,
		Poliza:      poliza,
		Estado:      entity.CreditoFormalizado,
		SaldoActual: principal,
		FechaInicio: p.Inicio,
	}
	s.Creditos[credito.ID] = credito

	filas, err := amortizacion.Generar(amortizacion.Parametros{
		Principal:   principal,
		TasaAnual:   tasa,
		Plazo:       p.Plazo,
		FechaInicio: p.Inicio,
		Poliza:      poliza,
		NumeroBase:  1,
	})
	if err != nil {
		panic(fmt.Sprintf("fixture inválido para %s: %v", p.ID, err))
	}

	inicial := &entity.Cuota{
		ID:               p.ID + "-q0",
		CreditoID:        p.ID,
		Numero:           0,
		FechaVencimiento: p.Inicio,
		SaldoInicial:     principal,
		SaldoFinal:       principal,
		Estado:           entity.CuotaPagado,
	}
	s.Cuotas[inicial.ID] = inicial

	for _, f := range filas {
		q := &entity.Cuota{
			ID:               fmt.Sprintf("%s-q%d", p.ID, f.Numero),
			CreditoID:        p.ID,
			Numero:           f.Numero,
			FechaVencimiento: f.FechaVencimiento,
			SaldoInicial:     f.SaldoInicial,
			InteresCorriente: f.Interes,
			Amortizacion:     f.Amortizacion,
			Poliza:           f.Poliza,
			CuotaTotal:       f.Cuota.Add(f.Poliza),
			SaldoFinal:       f.SaldoFinal,
			Estado:           entity.CuotaPendiente,
		}
		s.Cuotas[q.ID] = q
	}
	return credito
}
