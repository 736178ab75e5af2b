package contabilidad

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

// mapeoCuentas cuentas contables por tipo de evento. Un evento sin mapeo no se
// puede asentar: el despacho nace omitido y no se reintenta.
var mapeoCuentas = map[string]string{
	entity.EventoPago:        "110-01",
	entity.EventoPlanilla:    "110-02",
	entity.EventoAnulacion:   "110-03",
	entity.EventoCancelacion: "110-04",
}

// Encolador crea registros de despacho contable dentro de la transacción del
// evento financiero. El envío real ocurre después, fuera de transacción, por
// el Despachador.
type Encolador struct {
	configurado   bool // false si no hay sistema contable externo configurado
	maxReintentos int
}

// NewEncolador construye el encolador. configurado=false hace que todo
// despacho nazca omitido (terminal, sin reintentos).
func NewEncolador(configurado bool, maxReintentos int) *Encolador {
	return &Encolador{configurado: configurado, maxReintentos: maxReintentos}
}

// EncolarEnTx registra el despacho de un evento financiero usando los repos de
// la transacción en curso. Supresión de duplicados: si ya existe un despacho
// exitoso para (tipoEvento, referencia) no se crea nada y se devuelve nil.
func (e *Encolador) EncolarEnTx(
	r ports.Repos,
	tipoEvento, referencia, creditoID string,
	monto decimal.Decimal,
	detalle string,
	ahora time.Time,
) (*entity.DespachoContable, error) {
	existe, err := r.Despachos.ExisteExitoso(tipoEvento, referencia)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, nil
	}

	d := &entity.DespachoContable{
		ID:         uuid.New().String(),
		TipoEvento: tipoEvento,
		Referencia: referencia,
		CreditoID:  creditoID,
		Monto:      monto,
		Detalle:    detalle,
		Estado:     entity.DespachoPendiente,
		MaxRetries: e.maxReintentos,
		CreatedAt:  ahora,
		UpdatedAt:  ahora,
	}

	if !e.configurado {
		d.MarcarOmitido("sistema contable no configurado", ahora)
	} else if _, ok := mapeoCuentas[tipoEvento]; !ok {
		d.MarcarOmitido("sin mapeo de cuenta contable para el evento", ahora)
	}

	if err := r.Despachos.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}

// CuentaContable devuelve la cuenta mapeada para un tipo de evento.
func CuentaContable(tipoEvento string) (string, bool) {
	cuenta, ok := mapeoCuentas[tipoEvento]
	return cuenta, ok
}
