package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

var _ repository.PagoRepository = (*PagoRepo)(nil)

const columnasPago = `id, credito_id, planilla_id, monto, fecha, origen, created_at`

// PagoRepo implementación del puerto PagoRepository sobre PostgreSQL (usable con pool o tx).
// Un pago y su desglose se persisten juntos; el borrado (solo anulación de
// planilla) elimina el desglose en cascada.
type PagoRepo struct {
	q Querier
}

// NewPagoRepository construye el adaptador de persistencia para pagos. Pasar pool o tx (Querier).
func NewPagoRepository(q Querier) *PagoRepo {
	return &PagoRepo{q: q}
}

// Create persiste el pago con todos sus detalles.
func (r *PagoRepo) Create(p *entity.Pago) error {
	query := `
		INSERT INTO pagos (` + columnasPago + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.CreditoID, nullIfEmpty(p.PlanillaID), p.Monto, p.Fecha, p.Origen, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert pago: %w", err)
	}

	detalleQuery := `
		INSERT INTO pago_detalles (id, pago_id, cuota_id, numero_cuota, interes_moratorio, interes_vencido, interes_corriente, amortizacion, poliza)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, d := range p.Detalles {
		_, err := r.q.Exec(context.Background(), detalleQuery,
			d.ID, d.PagoID, d.CuotaID, d.NumeroCuota,
			d.InteresMoratorio, d.InteresVencido, d.InteresCorriente, d.Amortizacion, d.Poliza,
		)
		if err != nil {
			return fmt.Errorf("insert pago detalle: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un pago con su desglose. Nil sin error si no existe.
func (r *PagoRepo) GetByID(id string) (*entity.Pago, error) {
	query := `SELECT ` + columnasPago + ` FROM pagos WHERE id = $1`
	var p entity.Pago
	var planillaID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.CreditoID, &planillaID, &p.Monto, &p.Fecha, &p.Origen, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pago: %w", err)
	}
	if planillaID != nil {
		p.PlanillaID = *planillaID
	}
	if err := r.cargarDetalles(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCredito devuelve el historial de pagos del crédito, más reciente primero.
func (r *PagoRepo) ListByCredito(creditoID string) ([]*entity.Pago, error) {
	query := `SELECT ` + columnasPago + ` FROM pagos WHERE credito_id = $1 ORDER BY fecha DESC, created_at DESC`
	return r.list(query, creditoID)
}

// ListByPlanilla devuelve los pagos creados por una planilla.
func (r *PagoRepo) ListByPlanilla(planillaID string) ([]*entity.Pago, error) {
	query := `SELECT ` + columnasPago + ` FROM pagos WHERE planilla_id = $1 ORDER BY created_at`
	return r.list(query, planillaID)
}

// Delete elimina el pago y su desglose. Solo lo invoca la anulación
// transaccional de planillas.
func (r *PagoRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM pago_detalles WHERE pago_id = $1`, id); err != nil {
		return fmt.Errorf("delete pago detalles: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), `DELETE FROM pagos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete pago: %w", err)
	}
	return nil
}

func (r *PagoRepo) list(query string, arg any) ([]*entity.Pago, error) {
	rows, err := r.q.Query(context.Background(), query, arg)
	if err != nil {
		return nil, fmt.Errorf("list pagos: %w", err)
	}
	defer rows.Close()

	var out []*entity.Pago
	for rows.Next() {
		var p entity.Pago
		var planillaID *string
		err := rows.Scan(&p.ID, &p.CreditoID, &planillaID, &p.Monto, &p.Fecha, &p.Origen, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan pago: %w", err)
		}
		if planillaID != nil {
			p.PlanillaID = *planillaID
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := r.cargarDetalles(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PagoRepo) cargarDetalles(p *entity.Pago) error {
	query := `
		SELECT id, pago_id, cuota_id, numero_cuota, interes_moratorio, interes_vencido, interes_corriente, amortizacion, poliza
		FROM pago_detalles WHERE pago_id = $1 ORDER BY numero_cuota`
	rows, err := r.q.Query(context.Background(), query, p.ID)
	if err != nil {
		return fmt.Errorf("list pago detalles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.PagoDetalle
		err := rows.Scan(&d.ID, &d.PagoID, &d.CuotaID, &d.NumeroCuota,
			&d.InteresMoratorio, &d.InteresVencido, &d.InteresCorriente, &d.Amortizacion, &d.Poliza)
		if err != nil {
			return fmt.Errorf("scan pago detalle: %w", err)
		}
		p.Detalles = append(p.Detalles, d)
	}
	return rows.Err()
}
