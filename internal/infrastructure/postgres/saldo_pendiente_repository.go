package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

var _ repository.SaldoPendienteRepository = (*SaldoPendienteRepo)(nil)

const columnasSaldo = `id, credito_id, planilla_id, pago_id, identidad, monto, estado, created_at, updated_at`

// SaldoPendienteRepo implementación del puerto SaldoPendienteRepository sobre PostgreSQL (usable con pool o tx).
type SaldoPendienteRepo struct {
	q Querier
}

// NewSaldoPendienteRepository construye el adaptador de saldos pendientes. Pasar pool o tx (Querier).
func NewSaldoPendienteRepository(q Querier) *SaldoPendienteRepo {
	return &SaldoPendienteRepo{q: q}
}

// Create persiste un excedente sin destino.
func (r *SaldoPendienteRepo) Create(sp *entity.SaldoPendiente) error {
	query := `
		INSERT INTO saldos_pendientes (` + columnasSaldo + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		sp.ID, nullIfEmpty(sp.CreditoID), nullIfEmpty(sp.PlanillaID), nullIfEmpty(sp.PagoID),
		nullIfEmpty(sp.Identidad), sp.Monto, sp.Estado, sp.CreatedAt, sp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert saldo pendiente: %w", err)
	}
	return nil
}

// GetByID obtiene un saldo pendiente. Nil sin error si no existe.
func (r *SaldoPendienteRepo) GetByID(id string) (*entity.SaldoPendiente, error) {
	query := `SELECT ` + columnasSaldo + ` FROM saldos_pendientes WHERE id = $1`
	sp, err := scanSaldo(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get saldo pendiente: %w", err)
	}
	return sp, nil
}

// ListActivos devuelve los saldos sin aplicar de un crédito.
func (r *SaldoPendienteRepo) ListActivos(creditoID string) ([]*entity.SaldoPendiente, error) {
	query := `
		SELECT ` + columnasSaldo + `
		FROM saldos_pendientes WHERE credito_id = $1 AND estado = $2
		ORDER BY created_at`
	return r.list(query, creditoID, entity.SaldoPendienteActivo)
}

// ListByPlanilla devuelve los saldos originados por una planilla.
func (r *SaldoPendienteRepo) ListByPlanilla(planillaID string) ([]*entity.SaldoPendiente, error) {
	query := `SELECT ` + columnasSaldo + ` FROM saldos_pendientes WHERE planilla_id = $1 ORDER BY created_at`
	return r.list(query, planillaID)
}

// Update actualiza monto y estado tras una aplicación.
func (r *SaldoPendienteRepo) Update(sp *entity.SaldoPendiente) error {
	query := `UPDATE saldos_pendientes SET monto = $2, estado = $3, updated_at = $4 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, sp.ID, sp.Monto, sp.Estado, sp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update saldo pendiente: %w", err)
	}
	return nil
}

// Delete elimina un saldo (solo anulación de planillas).
func (r *SaldoPendienteRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM saldos_pendientes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete saldo pendiente: %w", err)
	}
	return nil
}

func (r *SaldoPendienteRepo) list(query string, args ...any) ([]*entity.SaldoPendiente, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list saldos pendientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.SaldoPendiente
	for rows.Next() {
		sp, err := scanSaldo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saldo pendiente: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func scanSaldo(row pgx.Row) (*entity.SaldoPendiente, error) {
	var sp entity.SaldoPendiente
	var creditoID, planillaID, pagoID, identidad *string
	err := row.Scan(&sp.ID, &creditoID, &planillaID, &pagoID, &identidad,
		&sp.Monto, &sp.Estado, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if creditoID != nil {
		sp.CreditoID = *creditoID
	}
	if planillaID != nil {
		sp.PlanillaID = *planillaID
	}
	if pagoID != nil {
		sp.PagoID = *pagoID
	}
	if identidad != nil {
		sp.Identidad = *identidad
	}
	return &sp, nil
}
