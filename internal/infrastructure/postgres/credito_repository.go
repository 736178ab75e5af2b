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

var _ repository.CreditoRepository = (*CreditoRepo)(nil)

const columnasCredito = `id, cliente_id, cedula, monto, tasa_anual, plazo_meses, poliza, estado, saldo_actual, fecha_inicio, created_at, updated_at`

// CreditoRepo implementación del puerto CreditoRepository sobre PostgreSQL (usable con pool o tx).
type CreditoRepo struct {
	q Querier
}

// NewCreditoRepository construye el adaptador de persistencia para créditos. Pasar pool o tx (Querier).
func NewCreditoRepository(q Querier) *CreditoRepo {
	return &CreditoRepo{q: q}
}

// Create persiste un crédito formalizado.
func (r *CreditoRepo) Create(c *entity.Credito) error {
	query := `
		INSERT INTO creditos (` + columnasCredito + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.ClienteID, c.Cedula, c.Monto, c.TasaAnual, c.PlazoMeses,
		c.Poliza, c.Estado, c.SaldoActual, c.FechaInicio, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credito: %w", err)
	}
	return nil
}

// GetByID obtiene un crédito por ID. Nil sin error si no existe.
func (r *CreditoRepo) GetByID(id string) (*entity.Credito, error) {
	query := `SELECT ` + columnasCredito + ` FROM creditos WHERE id = $1`
	return r.scanCredito(r.q.QueryRow(context.Background(), query, id), "get credito")
}

// GetActivoPorCedula devuelve el crédito no cancelado del deudor, para el
// calce de filas de planilla.
func (r *CreditoRepo) GetActivoPorCedula(cedula string) (*entity.Credito, error) {
	query := `
		SELECT ` + columnasCredito + `
		FROM creditos WHERE cedula = $1 AND estado <> $2
		ORDER BY created_at DESC LIMIT 1`
	return r.scanCredito(r.q.QueryRow(context.Background(), query, cedula, entity.CreditoCancelado), "get credito por cedula")
}

// Update actualiza estado, saldo y metadatos del crédito.
func (r *CreditoRepo) Update(c *entity.Credito) error {
	query := `
		UPDATE creditos SET estado = $2, saldo_actual = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, c.ID, c.Estado, c.SaldoActual, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update credito: %w", err)
	}
	return nil
}

// GetForUpdate bloquea la fila del crédito (SELECT FOR UPDATE): serializa toda
// mutación concurrente sobre el mismo crédito sin bloquear otros.
func (r *CreditoRepo) GetForUpdate(id string) (*entity.Credito, error) {
	query := `SELECT ` + columnasCredito + ` FROM creditos WHERE id = $1 FOR UPDATE`
	return r.scanCredito(r.q.QueryRow(context.Background(), query, id), "lock credito")
}

func (r *CreditoRepo) scanCredito(row pgx.Row, op string) (*entity.Credito, error) {
	var c entity.Credito
	err := row.Scan(
		&c.ID, &c.ClienteID, &c.Cedula, &c.Monto, &c.TasaAnual, &c.PlazoMeses,
		&c.Poliza, &c.Estado, &c.SaldoActual, &c.FechaInicio, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
