package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

var _ repository.CuotaRepository = (*CuotaRepo)(nil)

const columnasCuota = `id, credito_id, numero, fecha_vencimiento, saldo_inicial, interes_moratorio, interes_vencido, interes_corriente, amortizacion, poliza, cuota_total, saldo_final, estado, dias_atraso, fecha_ultima_mora, monto_pagado, created_at, updated_at`

// CuotaRepo implementación del puerto CuotaRepository sobre PostgreSQL (usable con pool o tx).
type CuotaRepo struct {
	q Querier
}

// NewCuotaRepository construye el adaptador de persistencia para cuotas. Pasar pool o tx (Querier).
func NewCuotaRepository(q Querier) *CuotaRepo {
	return &CuotaRepo{q: q}
}

// CreateBatch inserta las filas del plan de una sola vez.
func (r *CuotaRepo) CreateBatch(cuotas []*entity.Cuota) error {
	query := `
		INSERT INTO cuotas (` + columnasCuota + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	for _, c := range cuotas {
		_, err := r.q.Exec(context.Background(), query,
			c.ID, c.CreditoID, c.Numero, c.FechaVencimiento, c.SaldoInicial,
			c.InteresMoratorio, c.InteresVencido, c.InteresCorriente, c.Amortizacion,
			c.Poliza, c.CuotaTotal, c.SaldoFinal, c.Estado, c.DiasAtraso,
			c.FechaUltimaMora, c.MontoPagado, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert cuota %d: %w", c.Numero, err)
		}
	}
	return nil
}

// GetByID obtiene una cuota por ID. Nil sin error si no existe.
func (r *CuotaRepo) GetByID(id string) (*entity.Cuota, error) {
	query := `SELECT ` + columnasCuota + ` FROM cuotas WHERE id = $1`
	c, err := scanCuota(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cuota: %w", err)
	}
	return c, nil
}

// ListByCredito devuelve todas las filas del plan ordenadas por número.
func (r *CuotaRepo) ListByCredito(creditoID string) ([]*entity.Cuota, error) {
	query := `SELECT ` + columnasCuota + ` FROM cuotas WHERE credito_id = $1 ORDER BY numero`
	rows, err := r.q.Query(context.Background(), query, creditoID)
	if err != nil {
		return nil, fmt.Errorf("list cuotas: %w", err)
	}
	defer rows.Close()
	return collectCuotas(rows)
}

// Update actualiza los rubros pendientes, el estado y las marcas de mora.
func (r *CuotaRepo) Update(c *entity.Cuota) error {
	query := `
		UPDATE cuotas SET
			interes_moratorio = $2, interes_vencido = $3, interes_corriente = $4,
			amortizacion = $5, poliza = $6, estado = $7, dias_atraso = $8,
			fecha_ultima_mora = $9, monto_pagado = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.InteresMoratorio, c.InteresVencido, c.InteresCorriente,
		c.Amortizacion, c.Poliza, c.Estado, c.DiasAtraso,
		c.FechaUltimaMora, c.MontoPagado, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cuota: %w", err)
	}
	return nil
}

// CountActivas cuenta filas con número >= 1; el plan solo se genera una vez.
func (r *CuotaRepo) CountActivas(creditoID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM cuotas WHERE credito_id = $1 AND numero >= 1`, creditoID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count cuotas: %w", err)
	}
	return n, nil
}

// DeleteDesde elimina las filas desde un número en adelante (reestructuras).
func (r *CuotaRepo) DeleteDesde(creditoID string, numero int) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM cuotas WHERE credito_id = $1 AND numero >= $2`, creditoID, numero)
	if err != nil {
		return fmt.Errorf("delete cuotas: %w", err)
	}
	return nil
}

// ListVencidas devuelve cuotas vencidas y no pagadas de todos los créditos,
// para el barrido de mora.
func (r *CuotaRepo) ListVencidas(fecha time.Time) ([]*entity.Cuota, error) {
	query := `
		SELECT ` + columnasCuota + `
		FROM cuotas
		WHERE numero >= 1 AND estado <> $1 AND fecha_vencimiento < $2
		ORDER BY credito_id, numero`
	rows, err := r.q.Query(context.Background(), query, entity.CuotaPagado, fecha)
	if err != nil {
		return nil, fmt.Errorf("list cuotas vencidas: %w", err)
	}
	defer rows.Close()
	return collectCuotas(rows)
}

func scanCuota(row pgx.Row) (*entity.Cuota, error) {
	var c entity.Cuota
	err := row.Scan(
		&c.ID, &c.CreditoID, &c.Numero, &c.FechaVencimiento, &c.SaldoInicial,
		&c.InteresMoratorio, &c.InteresVencido, &c.InteresCorriente, &c.Amortizacion,
		&c.Poliza, &c.CuotaTotal, &c.SaldoFinal, &c.Estado, &c.DiasAtraso,
		&c.FechaUltimaMora, &c.MontoPagado, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCuotas(rows pgx.Rows) ([]*entity.Cuota, error) {
	var out []*entity.Cuota
	for rows.Next() {
		c, err := scanCuota(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cuota: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
