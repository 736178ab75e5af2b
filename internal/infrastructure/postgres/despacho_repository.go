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

var _ repository.DespachoRepository = (*DespachoRepo)(nil)

const columnasDespacho = `id, tipo_evento, referencia, credito_id, monto, detalle, estado, retry_count, max_retries, next_retry_at, external_id, respuesta, created_at, updated_at`

// DespachoRepo implementación del puerto DespachoRepository sobre PostgreSQL (usable con pool o tx).
type DespachoRepo struct {
	q Querier
}

// NewDespachoRepository construye el adaptador de despachos contables. Pasar pool o tx (Querier).
func NewDespachoRepository(q Querier) *DespachoRepo {
	return &DespachoRepo{q: q}
}

// Create persiste un despacho recién encolado.
func (r *DespachoRepo) Create(d *entity.DespachoContable) error {
	query := `
		INSERT INTO despachos_contables (` + columnasDespacho + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.TipoEvento, d.Referencia, nullIfEmpty(d.CreditoID), d.Monto, d.Detalle,
		d.Estado, d.RetryCount, d.MaxRetries, d.NextRetryAt,
		nullIfEmpty(d.ExternalID), nullIfEmpty(d.Respuesta), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert despacho: %w", err)
	}
	return nil
}

// GetByID obtiene un despacho. Nil sin error si no existe.
func (r *DespachoRepo) GetByID(id string) (*entity.DespachoContable, error) {
	query := `SELECT ` + columnasDespacho + ` FROM despachos_contables WHERE id = $1`
	d, err := scanDespacho(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get despacho: %w", err)
	}
	return d, nil
}

// Update persiste el avance de la máquina de estados del despacho.
func (r *DespachoRepo) Update(d *entity.DespachoContable) error {
	query := `
		UPDATE despachos_contables SET estado = $2, retry_count = $3, next_retry_at = $4,
			external_id = $5, respuesta = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.Estado, d.RetryCount, d.NextRetryAt,
		nullIfEmpty(d.ExternalID), nullIfEmpty(d.Respuesta), d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update despacho: %w", err)
	}
	return nil
}

// ExisteExitoso implementa la supresión de duplicados: true si ya hay un
// despacho exitoso para el par (tipo de evento, referencia).
func (r *DespachoRepo) ExisteExitoso(tipoEvento, referencia string) (bool, error) {
	var existe bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM despachos_contables WHERE tipo_evento = $1 AND referencia = $2 AND estado = $3)`,
		tipoEvento, referencia, entity.DespachoExitoso,
	).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("check despacho exitoso: %w", err)
	}
	return existe, nil
}

// ListPendientes devuelve despachos recién creados aún no intentados.
func (r *DespachoRepo) ListPendientes(limit int) ([]*entity.DespachoContable, error) {
	query := `
		SELECT ` + columnasDespacho + `
		FROM despachos_contables WHERE estado = $1
		ORDER BY created_at LIMIT $2`
	return r.list(query, entity.DespachoPendiente, limit)
}

// ListParaReintento devuelve despachos en error cuyo NextRetryAt ya venció.
// Los de error permanente (next_retry_at nulo) no aparecen.
func (r *DespachoRepo) ListParaReintento(ahora time.Time, limit int) ([]*entity.DespachoContable, error) {
	query := `
		SELECT ` + columnasDespacho + `
		FROM despachos_contables
		WHERE estado = $1 AND retry_count < max_retries
			AND next_retry_at IS NOT NULL AND next_retry_at <= $2
		ORDER BY next_retry_at LIMIT $3`
	return r.list(query, entity.DespachoError, ahora, limit)
}

// ListByEstado devuelve despachos por estado con paginación (cola del operador).
func (r *DespachoRepo) ListByEstado(estado entity.EstadoDespacho, limit, offset int) ([]*entity.DespachoContable, error) {
	query := `
		SELECT ` + columnasDespacho + `
		FROM despachos_contables WHERE estado = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, estado, limit, offset)
}

func (r *DespachoRepo) list(query string, args ...any) ([]*entity.DespachoContable, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list despachos: %w", err)
	}
	defer rows.Close()

	var out []*entity.DespachoContable
	for rows.Next() {
		d, err := scanDespacho(rows)
		if err != nil {
			return nil, fmt.Errorf("scan despacho: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDespacho(row pgx.Row) (*entity.DespachoContable, error) {
	var d entity.DespachoContable
	var creditoID, externalID, respuesta *string
	err := row.Scan(&d.ID, &d.TipoEvento, &d.Referencia, &creditoID, &d.Monto, &d.Detalle,
		&d.Estado, &d.RetryCount, &d.MaxRetries, &d.NextRetryAt,
		&externalID, &respuesta, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if creditoID != nil {
		d.CreditoID = *creditoID
	}
	if externalID != nil {
		d.ExternalID = *externalID
	}
	if respuesta != nil {
		d.Respuesta = *respuesta
	}
	return &d, nil
}
