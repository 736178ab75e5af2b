package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/internal/domain/repository"
)

var _ repository.PlanillaRepository = (*PlanillaRepo)(nil)

const columnasPlanilla = `id, archivo, token, fecha, monto_total, filas, estado, creada_por, motivo_anulado, anulada_por, anulada_en, created_at`

// PlanillaRepo implementación del puerto PlanillaRepository sobre PostgreSQL (usable con pool o tx).
type PlanillaRepo struct {
	q Querier
}

// NewPlanillaRepository construye el adaptador de planillas. Pasar pool o tx (Querier).
func NewPlanillaRepository(q Querier) *PlanillaRepo {
	return &PlanillaRepo{q: q}
}

// Create persiste una planilla confirmada.
func (r *PlanillaRepo) Create(p *entity.Planilla) error {
	query := `
		INSERT INTO planillas (` + columnasPlanilla + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Archivo, p.Token, p.Fecha, p.MontoTotal, p.Filas, p.Estado,
		nullIfEmpty(p.CreadaPor), nullIfEmpty(p.MotivoAnulado), nullIfEmpty(p.AnuladaPor), p.AnuladaEn, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert planilla: %w", err)
	}
	return nil
}

// GetByID obtiene una planilla. Nil sin error si no existe.
func (r *PlanillaRepo) GetByID(id string) (*entity.Planilla, error) {
	query := `SELECT ` + columnasPlanilla + ` FROM planillas WHERE id = $1`
	p, err := scanPlanilla(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get planilla: %w", err)
	}
	return p, nil
}

// ExisteActiva detecta el doble commit del mismo archivo para la misma fecha.
func (r *PlanillaRepo) ExisteActiva(archivo string, fecha time.Time) (bool, error) {
	var existe bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM planillas WHERE archivo = $1 AND fecha = $2 AND estado = $3)`,
		archivo, fecha, entity.PlanillaActiva,
	).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("check planilla activa: %w", err)
	}
	return existe, nil
}

// Update actualiza totales o estado de anulación.
func (r *PlanillaRepo) Update(p *entity.Planilla) error {
	query := `
		UPDATE planillas SET monto_total = $2, filas = $3, estado = $4,
			motivo_anulado = $5, anulada_por = $6, anulada_en = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.MontoTotal, p.Filas, p.Estado,
		nullIfEmpty(p.MotivoAnulado), nullIfEmpty(p.AnuladaPor), p.AnuladaEn,
	)
	if err != nil {
		return fmt.Errorf("update planilla: %w", err)
	}
	return nil
}

// List devuelve planillas con paginación, más reciente primero.
func (r *PlanillaRepo) List(limit, offset int) ([]*entity.Planilla, error) {
	query := `SELECT ` + columnasPlanilla + ` FROM planillas ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list planillas: %w", err)
	}
	defer rows.Close()

	var out []*entity.Planilla
	for rows.Next() {
		p, err := scanPlanilla(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planilla: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlanilla(row pgx.Row) (*entity.Planilla, error) {
	var p entity.Planilla
	var creada, motivo, por *string
	err := row.Scan(&p.ID, &p.Archivo, &p.Token, &p.Fecha, &p.MontoTotal, &p.Filas,
		&p.Estado, &creada, &motivo, &por, &p.AnuladaEn, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if creada != nil {
		p.CreadaPor = *creada
	}
	if motivo != nil {
		p.MotivoAnulado = *motivo
	}
	if por != nil {
		p.AnuladaPor = *por
	}
	return &p, nil
}
