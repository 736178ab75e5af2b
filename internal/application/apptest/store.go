// Package apptest provee repositorios en memoria y un TxRunner con semántica
// de rollback por snapshot, para los tests de casos de uso. No se usa en
// producción.
package apptest

import (
	"context"
	"sort"
	"time"

	"github.com/leogomez74/credicore/internal/application/ports"
	"github.com/leogomez74/credicore/internal/domain"
	"github.com/leogomez74/credicore/internal/domain/entity"
)

// Store estado en memoria compartido por los repos fake.
type Store struct {
	Creditos  map[string]*entity.Credito
	Cuotas    map[string]*entity.Cuota
	Pagos     map[string]*entity.Pago
	Saldos    map[string]*entity.SaldoPendiente
	Planillas map[string]*entity.Planilla
	Despachos map[string]*entity.DespachoContable

	// Inyección de fallos para probar atomicidad.
	FailPagoCreate  error
	FailCuotaUpdate error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		Creditos:  map[string]*entity.Credito{},
		Cuotas:    map[string]*entity.Cuota{},
		Pagos:     map[string]*entity.Pago{},
		Saldos:    map[string]*entity.SaldoPendiente{},
		Planillas: map[string]*entity.Planilla{},
		Despachos: map[string]*entity.DespachoContable{},
	}
}

// Repos devuelve el bundle de repositorios sobre este store.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Creditos:  &creditoRepo{s},
		Cuotas:    &cuotaRepo{s},
		Pagos:     &pagoRepo{s},
		Saldos:    &saldoRepo{s},
		Planillas: &planillaRepo{s},
		Despachos: &despachoRepo{s},
	}
}

// Clone copia profunda del estado (para el rollback del TxRunner fake).
func (s *Store) Clone() *Store {
	c := NewStore()
	c.FailPagoCreate = s.FailPagoCreate
	c.FailCuotaUpdate = s.FailCuotaUpdate
	for k, v := range s.Creditos {
		cp := *v
		c.Creditos[k] = &cp
	}
	for k, v := range s.Cuotas {
		c.Cuotas[k] = v.Clonar()
	}
	for k, v := range s.Pagos {
		cp := *v
		cp.Detalles = append([]entity.PagoDetalle(nil), v.Detalles...)
		c.Pagos[k] = &cp
	}
	for k, v := range s.Saldos {
		cp := *v
		c.Saldos[k] = &cp
	}
	for k, v := range s.Planillas {
		cp := *v
		c.Planillas[k] = &cp
	}
	for k, v := range s.Despachos {
		cp := *v
		if v.NextRetryAt != nil {
			t := *v.NextRetryAt
			cp.NextRetryAt = &t
		}
		c.Despachos[k] = &cp
	}
	return c
}

// TxRunner implementa ports.TxRunner sobre el store: toma un snapshot antes de
// fn y lo restaura si fn falla, imitando el rollback transaccional.
type TxRunner struct {
	S *Store
}

// Run ejecuta fn con rollback por snapshot.
func (t *TxRunner) Run(_ context.Context, fn func(r ports.Repos) error) error {
	snap := t.S.Clone()
	if err := fn(t.S.Repos()); err != nil {
		*t.S = *snap
		return err
	}
	return nil
}

// ── repos fake ────────────────────────────────────────────────────────────────

type creditoRepo struct{ s *Store }

func (r *creditoRepo) Create(c *entity.Credito) error {
	r.s.Creditos[c.ID] = c
	return nil
}

func (r *creditoRepo) GetByID(id string) (*entity.Credito, error) {
	return r.s.Creditos[id], nil
}

func (r *creditoRepo) GetActivoPorCedula(cedula string) (*entity.Credito, error) {
	for _, c := range r.s.Creditos {
		if c.Cedula == cedula && c.Estado != entity.CreditoCancelado {
			return c, nil
		}
	}
	return nil, nil
}

func (r *creditoRepo) Update(c *entity.Credito) error {
	r.s.Creditos[c.ID] = c
	return nil
}

func (r *creditoRepo) GetForUpdate(id string) (*entity.Credito, error) {
	return r.s.Creditos[id], nil
}

type cuotaRepo struct{ s *Store }

func (r *cuotaRepo) CreateBatch(cuotas []*entity.Cuota) error {
	for _, q := range cuotas {
		r.s.Cuotas[q.ID] = q
	}
	return nil
}

func (r *cuotaRepo) GetByID(id string) (*entity.Cuota, error) {
	q, ok := r.s.Cuotas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

func (r *cuotaRepo) ListByCredito(creditoID string) ([]*entity.Cuota, error) {
	var out []*entity.Cuota
	for _, q := range r.s.Cuotas {
		if q.CreditoID == creditoID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (r *cuotaRepo) Update(q *entity.Cuota) error {
	if r.s.FailCuotaUpdate != nil {
		return r.s.FailCuotaUpdate
	}
	r.s.Cuotas[q.ID] = q
	return nil
}

func (r *cuotaRepo) CountActivas(creditoID string) (int, error) {
	n := 0
	for _, q := range r.s.Cuotas {
		if q.CreditoID == creditoID && q.Numero >= 1 {
			n++
		}
	}
	return n, nil
}

func (r *cuotaRepo) DeleteDesde(creditoID string, numero int) error {
	for id, q := range r.s.Cuotas {
		if q.CreditoID == creditoID && q.Numero >= numero {
			delete(r.s.Cuotas, id)
		}
	}
	return nil
}

func (r *cuotaRepo) ListVencidas(fecha time.Time) ([]*entity.Cuota, error) {
	var out []*entity.Cuota
	for _, q := range r.s.Cuotas {
		if q.Vencida(fecha) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreditoID != out[j].CreditoID {
			return out[i].CreditoID < out[j].CreditoID
		}
		return out[i].Numero < out[j].Numero
	})
	return out, nil
}

type pagoRepo struct{ s *Store }

func (r *pagoRepo) Create(p *entity.Pago) error {
	if r.s.FailPagoCreate != nil {
		return r.s.FailPagoCreate
	}
	r.s.Pagos[p.ID] = p
	return nil
}

func (r *pagoRepo) GetByID(id string) (*entity.Pago, error) {
	p, ok := r.s.Pagos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *pagoRepo) ListByCredito(creditoID string) ([]*entity.Pago, error) {
	return r.list(func(p *entity.Pago) bool { return p.CreditoID == creditoID }), nil
}

func (r *pagoRepo) ListByPlanilla(planillaID string) ([]*entity.Pago, error) {
	return r.list(func(p *entity.Pago) bool { return p.PlanillaID == planillaID }), nil
}

func (r *pagoRepo) list(keep func(*entity.Pago) bool) []*entity.Pago {
	var out []*entity.Pago
	for _, p := range r.s.Pagos {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *pagoRepo) Delete(id string) error {
	delete(r.s.Pagos, id)
	return nil
}

type saldoRepo struct{ s *Store }

func (r *saldoRepo) Create(sp *entity.SaldoPendiente) error {
	r.s.Saldos[sp.ID] = sp
	return nil
}

func (r *saldoRepo) GetByID(id string) (*entity.SaldoPendiente, error) {
	sp, ok := r.s.Saldos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sp, nil
}

func (r *saldoRepo) ListActivos(creditoID string) ([]*entity.SaldoPendiente, error) {
	var out []*entity.SaldoPendiente
	for _, sp := range r.s.Saldos {
		if sp.Estado == entity.SaldoPendienteActivo && (creditoID == "" || sp.CreditoID == creditoID) {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *saldoRepo) ListByPlanilla(planillaID string) ([]*entity.SaldoPendiente, error) {
	var out []*entity.SaldoPendiente
	for _, sp := range r.s.Saldos {
		if sp.PlanillaID == planillaID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *saldoRepo) Update(sp *entity.SaldoPendiente) error {
	r.s.Saldos[sp.ID] = sp
	return nil
}

func (r *saldoRepo) Delete(id string) error {
	delete(r.s.Saldos, id)
	return nil
}

type planillaRepo struct{ s *Store }

func (r *planillaRepo) Create(p *entity.Planilla) error {
	r.s.Planillas[p.ID] = p
	return nil
}

func (r *planillaRepo) GetByID(id string) (*entity.Planilla, error) {
	return r.s.Planillas[id], nil
}

func (r *planillaRepo) ExisteActiva(archivo string, fecha time.Time) (bool, error) {
	for _, p := range r.s.Planillas {
		if p.Archivo == archivo && p.Estado == entity.PlanillaActiva &&
			p.Fecha.Year() == fecha.Year() && p.Fecha.YearDay() == fecha.YearDay() {
			return true, nil
		}
	}
	return false, nil
}

func (r *planillaRepo) Update(p *entity.Planilla) error {
	r.s.Planillas[p.ID] = p
	return nil
}

func (r *planillaRepo) List(limit, offset int) ([]*entity.Planilla, error) {
	var out []*entity.Planilla
	for _, p := range r.s.Planillas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type despachoRepo struct{ s *Store }

func (r *despachoRepo) Create(d *entity.DespachoContable) error {
	r.s.Despachos[d.ID] = d
	return nil
}

func (r *despachoRepo) GetByID(id string) (*entity.DespachoContable, error) {
	d, ok := r.s.Despachos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (r *despachoRepo) Update(d *entity.DespachoContable) error {
	r.s.Despachos[d.ID] = d
	return nil
}

func (r *despachoRepo) ExisteExitoso(tipoEvento, referencia string) (bool, error) {
	for _, d := range r.s.Despachos {
		if d.TipoEvento == tipoEvento && d.Referencia == referencia && d.Estado == entity.DespachoExitoso {
			return true, nil
		}
	}
	return false, nil
}

func (r *despachoRepo) ListPendientes(limit int) ([]*entity.DespachoContable, error) {
	return r.list(func(d *entity.DespachoContable) bool {
		return d.Estado == entity.DespachoPendiente
	}, limit), nil
}

func (r *despachoRepo) ListParaReintento(ahora time.Time, limit int) ([]*entity.DespachoContable, error) {
	return r.list(func(d *entity.DespachoContable) bool {
		return d.ListoParaReintento(ahora)
	}, limit), nil
}

func (r *despachoRepo) ListByEstado(estado entity.EstadoDespacho, limit, offset int) ([]*entity.DespachoContable, error) {
	return r.list(func(d *entity.DespachoContable) bool { return d.Estado == estado }, limit), nil
}

func (r *despachoRepo) list(keep func(*entity.DespachoContable) bool, limit int) []*entity.DespachoContable {
	var out []*entity.DespachoContable
	for _, d := range r.s.Despachos {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
