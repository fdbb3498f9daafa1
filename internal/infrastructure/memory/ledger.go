package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.movements {
		if other.ID == m.ID {
			return domain.ErrDuplicate
		}
	}
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r movementRepo) ListByProduct(_ context.Context, companyID, productID string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.CompanyID == companyID && m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MovementDate.Before(out[j].MovementDate) })
	return out, nil
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if f.CompanyID != "" && m.CompanyID != f.CompanyID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.SectorID != "" && m.SectorID != f.SectorID {
			continue
		}
		if f.From != nil && m.MovementDate.Before(*f.From) {
			continue
		}
		if f.To != nil && m.MovementDate.After(*f.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	// orden de inserción invertido como desempate de created_at
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MovementDate.After(out[j].MovementDate) })
	return paginate(out, f.Limit, f.Offset), nil
}

type stockRepo struct{ s *Store }

func (r stockRepo) Get(_ context.Context, companyID, productID string) (*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.balances[key(companyID, productID)]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// GetForUpdate en memoria el lock lo da TxRunner; aquí solo se garantiza la fila.
func (r stockRepo) GetForUpdate(_ context.Context, companyID, productID string) (*entity.StockBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(companyID, productID)
	b, ok := r.s.balances[k]
	if !ok {
		b = &entity.StockBalance{CompanyID: companyID, ProductID: productID, Quantity: decimal.Zero}
		r.s.balances[k] = b
	}
	cp := *b
	return &cp, nil
}

func (r stockRepo) Upsert(_ context.Context, b *entity.StockBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *b
	r.s.balances[key(b.CompanyID, b.ProductID)] = &cp
	return nil
}

func (r stockRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockBalance
	for _, b := range r.s.balances {
		if b.CompanyID == companyID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// SetBalance fuerza un saldo materializado sin movimiento (tests de conciliación).
func (s *Store) SetBalance(companyID, productID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[key(companyID, productID)] = &entity.StockBalance{CompanyID: companyID, ProductID: productID, Quantity: qty}
}

type auditRepo struct{ s *Store }

func (r auditRepo) Append(_ context.Context, l *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *l
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

func (r auditRepo) Find(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.AuditLog
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		l := r.s.audit[i]
		if f.CompanyID != "" && l.CompanyID != f.CompanyID {
			continue
		}
		if f.EntityName != "" && l.EntityName != f.EntityName {
			continue
		}
		if f.EntityID != "" && l.EntityID != f.EntityID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.Since != nil && l.CreatedAt.Before(*f.Since) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), nil
}

type alertStateRepo struct{ s *Store }

func (r alertStateRepo) Get(_ context.Context, companyID, alertType, productID string) (*entity.AlertState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.alertStates[key(companyID, alertType, productID)]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r alertStateRepo) upsert(companyID, alertType, productID string, at time.Time, apply func(*entity.AlertState)) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(companyID, alertType, productID)
	st, ok := r.s.alertStates[k]
	if !ok {
		st = &entity.AlertState{CompanyID: companyID, AlertType: alertType, ProductID: productID}
		r.s.alertStates[k] = st
	}
	apply(st)
	st.UpdatedAt = at
}

func (r alertStateRepo) MarkSent(_ context.Context, companyID, alertType, productID string, at time.Time) error {
	r.upsert(companyID, alertType, productID, at, func(st *entity.AlertState) {
		t := at
		st.LastSentAt = &t
	})
	return nil
}

func (r alertStateRepo) Silence(_ context.Context, companyID, alertType, productID string, until time.Time) error {
	r.upsert(companyID, alertType, productID, until, func(st *entity.AlertState) {
		t := until
		st.SilencedUntil = &t
	})
	return nil
}

type digestRepo struct{ s *Store }

func (r digestRepo) Enqueue(_ context.Context, item *entity.DigestItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *item
	r.s.digestItems = append(r.s.digestItems, &cp)
	return nil
}

func (r digestRepo) ListItemsSince(_ context.Context, companyID string, since time.Time) ([]*entity.DigestItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.DigestItem
	for _, it := range r.s.digestItems {
		if it.CompanyID == companyID && !it.QueuedAt.Before(since) {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r digestRepo) GetRun(_ context.Context, companyID, digestDate string) (*entity.DigestRun, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	run, ok := r.s.digestRuns[key(companyID, digestDate)]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (r digestRepo) CreateRun(_ context.Context, run *entity.DigestRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(run.CompanyID, run.DigestDate)
	if _, ok := r.s.digestRuns[k]; ok {
		return domain.ErrDuplicate
	}
	cp := *run
	r.s.digestRuns[k] = &cp
	return nil
}
