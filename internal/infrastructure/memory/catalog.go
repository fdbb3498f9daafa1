package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.companies {
		if c.CNPJ != "" && other.CNPJ == c.CNPJ {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r companyRepo) GetByCNPJ(_ context.Context, cnpj string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.companies {
		if c.CNPJ == cnpj {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r companyRepo) Update(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r companyRepo) UpdateAlertSettings(_ context.Context, companyID string, settings entity.AlertSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[companyID]
	if !ok {
		return domain.ErrNotFound
	}
	c.AlertSettings = settings
	return nil
}

func (r companyRepo) ListActive(_ context.Context) ([]*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		if c.Status == entity.CompanyStatusActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r userRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.CompanyID == companyID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.products {
		if other.CompanyID == p.CompanyID && other.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r productRepo) GetByCompanyAndCode(_ context.Context, companyID, code string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.CompanyID == companyID && p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.s.products {
		if other.ID != p.ID && other.CompanyID == p.CompanyID && other.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	cp.Pmed = stored.Pmed // igual que en postgres: solo UpdatePmed cambia el pmed
	r.s.products[p.ID] = &cp
	return nil
}

func (r productRepo) UpdatePmed(_ context.Context, productID string, pmed decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Pmed = pmed
	return nil
}

func (r productRepo) ListByCompany(_ context.Context, companyID string, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToUpper(strings.TrimSpace(f.Search))
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.CompanyID != companyID {
			continue
		}
		if f.OnlyActive && !p.Active {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToUpper(p.Code), search) &&
			!strings.Contains(strings.ToUpper(p.Description), search) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, f.Limit, f.Offset), nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.CompanyID == c.CompanyID && strings.EqualFold(other.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r categoryRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Category
	for _, c := range r.s.categories {
		if c.CompanyID == companyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type sectorRepo struct{ s *Store }

func (r sectorRepo) Create(_ context.Context, sec *entity.Sector) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.sectors {
		if other.CompanyID == sec.CompanyID && strings.EqualFold(other.Name, sec.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *sec
	r.s.sectors[sec.ID] = &cp
	return nil
}

func (r sectorRepo) GetByID(_ context.Context, id string) (*entity.Sector, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sec, ok := r.s.sectors[id]
	if !ok {
		return nil, nil
	}
	cp := *sec
	return &cp, nil
}

func (r sectorRepo) Update(_ context.Context, sec *entity.Sector) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sectors[sec.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sec
	r.s.sectors[sec.ID] = &cp
	return nil
}

func (r sectorRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Sector, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Sector
	for _, sec := range r.s.sectors {
		if sec.CompanyID == companyID {
			cp := *sec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type supplierRepo struct{ s *Store }

func (r supplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.suppliers {
		if sup.CNPJ != "" && other.CompanyID == sup.CompanyID && other.CNPJ == sup.CNPJ {
			return domain.ErrDuplicate
		}
	}
	cp := *sup
	r.s.suppliers[sup.ID] = &cp
	return nil
}

func (r supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *sup
	return &cp, nil
}

func (r supplierRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Supplier
	for _, sup := range r.s.suppliers {
		if sup.CompanyID == companyID {
			cp := *sup
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
