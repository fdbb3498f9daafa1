// Package memory implementa los repositorios en memoria.
// Lo usan los tests de aplicación y de HTTP; respeta los mismos contratos que postgres
// (nil, nil si no existe; ErrDuplicate en claves únicas; tx con rollback).
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex // serializa transacciones (equivale al lock de fila del saldo)

	companies   map[string]*entity.Company
	users       map[string]*entity.User
	products    map[string]*entity.Product
	categories  map[string]*entity.Category
	sectors     map[string]*entity.Sector
	suppliers   map[string]*entity.Supplier
	balances    map[string]*entity.StockBalance // company|product
	movements   []*entity.StockMovement
	audit       []*entity.AuditLog
	alertStates map[string]*entity.AlertState // company|type|product
	digestItems []*entity.DigestItem
	digestRuns  map[string]*entity.DigestRun // company|date
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		companies:   make(map[string]*entity.Company),
		users:       make(map[string]*entity.User),
		products:    make(map[string]*entity.Product),
		categories:  make(map[string]*entity.Category),
		sectors:     make(map[string]*entity.Sector),
		suppliers:   make(map[string]*entity.Supplier),
		balances:    make(map[string]*entity.StockBalance),
		alertStates: make(map[string]*entity.AlertState),
		digestRuns:  make(map[string]*entity.DigestRun),
	}
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}

func (s *Store) Companies() repository.CompanyRepository       { return companyRepo{s} }
func (s *Store) Users() repository.UserRepository              { return userRepo{s} }
func (s *Store) Products() repository.ProductRepository        { return productRepo{s} }
func (s *Store) Categories() repository.CategoryRepository     { return categoryRepo{s} }
func (s *Store) Sectors() repository.SectorRepository          { return sectorRepo{s} }
func (s *Store) Suppliers() repository.SupplierRepository      { return supplierRepo{s} }
func (s *Store) Stock() repository.StockRepository             { return stockRepo{s} }
func (s *Store) Movements() repository.StockMovementRepository { return movementRepo{s} }
func (s *Store) AuditLogs() repository.AuditLogRepository      { return auditRepo{s} }
func (s *Store) AlertStates() repository.AlertStateRepository  { return alertStateRepo{s} }
func (s *Store) Digests() repository.DigestRepository          { return digestRepo{s} }
func (s *Store) Analytics() repository.AnalyticsRepository     { return analyticsRepo{s} }

// snapshot copia de lo que una transacción de movimiento puede modificar.
type snapshot struct {
	products  map[string]*entity.Product
	balances  map[string]*entity.StockBalance
	movements []*entity.StockMovement
	audit     []*entity.AuditLog
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		products:  make(map[string]*entity.Product, len(s.products)),
		balances:  make(map[string]*entity.StockBalance, len(s.balances)),
		movements: append([]*entity.StockMovement(nil), s.movements...),
		audit:     append([]*entity.AuditLog(nil), s.audit...),
	}
	for k, v := range s.products {
		cp := *v
		snap.products[k] = &cp
	}
	for k, v := range s.balances {
		cp := *v
		snap.balances[k] = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.balances = snap.balances
	s.movements = snap.movements
	s.audit = snap.audit
}

// TxRunner ejecuta fn de forma serializada; si fn falla se restaura el estado previo.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	snap := r.s.takeSnapshot()
	if err := fn(movementRepo{r.s}, stockRepo{r.s}, productRepo{r.s}, auditRepo{r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
