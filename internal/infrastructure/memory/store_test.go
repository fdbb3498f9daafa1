package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

func TestTxRunner_RollbackRestauraEstado(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", Code: "A", Pmed: decimal.NewFromInt(5)}))

	boom := errors.New("boom")
	err := NewTxRunner(s).Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		require.NoError(t, movRepo.Create(ctx, &entity.StockMovement{ID: "m1", CompanyID: "c1", ProductID: "p1"}))
		require.NoError(t, productRepo.UpdatePmed(ctx, "p1", decimal.NewFromInt(99)))
		require.NoError(t, stockRepo.Upsert(ctx, &entity.StockBalance{CompanyID: "c1", ProductID: "p1", Quantity: decimal.NewFromInt(3)}))
		require.NoError(t, auditRepo.Append(ctx, &entity.AuditLog{ID: "a1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	m, _ := s.Movements().GetByID(ctx, "m1")
	assert.Nil(t, m)
	p, _ := s.Products().GetByID(ctx, "p1")
	assert.True(t, p.Pmed.Equal(decimal.NewFromInt(5)))
	b, _ := s.Stock().Get(ctx, "c1", "p1")
	assert.Nil(t, b)
	logs, _ := s.AuditLogs().Find(ctx, repository.AuditFilter{})
	assert.Empty(t, logs)
}

func TestProductRepo_CodigoDuplicadoPorEmpresa(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", Code: "A"}))
	assert.ErrorIs(t, s.Products().Create(ctx, &entity.Product{ID: "p2", CompanyID: "c1", Code: "A"}), domain.ErrDuplicate)
	assert.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p3", CompanyID: "c2", Code: "A"}))
}

func TestDigestRepo_RunUnicoPorDia(t *testing.T) {
	ctx := context.Background()
	s := New()
	run := &entity.DigestRun{CompanyID: "c1", DigestDate: "2026-03-10"}
	require.NoError(t, s.Digests().CreateRun(ctx, run))
	assert.ErrorIs(t, s.Digests().CreateRun(ctx, run), domain.ErrDuplicate)
}

func TestLocker_ExpiraYLibera(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	l := NewLocker(func() time.Time { return now })
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.Acquire(ctx, "k", time.Minute)
	assert.False(t, ok)

	require.NoError(t, release(ctx))
	_, ok, _ = l.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = l.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok, "lock expirado")
}
