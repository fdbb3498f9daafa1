package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
	"github.com/jhoicas/almoxarifado-api/pkg/metrics"
)

// pmedScale escala de products.pmed (NUMERIC(18,6)).
const pmedScale = 6

// RegisterMovementUseCase registra entradas y salidas de forma transaccional con bloqueo
// de la fila de saldo (SELECT FOR UPDATE) y Commit/Rollback. Las alertas se evalúan después del commit.
type RegisterMovementUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	sectorRepo   repository.SectorRepository
	supplierRepo repository.SupplierRepository
	observer     MovementObserver
	clock        clock.Clock
	metrics      *metrics.Metrics
	log          zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso. observer y m pueden ser nil.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	sectorRepo repository.SectorRepository,
	supplierRepo repository.SupplierRepository,
	observer MovementObserver,
	clk clock.Clock,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &RegisterMovementUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		sectorRepo:   sectorRepo,
		supplierRepo: supplierRepo,
		observer:     observer,
		clock:        clk,
		metrics:      m,
		log:          log,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// En IN es obligatorio TotalValue o UnitCost (si vienen ambos manda TotalValue).
// En OUT el valor se calcula al PMED vigente y los campos de valor se ignoran.
type MovementInputDTO struct {
	CompanyID     string
	UserID        string
	ProductID     string
	Type          string
	Quantity      decimal.Decimal
	TotalValue    *decimal.Decimal
	UnitCost      *decimal.Decimal
	MovementDate  *time.Time
	SupplierID    string
	SectorID      string
	Person        string
	Destination   string
	InvoiceNumber string
	Notes         string
}

// MovementResult movimiento confirmado y su efecto sobre el producto.
type MovementResult struct {
	Movement *entity.StockMovement
	Balance  decimal.Decimal
	Pmed     decimal.Decimal
}

// RegisterMovement valida, abre la transacción, bloquea el saldo, aplica guard y costo,
// inserta el movimiento, actualiza saldo y auditoría, y confirma. Después notifica al observer.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*MovementResult, error) {
	totalIn, err := validateInput(&input)
	if err != nil {
		uc.metrics.MovementRejected("invalid_input")
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != input.CompanyID {
		return nil, domain.ErrForbidden
	}
	if !product.Active {
		uc.metrics.MovementRejected("inactive_product")
		return nil, domain.ErrInactiveProduct
	}
	if err := uc.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	date := now
	if input.MovementDate != nil && !input.MovementDate.IsZero() {
		date = *input.MovementDate
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		CompanyID:     input.CompanyID,
		ProductID:     input.ProductID,
		Type:          input.Type,
		Quantity:      input.Quantity,
		MovementDate:  date,
		MonthRef:      entity.MonthRefOf(date),
		SupplierID:    input.SupplierID,
		SectorID:      input.SectorID,
		Person:        strings.TrimSpace(input.Person),
		Destination:   strings.TrimSpace(input.Destination),
		InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
		Notes:         strings.TrimSpace(input.Notes),
		CreatedBy:     input.UserID,
		CreatedAt:     now,
	}

	var result MovementResult
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		// Bloquea la fila del saldo (SELECT FOR UPDATE) para serializar movimientos del producto
		balance, err := stockRepo.GetForUpdate(ctx, input.CompanyID, input.ProductID)
		if err != nil {
			return err
		}
		// PMED leído bajo el lock
		locked, err := productRepo.GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}

		pmed := locked.Pmed
		switch input.Type {
		case entity.MovementTypeIN:
			pmed, err = inventory.NextPmed(balance.Quantity, locked.Pmed, input.Quantity, totalIn)
			if err != nil {
				return err
			}
			pmed = pmed.Round(pmedScale)
			if err := productRepo.UpdatePmed(ctx, locked.ID, pmed); err != nil {
				return err
			}
			mov.TotalValue = totalIn
			mov.PmedAtTime = pmed
			balance.Quantity = balance.Quantity.Add(input.Quantity)
		case entity.MovementTypeOUT:
			if err := inventory.CheckOutflow(locked.ID, balance.Quantity, input.Quantity); err != nil {
				return err
			}
			mov.TotalValue = input.Quantity.Mul(pmed).Round(2)
			mov.PmedAtTime = pmed
			balance.Quantity = balance.Quantity.Sub(input.Quantity)
		}

		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		balance.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, balance); err != nil {
			return err
		}
		after, _ := json.Marshal(dto.ToMovementDTO(mov))
		if err := auditRepo.Append(ctx, &entity.AuditLog{
			ID:         uuid.New().String(),
			CompanyID:  input.CompanyID,
			EntityName: entity.AuditEntityMovement,
			EntityID:   mov.ID,
			Action:     entity.AuditActionCreate,
			After:      after,
			Actor:      input.UserID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		locked.Pmed = pmed
		product = locked
		result = MovementResult{Movement: mov, Balance: balance.Quantity, Pmed: pmed}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.MovementRejected("insufficient_stock")
		}
		return nil, err
	}
	uc.metrics.MovementRecorded(mov.Type)

	// Alertas: fail-soft, el movimiento ya está confirmado.
	if uc.observer != nil {
		if err := uc.observer.OnMovementRecorded(ctx, product, mov, result.Balance); err != nil {
			uc.log.Error().Err(err).
				Str("company_id", mov.CompanyID).
				Str("product_id", mov.ProductID).
				Str("movement_id", mov.ID).
				Msg("evaluación de alertas falló; movimiento confirmado")
		}
	}
	return &result, nil
}

// validateInput normaliza la entrada y devuelve el valor total de una entrada.
func validateInput(in *MovementInputDTO) (decimal.Decimal, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if in.Type != entity.MovementTypeIN && in.Type != entity.MovementTypeOUT {
		return decimal.Zero, domain.Invalid("type", "debe ser IN u OUT")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return decimal.Zero, domain.Invalid("product_id", "es obligatorio")
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if in.Type == entity.MovementTypeOUT {
		return decimal.Zero, nil
	}
	switch {
	case in.TotalValue != nil:
		if in.TotalValue.IsNegative() {
			return decimal.Zero, domain.Invalid("total_value", "no puede ser negativo")
		}
		return *in.TotalValue, nil
	case in.UnitCost != nil:
		if in.UnitCost.IsNegative() {
			return decimal.Zero, domain.Invalid("unit_cost", "no puede ser negativo")
		}
		return in.UnitCost.Mul(in.Quantity).Round(2), nil
	default:
		return decimal.Zero, domain.Invalid("total_value", "es obligatorio en entradas")
	}
}

// checkReferences setor y fornecedor, si vienen, deben existir en la empresa.
func (uc *RegisterMovementUseCase) checkReferences(ctx context.Context, in MovementInputDTO) error {
	if in.SectorID != "" && uc.sectorRepo != nil {
		sec, err := uc.sectorRepo.GetByID(ctx, in.SectorID)
		if err != nil {
			return err
		}
		if sec == nil || sec.CompanyID != in.CompanyID {
			return domain.Invalid("sector_id", "setor inexistente")
		}
	}
	if in.SupplierID != "" && uc.supplierRepo != nil {
		sup, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if sup == nil || sup.CompanyID != in.CompanyID {
			return domain.Invalid("supplier_id", "fornecedor inexistente")
		}
	}
	return nil
}
