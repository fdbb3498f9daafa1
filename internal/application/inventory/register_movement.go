package inventory

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInputDTO).
// Usar desde handlers HTTP o desde otros casos de uso que tengan companyID, userID y dto.RegisterMovementRequest.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	input := MovementInputDTO{
		CompanyID:     companyID,
		UserID:        userID,
		ProductID:     in.ProductID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		TotalValue:    in.TotalValue,
		UnitCost:      in.UnitCost,
		MovementDate:  in.MovementDate,
		SupplierID:    in.SupplierID,
		SectorID:      in.SectorID,
		Person:        in.Person,
		Destination:   in.Destination,
		InvoiceNumber: in.InvoiceNumber,
		Notes:         in.Notes,
	}
	res, err := uc.RegisterMovement(ctx, input)
	if err != nil {
		return nil, err
	}
	out := dto.MovementResponse{
		MovementDTO:   dto.ToMovementDTO(res.Movement),
		ResultBalance: res.Balance,
		ProductPmed:   res.Pmed,
	}
	return &out, nil
}
