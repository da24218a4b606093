package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateInboundFromRequest adapta el request HTTP al caso de uso CreateInbound(ctx, CreateInboundInput).
// actor es el usuario autenticado; se usa como custodio y receptor cuando el request no los trae.
func (uc *InboundUseCase) CreateInboundFromRequest(ctx context.Context, actor string, in dto.CreateInboundRequest) (*entity.StockPut, error) {
	input := CreateInboundInput{
		WarehouseID: in.WarehouseID,
		Custodian:   in.Custodian,
		PutUser:     in.PutUser,
		Content:     in.Content,
		Items:       make([]InboundItemInput, 0, len(in.Items)),
	}
	if input.Custodian == "" {
		input.Custodian = actor
	}
	if input.PutUser == "" {
		input.PutUser = actor
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, InboundItemInput{
			Name:       it.Name,
			CategoryID: it.CategoryID,
			Spec:       it.Spec,
			Quantity:   it.Quantity,
			Unit:       it.Unit,
			UnitCost:   it.UnitCost,
		})
	}
	return uc.CreateInbound(ctx, input)
}
