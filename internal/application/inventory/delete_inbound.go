package inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DeleteInbound revierte y elimina una entrada en una sola transacción.
// Por cada enlace descuenta la cantidad del movimiento del saldo correspondiente (sin bajar de cero),
// borra movimiento y enlace, y al final la cabecera. El costo unitario del saldo no se recalcula.
// Devuelve false y domain.ErrNotFound si la entrada no existe.
func (uc *InboundUseCase) DeleteInbound(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "inventory.DeleteInbound", trace.WithAttributes(
		attribute.String("stock_put.id", id),
	))
	defer span.End()

	if id == "" {
		return false, fmt.Errorf("%w: id requerido", domain.ErrInvalidInput)
	}

	var num string
	var reversed, skipped int
	err := uc.withRetry(ctx, "delete_inbound", func() error {
		reversed, skipped = 0, 0
		return uc.txRunner.Run(ctx, func(
			balanceRepo repository.BalanceRepository,
			movRepo repository.MovementRepository,
			putRepo repository.StockPutRepository,
			linkRepo repository.GoodsBelongRepository,
		) error {
			put, err := putRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if put == nil {
				return fmt.Errorf("%w: entrada %s", domain.ErrNotFound, id)
			}
			num = put.Num

			links, err := linkRepo.ListByStockPut(ctx, put.ID)
			if err != nil {
				return err
			}
			for _, link := range links {
				mov, err := movRepo.GetByID(ctx, link.MovementID)
				if err != nil {
					return err
				}
				if mov != nil {
					balance, err := balanceRepo.FindForUpdate(ctx, mov.Key())
					if err != nil {
						return err
					}
					if balance == nil {
						skipped++
						uc.log.Warn().
							Str("num", put.Num).
							Str("movement_id", mov.ID).
							Str("name", mov.Name).
							Str("warehouse_id", mov.WarehouseID).
							Msg("saldo no encontrado al revertir; se omite el ajuste")
					} else {
						balance.Debit(mov.Quantity)
						if err := balanceRepo.Update(ctx, balance); err != nil {
							return err
						}
						reversed++
					}
					if err := movRepo.Delete(ctx, mov.ID); err != nil {
						return err
					}
				}
				if err := linkRepo.Delete(ctx, link.ID); err != nil {
					return err
				}
			}
			return putRepo.Delete(ctx, put.ID)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	uc.cache.Invalidate(ctx)
	uc.log.Info().
		Str("num", num).
		Int("reversed", reversed).
		Int("skipped", skipped).
		Msg("entrada eliminada")
	return true, nil
}
