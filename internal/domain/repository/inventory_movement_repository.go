package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros del detalle de movimientos.
type MovementFilter struct {
	Name       string
	CategoryID string
	Kind       int // 0 = entradas y salidas
}

// MovementRepository define el puerto de persistencia para movimientos (stock_info kind 1/2).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	Delete(ctx context.Context, id string) error
	ListByStockPut(ctx context.Context, stockPutID string) ([]*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.Movement, int, error)
}
