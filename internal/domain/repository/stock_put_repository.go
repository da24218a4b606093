package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockPutFilter filtros del listado de entradas (subcadenas, sin distinguir mayúsculas).
type StockPutFilter struct {
	Num       string
	Custodian string
}

// StockPutRepository puerto de persistencia de cabeceras de entrada.
type StockPutRepository interface {
	// Create falla con domain.ErrConflict si el número ya existe.
	Create(ctx context.Context, put *entity.StockPut) error
	// GetForUpdate bloquea la cabecera para su eliminación. nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockPut, error)
	GetByID(ctx context.Context, id string) (*entity.StockPut, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter StockPutFilter, limit, offset int) ([]*entity.StockPut, int, error)
}

// GoodsBelongRepository puerto de persistencia de enlaces movimiento-cabecera.
type GoodsBelongRepository interface {
	Create(ctx context.Context, link *entity.GoodsBelong) error
	ListByStockPut(ctx context.Context, stockPutID string) ([]*entity.GoodsBelong, error)
	Delete(ctx context.Context, id string) error
}
