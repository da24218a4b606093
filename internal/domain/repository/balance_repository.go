package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BalanceFilter filtros del listado de saldos en bodega.
type BalanceFilter struct {
	Name        string // subcadena, sin distinguir mayúsculas
	CategoryID  string
	WarehouseID string
}

// BalanceSummaryRow proyección agregada por (nombre, especificación, categoría, unidad).
type BalanceSummaryRow struct {
	Name          string
	Spec          string
	CategoryID    string
	Unit          string
	TotalQuantity int64
	AvgUnitCost   decimal.Decimal
}

// BalanceRepository puerto de persistencia de saldos (stock_info kind=0).
// Usado dentro de transacciones para garantizar consistencia.
type BalanceRepository interface {
	// FindForUpdate busca el saldo por identidad y bloquea la fila (SELECT FOR UPDATE).
	// Devuelve nil, nil si no existe.
	FindForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.Balance, error)
	// InsertIfAbsent crea el saldo en cero si la identidad no existe (ON CONFLICT DO NOTHING).
	InsertIfAbsent(ctx context.Context, balance *entity.Balance) error
	// Update escribe cantidad y costo si la versión coincide; si no, domain.ErrConflict.
	Update(ctx context.Context, balance *entity.Balance) error
	GetByID(ctx context.Context, id string) (*entity.Balance, error)
	List(ctx context.Context, filter BalanceFilter, limit, offset int) ([]*entity.Balance, int, error)
	Summary(ctx context.Context, warehouseID string) ([]BalanceSummaryRow, error)
}
