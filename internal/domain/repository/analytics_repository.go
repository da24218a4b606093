package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OverviewResult totales para las tarjetas del dashboard.
type OverviewResult struct {
	InboundCount      int
	MonthInboundCount int
	StockValue        decimal.Decimal
	TotalConsumption  decimal.Decimal
}

// DailyQuantity cantidad movida en un día (fecha YYYY-MM-DD).
type DailyQuantity struct {
	Date     string
	Quantity int64
}

// CategoryQuantity cantidad movida agrupada por nombre de categoría.
type CategoryQuantity struct {
	Name     string
	Quantity int64
}

// LowStockRow saldo con pocas unidades.
type LowStockRow struct {
	ID           string
	Name         string
	CategoryName string // vacío si el saldo no tiene categoría
	Quantity     int64
	Unit         string
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
type AnalyticsRepository interface {
	GetOverview(ctx context.Context, monthStart time.Time) (*OverviewResult, error)
	// GetDailyQuantity suma por día las cantidades de los movimientos de tipo kind desde from.
	GetDailyQuantity(ctx context.Context, kind int, from time.Time) ([]DailyQuantity, error)
	// GetQuantityByCategory suma las cantidades de los movimientos de tipo kind por categoría.
	// Los movimientos sin categoría no cuentan.
	GetQuantityByCategory(ctx context.Context, kind int) ([]CategoryQuantity, error)
	// GetLowStock devuelve hasta limit saldos con 0 < cantidad <= threshold, de menor a mayor cantidad.
	GetLowStock(ctx context.Context, threshold int64, limit int) ([]LowStockRow, error)
}
