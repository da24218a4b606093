package dto

import "github.com/shopspring/decimal"

// DashboardOverviewDTO respuesta de GET /api/dashboard/overview.
type DashboardOverviewDTO struct {
	InboundCount      int             `json:"inbound_count"`
	MonthInboundCount int             `json:"month_inbound_count"`
	StockValue        decimal.Decimal `json:"stock_value"`       // Σ cantidad × costo de los saldos
	TotalConsumption  decimal.Decimal `json:"total_consumption"` // Σ salidas (sin flujo de salidas: 0)
	DateLabel         string          `json:"date_label"`        // ej: "Octubre 2026"
}

// DailyQuantityDTO punto de las series diarias de entradas y salidas.
type DailyQuantityDTO struct {
	Date   string `json:"date"` // MM-DD
	Amount int64  `json:"amount"`
}

// TypeQuantityDTO cantidad acumulada de una categoría.
type TypeQuantityDTO struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// LowStockDTO saldo con pocas unidades.
type LowStockDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"` // nombre de la categoría
	Amount int64  `json:"amount"`
	Unit   string `json:"unit"`
}

// StockBoardDTO respuesta de GET /api/dashboard/board: todas las vistas del dashboard juntas.
type StockBoardDTO struct {
	Overview       *DashboardOverviewDTO `json:"overview"`
	DailyInbound   []DailyQuantityDTO    `json:"daily_inbound"`
	DailyOutbound  []DailyQuantityDTO    `json:"daily_outbound"`
	InboundByType  []TypeQuantityDTO     `json:"inbound_by_type"`
	OutboundByType []TypeQuantityDTO     `json:"outbound_by_type"`
	LowStock       []LowStockDTO         `json:"low_stock"`
}
