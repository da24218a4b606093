package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InboundItemRequest línea de una entrada.
type InboundItemRequest struct {
	Name       string          `json:"name"`
	CategoryID string          `json:"type_id,omitempty"`
	Spec       string          `json:"type,omitempty"`
	Quantity   int64           `json:"amount"`
	Unit       string          `json:"unit,omitempty"`
	UnitCost   decimal.Decimal `json:"price"`
}

// CreateInboundRequest body para POST /api/inbounds.
type CreateInboundRequest struct {
	WarehouseID string               `json:"stock_id"`
	Custodian   string               `json:"custodian,omitempty"`
	PutUser     string               `json:"put_user,omitempty"`
	Content     string               `json:"content,omitempty"`
	Items       []InboundItemRequest `json:"items"`
}

// InboundResponse cabecera de una entrada.
type InboundResponse struct {
	ID            string          `json:"id"`
	Num           string          `json:"num"`
	Price         decimal.Decimal `json:"price"`
	Custodian     string          `json:"custodian"`
	PutUser       string          `json:"put_user"`
	Content       string          `json:"content"`
	WarehouseID   string          `json:"stock_id"`
	WarehouseName *string         `json:"storehouse_name"`
	CreatedAt     time.Time       `json:"create_date"`
}

// InboundDetailResponse cabecera con sus movimientos.
type InboundDetailResponse struct {
	InboundResponse
	Items []MovementResponse `json:"items"`
}

// InboundListResponse lista paginada de entradas.
type InboundListResponse struct {
	Records []InboundResponse `json:"records"`
	PageResponse
}

// MovementResponse movimiento de inventario (entrada o salida).
type MovementResponse struct {
	ID            string          `json:"id"`
	Kind          int             `json:"is_in"`
	StatusText    string          `json:"status_text"`
	Name          string          `json:"name"`
	CategoryID    string          `json:"type_id"`
	CategoryName  *string         `json:"type_name"`
	Spec          string          `json:"type"`
	Quantity      int64           `json:"amount"`
	Unit          string          `json:"unit"`
	UnitCost      decimal.Decimal `json:"price"`
	WarehouseID   string          `json:"stock_id"`
	WarehouseName *string         `json:"storehouse_name"`
	CreatedAt     time.Time       `json:"create_date"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Records []MovementResponse `json:"records"`
	PageResponse
}

// BalanceResponse saldo en bodega.
type BalanceResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CategoryID    string          `json:"type_id"`
	CategoryName  *string         `json:"type_name"`
	Spec          string          `json:"type"`
	Quantity      int64           `json:"amount"`
	Unit          string          `json:"unit"`
	UnitCost      decimal.Decimal `json:"price"`
	Content       string          `json:"content"`
	WarehouseID   string          `json:"stock_id"`
	WarehouseName *string         `json:"storehouse_name"`
	CreatedAt     time.Time       `json:"create_date"`
}

// BalanceListResponse lista paginada de saldos.
type BalanceListResponse struct {
	Records []BalanceResponse `json:"records"`
	PageResponse
}

// BalanceSummaryDTO fila agregada del resumen de existencias.
// No es el saldo autoritativo por identidad; es una proyección de lectura.
type BalanceSummaryDTO struct {
	Name         string          `json:"name"`
	Spec         string          `json:"type"`
	CategoryID   string          `json:"type_id"`
	CategoryName *string         `json:"type_name"`
	Unit         string          `json:"unit"`
	TotalAmount  int64           `json:"total_amount"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
}
