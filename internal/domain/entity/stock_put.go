package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPut cabecera de una transacción de entrada (recepción en bodega).
type StockPut struct {
	ID          string
	Num         string          // PUT-<milisegundos>, único
	TotalPrice  decimal.Decimal // Σ cantidad × costo unitario
	Custodian   string
	PutUser     string
	Content     string
	WarehouseID string
	CreatedAt   time.Time
}

// GoodsBelong enlace de auditoría entre un movimiento y su cabecera.
type GoodsBelong struct {
	ID         string
	MovementID string
	StockPutID string
	Quantity   int64
	TotalPrice decimal.Decimal // cantidad × costo unitario
	CreatedAt  time.Time
}
