package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de fila en stock_info (columna kind).
const (
	KindBalance  = 0 // saldo en bodega
	KindInbound  = 1 // movimiento de entrada
	KindOutbound = 2 // movimiento de salida (reservado, ningún flujo lo genera)
)

// BalanceKey identidad de un saldo: nombre, categoría, especificación y bodega.
// CategoryID y Spec vacíos significan "no informado".
type BalanceKey struct {
	Name        string
	CategoryID  string
	Spec        string
	WarehouseID string
}

// Balance saldo actual de un artículo en una bodega con su costo promedio ponderado.
type Balance struct {
	ID          string
	Name        string
	CategoryID  string
	Spec        string
	WarehouseID string
	Quantity    int64
	UnitCost    decimal.Decimal
	Unit        string
	Content     string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key devuelve la identidad del saldo.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{Name: b.Name, CategoryID: b.CategoryID, Spec: b.Spec, WarehouseID: b.WarehouseID}
}

// Debit descuenta qty del saldo sin bajar de cero. El costo unitario no cambia.
func (b *Balance) Debit(qty int64) {
	b.Quantity -= qty
	if b.Quantity < 0 {
		b.Quantity = 0
	}
}
