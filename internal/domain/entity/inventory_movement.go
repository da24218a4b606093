package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement instantánea inmutable de un movimiento de inventario (kind 1 entrada, 2 salida).
type Movement struct {
	ID          string
	Kind        int
	Name        string
	CategoryID  string
	Spec        string
	Quantity    int64
	UnitCost    decimal.Decimal
	Unit        string
	WarehouseID string
	CreatedAt   time.Time
}

// Key identidad del saldo al que corresponde el movimiento.
func (m *Movement) Key() BalanceKey {
	return BalanceKey{Name: m.Name, CategoryID: m.CategoryID, Spec: m.Spec, WarehouseID: m.WarehouseID}
}
