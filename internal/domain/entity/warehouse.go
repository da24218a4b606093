package entity

import "time"

// Warehouse bodega donde se almacena inventario (dato maestro, solo lectura para el libro).
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
