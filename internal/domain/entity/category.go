package entity

import "time"

// Category tipo de consumible (dato maestro, solo lectura para el libro).
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
