package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvariantViolation = errors.New("violación de invariante del libro de inventario")
	ErrConflict           = errors.New("conflicto de concurrencia, reintente la operación")
	ErrStorage            = errors.New("almacenamiento no disponible")
	ErrUnauthorized       = errors.New("no autorizado")
)
