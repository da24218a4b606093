package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// mapError traduce errores del driver a la taxonomía del dominio.
// Serialización y deadlock son conflictos reintentables y un CHECK violado es una invariante rota.
// Texto inválido o un número fuera de rango de la columna son entrada inválida.
// La cancelación del contexto se devuelve tal cual; el resto es un fallo de almacenamiento.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %s: %s", domain.ErrConflict, op, pgErr.Message)
		case codeCheckViolation:
			return fmt.Errorf("%w: %s: %s", domain.ErrInvariantViolation, op, pgErr.ConstraintName)
		case codeInvalidText, codeNumericOutOfRange:
			return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, op, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
}

// nullable convierte "" en NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
