package inventory

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// CostPlaces decimales del costo unitario (convención monetaria).
const CostPlaces = 2

// MaxQuantity cantidad máxima de una línea de entrada o solicitud.
const MaxQuantity int64 = 1_000_000_000

// MaxAmount mayor importe representable en las columnas NUMERIC(12,2) (costo unitario, línea, total).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ApplyMovement implementa el costo promedio ponderado (servicio de dominio, sin I/O).
// NuevoCosto = ((CantActual * CostoActual) + (CantEntrada * CostoEntrada)) / (CantActual + CantEntrada)
// Con saldo en cero el costo de la entrada se toma redondeado a CostPlaces.
func ApplyMovement(cantActual int64, costoActual decimal.Decimal, cantEntrada int64, costoEntrada decimal.Decimal) (int64, decimal.Decimal, error) {
	if cantEntrada < 0 {
		return 0, decimal.Zero, fmt.Errorf("%w: cantidad de entrada negativa (%d)", domain.ErrInvariantViolation, cantEntrada)
	}
	if cantActual < 0 {
		return 0, decimal.Zero, fmt.Errorf("%w: saldo negativo (%d)", domain.ErrInvariantViolation, cantActual)
	}
	if costoEntrada.IsNegative() || costoActual.IsNegative() {
		return 0, decimal.Zero, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvariantViolation)
	}
	if cantEntrada > math.MaxInt64-cantActual {
		return 0, decimal.Zero, fmt.Errorf("%w: desbordamiento de cantidad (%d + %d)", domain.ErrInvariantViolation, cantActual, cantEntrada)
	}

	nuevaCant := cantActual + cantEntrada
	if cantActual == 0 {
		return nuevaCant, costoEntrada.Round(CostPlaces), nil
	}
	// cantActual > 0 garantiza nuevaCant > 0
	num := costoActual.Mul(decimal.NewFromInt(cantActual)).
		Add(costoEntrada.Mul(decimal.NewFromInt(cantEntrada)))
	return nuevaCant, num.Div(decimal.NewFromInt(nuevaCant)).Round(CostPlaces), nil
}

// LineTotal valor extendido de una línea: cantidad × costo unitario, a 2 decimales.
func LineTotal(qty int64, unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(qty)).Round(CostPlaces)
}

// ValidateLine verifica una línea antes de persistirla: cantidad en (0, MaxQuantity], costo no negativo
// con a lo sumo CostPlaces decimales, costo y total de línea dentro de MaxAmount. Devuelve domain.ErrInvalidInput.
func ValidateLine(qty int64, unitCost decimal.Decimal) error {
	switch {
	case qty <= 0:
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	case qty > MaxQuantity:
		return fmt.Errorf("%w: la cantidad supera el máximo (%d)", domain.ErrInvalidInput, MaxQuantity)
	case unitCost.IsNegative():
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	case !unitCost.Equal(unitCost.Round(CostPlaces)):
		return fmt.Errorf("%w: el costo unitario admite a lo sumo %d decimales", domain.ErrInvalidInput, CostPlaces)
	case unitCost.GreaterThan(MaxAmount):
		return fmt.Errorf("%w: costo unitario fuera de rango", domain.ErrInvalidInput)
	case LineTotal(qty, unitCost).GreaterThan(MaxAmount):
		return fmt.Errorf("%w: el total de la línea supera %s", domain.ErrInvalidInput, MaxAmount.StringFixed(CostPlaces))
	}
	return nil
}
