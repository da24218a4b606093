package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CategoryRepository consulta de categorías (dato maestro de solo lectura).
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Category, error)
}
