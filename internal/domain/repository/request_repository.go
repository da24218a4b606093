package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RequestFilter filtros del listado de solicitudes.
type RequestFilter struct {
	Kind        string
	Num         string
	Status      string
	RequesterID string
}

// RequestRepository puerto de persistencia de solicitudes de compra y de artículos.
type RequestRepository interface {
	// Create guarda cabecera e ítems; domain.ErrConflict si el número ya existe.
	Create(ctx context.Context, req *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	// UpdatePending guarda contenido, estado y aprobación solo si la solicitud sigue pendiente:
	// domain.ErrNotFound si no existe, domain.ErrConflict si otro llamador ya la resolvió.
	UpdatePending(ctx context.Context, req *entity.Request) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter RequestFilter, limit, offset int) ([]*entity.Request, int, error)
}
