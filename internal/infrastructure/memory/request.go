package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// RequestRepo solicitudes en memoria.
type RequestRepo struct{ v *view }

var _ repository.RequestRepository = (*RequestRepo)(nil)

// Create guarda la solicitud con sus artículos.
func (r *RequestRepo) Create(_ context.Context, req *entity.Request) error {
	return r.v.write("request.create", func(st *state) error {
		for _, cur := range st.requests {
			if cur.Num == req.Num {
				return fmt.Errorf("%w: número de solicitud %s repetido", domain.ErrConflict, req.Num)
			}
		}
		st.requests[req.ID] = copyRequest(*req)
		st.next(req.ID)
		return nil
	})
}

// GetByID devuelve una copia de la solicitud o nil si no existe.
func (r *RequestRepo) GetByID(_ context.Context, id string) (*entity.Request, error) {
	var out *entity.Request
	err := r.v.read(func(st *state) error {
		if req, ok := st.requests[id]; ok {
			cp := copyRequest(req)
			out = &cp
		}
		return nil
	})
	return out, err
}

// UpdatePending guarda contenido y estado si la solicitud sigue pendiente; los ítems no cambian después de crearla.
func (r *RequestRepo) UpdatePending(_ context.Context, req *entity.Request) error {
	return r.v.write("request.update", func(st *state) error {
		cur, ok := st.requests[req.ID]
		if !ok {
			return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, req.ID)
		}
		if cur.IsTerminal() {
			return fmt.Errorf("%w: la solicitud %s ya está %s", domain.ErrConflict, cur.Num, cur.Status)
		}
		cur.Content = req.Content
		cur.Status = req.Status
		cur.ApproverID = req.ApproverID
		cur.ApprovedAt = req.ApprovedAt
		st.requests[req.ID] = cur
		return nil
	})
}

// Delete borra la solicitud; un id inexistente no es error.
func (r *RequestRepo) Delete(_ context.Context, id string) error {
	return r.v.write("request.delete", func(st *state) error {
		delete(st.requests, id)
		delete(st.order, id)
		return nil
	})
}

// List ordena de la solicitud más reciente a la más antigua. No incluye ítems.
func (r *RequestRepo) List(_ context.Context, filter repository.RequestFilter, limit, offset int) ([]*entity.Request, int, error) {
	var rows []*entity.Request
	err := r.v.read(func(st *state) error {
		num := strings.ToLower(filter.Num)
		for id := range st.requests {
			req := st.requests[id]
			if filter.Kind != "" && req.Kind != filter.Kind {
				continue
			}
			if filter.Status != "" && req.Status != filter.Status {
				continue
			}
			if filter.RequesterID != "" && req.RequesterID != filter.RequesterID {
				continue
			}
			if num != "" && !strings.Contains(strings.ToLower(req.Num), num) {
				continue
			}
			req.Items = nil
			rows = append(rows, &req)
		}
		sort.Slice(rows, func(i, j int) bool { return st.order[rows[i].ID] > st.order[rows[j].ID] })
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page(rows, limit, offset), len(rows), nil
}

func copyRequest(req entity.Request) entity.Request {
	req.Items = append([]entity.RequestItem(nil), req.Items...)
	if req.ApprovedAt != nil {
		t := *req.ApprovedAt
		req.ApprovedAt = &t
	}
	return req
}
