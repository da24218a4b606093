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

// =============================================================================
// MOVIMIENTOS
// =============================================================================

// MovementRepo movimientos en memoria.
type MovementRepo struct{ v *view }

var _ repository.MovementRepository = (*MovementRepo)(nil)

// Create registra el movimiento dentro de la transacción.
func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.write("movement.create", func(st *state) error {
		st.movements[m.ID] = *m
		st.next(m.ID)
		return nil
	})
}

// GetByID devuelve el movimiento o nil si no existe.
func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.v.read(func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

// Delete borra el movimiento; un id inexistente no es error.
func (r *MovementRepo) Delete(_ context.Context, id string) error {
	return r.v.write("movement.delete", func(st *state) error {
		delete(st.movements, id)
		delete(st.order, id)
		return nil
	})
}

// ListByStockPut devuelve los movimientos de una entrada en el orden en que se registraron.
func (r *MovementRepo) ListByStockPut(_ context.Context, stockPutID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.v.read(func(st *state) error {
		for _, l := range sortedLinks(st, stockPutID) {
			if m, ok := st.movements[l.MovementID]; ok {
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

// List ordena del más reciente al más antiguo.
func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int, error) {
	var rows []*entity.Movement
	err := r.v.read(func(st *state) error {
		name := strings.ToLower(filter.Name)
		for id := range st.movements {
			m := st.movements[id]
			if filter.Kind != 0 && m.Kind != filter.Kind {
				continue
			}
			if name != "" && !strings.Contains(strings.ToLower(m.Name), name) {
				continue
			}
			if filter.CategoryID != "" && m.CategoryID != filter.CategoryID {
				continue
			}
			rows = append(rows, &m)
		}
		sort.Slice(rows, func(i, j int) bool { return st.order[rows[i].ID] > st.order[rows[j].ID] })
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page(rows, limit, offset), len(rows), nil
}

// =============================================================================
// CABECERAS DE ENTRADA
// =============================================================================

// StockPutRepo cabeceras de entrada en memoria.
type StockPutRepo struct{ v *view }

var _ repository.StockPutRepository = (*StockPutRepo)(nil)

// Create rechaza números repetidos igual que el índice único de stock_put.num.
func (r *StockPutRepo) Create(_ context.Context, p *entity.StockPut) error {
	return r.v.write("stock_put.create", func(st *state) error {
		for _, cur := range st.puts {
			if cur.Num == p.Num {
				return fmt.Errorf("%w: número de entrada %s repetido", domain.ErrConflict, p.Num)
			}
		}
		st.puts[p.ID] = *p
		st.next(p.ID)
		return nil
	})
}

// GetForUpdate igual que GetByID: Run ya serializa las transacciones.
func (r *StockPutRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockPut, error) {
	return r.GetByID(ctx, id)
}

// GetByID devuelve la cabecera o nil si no existe.
func (r *StockPutRepo) GetByID(_ context.Context, id string) (*entity.StockPut, error) {
	var out *entity.StockPut
	err := r.v.read(func(st *state) error {
		if p, ok := st.puts[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// Delete borra la cabecera; un id inexistente no es error.
func (r *StockPutRepo) Delete(_ context.Context, id string) error {
	return r.v.write("stock_put.delete", func(st *state) error {
		delete(st.puts, id)
		delete(st.order, id)
		return nil
	})
}

// List ordena de la entrada más reciente a la más antigua.
func (r *StockPutRepo) List(_ context.Context, filter repository.StockPutFilter, limit, offset int) ([]*entity.StockPut, int, error) {
	var rows []*entity.StockPut
	err := r.v.read(func(st *state) error {
		num := strings.ToLower(filter.Num)
		custodian := strings.ToLower(filter.Custodian)
		for id := range st.puts {
			p := st.puts[id]
			if num != "" && !strings.Contains(strings.ToLower(p.Num), num) {
				continue
			}
			if custodian != "" && !strings.Contains(strings.ToLower(p.Custodian), custodian) {
				continue
			}
			rows = append(rows, &p)
		}
		sort.Slice(rows, func(i, j int) bool { return st.order[rows[i].ID] > st.order[rows[j].ID] })
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page(rows, limit, offset), len(rows), nil
}

// =============================================================================
// ENLACES MOVIMIENTO - CABECERA
// =============================================================================

// GoodsBelongRepo enlaces en memoria.
type GoodsBelongRepo struct{ v *view }

var _ repository.GoodsBelongRepository = (*GoodsBelongRepo)(nil)

// Create registra el enlace entre cabecera y movimiento.
func (r *GoodsBelongRepo) Create(_ context.Context, l *entity.GoodsBelong) error {
	return r.v.write("goods_belong.create", func(st *state) error {
		st.links[l.ID] = *l
		st.next(l.ID)
		return nil
	})
}

// ListByStockPut devuelve los enlaces de una entrada en orden de inserción.
func (r *GoodsBelongRepo) ListByStockPut(_ context.Context, stockPutID string) ([]*entity.GoodsBelong, error) {
	var out []*entity.GoodsBelong
	err := r.v.read(func(st *state) error {
		out = sortedLinks(st, stockPutID)
		return nil
	})
	return out, err
}

// Delete borra el enlace; un id inexistente no es error.
func (r *GoodsBelongRepo) Delete(_ context.Context, id string) error {
	return r.v.write("goods_belong.delete", func(st *state) error {
		delete(st.links, id)
		delete(st.order, id)
		return nil
	})
}

func sortedLinks(st *state, stockPutID string) []*entity.GoodsBelong {
	var out []*entity.GoodsBelong
	for id := range st.links {
		l := st.links[id]
		if l.StockPutID == stockPutID {
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return st.order[out[i].ID] < st.order[out[j].ID] })
	return out
}
