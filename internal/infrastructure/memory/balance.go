package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// BalanceRepo saldos en memoria.
type BalanceRepo struct{ v *view }

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// FindForUpdate aplica la misma regla que la consulta SQL: nombre y bodega siempre; categoría y especificación
// solo si vienen informadas. Entre varios candidatos gana el que también tiene vacíos esos campos y luego el más antiguo.
func (r *BalanceRepo) FindForUpdate(_ context.Context, key entity.BalanceKey) (*entity.Balance, error) {
	var out *entity.Balance
	err := r.v.read(func(st *state) error {
		var best *entity.Balance
		bestRank := -1
		for id := range st.balances {
			b := st.balances[id]
			if b.Name != key.Name || b.WarehouseID != key.WarehouseID {
				continue
			}
			if key.CategoryID != "" && b.CategoryID != key.CategoryID {
				continue
			}
			if key.Spec != "" && b.Spec != key.Spec {
				continue
			}
			rank := 0
			if key.CategoryID == "" && b.CategoryID == "" {
				rank++
			}
			if key.Spec == "" && b.Spec == "" {
				rank++
			}
			if best == nil || rank > bestRank || (rank == bestRank && st.order[b.ID] < st.order[best.ID]) {
				cp := b
				best, bestRank = &cp, rank
			}
		}
		out = best
		return nil
	})
	return out, err
}

// InsertIfAbsent no hace nada si ya existe un saldo con exactamente la misma identidad.
func (r *BalanceRepo) InsertIfAbsent(_ context.Context, balance *entity.Balance) error {
	return r.v.write("balance.insert", func(st *state) error {
		for _, b := range st.balances {
			if b.Name == balance.Name && b.WarehouseID == balance.WarehouseID &&
				b.CategoryID == balance.CategoryID && b.Spec == balance.Spec {
				return nil
			}
		}
		cp := *balance
		cp.Version = 0
		st.balances[cp.ID] = cp
		st.next(cp.ID)
		return nil
	})
}

// Update escribe el saldo si la versión coincide e incrementa la versión.
func (r *BalanceRepo) Update(_ context.Context, balance *entity.Balance) error {
	return r.v.write("balance.update", func(st *state) error {
		cur, ok := st.balances[balance.ID]
		if !ok || cur.Version != balance.Version {
			return fmt.Errorf("%w: saldo %s modificado por otra transacción", domain.ErrConflict, balance.ID)
		}
		if balance.Quantity < 0 {
			return fmt.Errorf("%w: cantidad negativa en saldo %s", domain.ErrInvariantViolation, balance.ID)
		}
		balance.Version++
		st.balances[balance.ID] = *balance
		return nil
	})
}

// GetByID devuelve el saldo o nil si no existe.
func (r *BalanceRepo) GetByID(_ context.Context, id string) (*entity.Balance, error) {
	var out *entity.Balance
	err := r.v.read(func(st *state) error {
		if b, ok := st.balances[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

// List ordena del más reciente al más antiguo.
func (r *BalanceRepo) List(_ context.Context, filter repository.BalanceFilter, limit, offset int) ([]*entity.Balance, int, error) {
	var rows []*entity.Balance
	err := r.v.read(func(st *state) error {
		name := strings.ToLower(filter.Name)
		for id := range st.balances {
			b := st.balances[id]
			if name != "" && !strings.Contains(strings.ToLower(b.Name), name) {
				continue
			}
			if filter.CategoryID != "" && b.CategoryID != filter.CategoryID {
				continue
			}
			if filter.WarehouseID != "" && b.WarehouseID != filter.WarehouseID {
				continue
			}
			rows = append(rows, &b)
		}
		sort.Slice(rows, func(i, j int) bool { return st.order[rows[i].ID] > st.order[rows[j].ID] })
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page(rows, limit, offset), len(rows), nil
}

// Summary agrupa por (nombre, especificación, categoría, unidad) con suma de cantidades y promedio simple del costo.
func (r *BalanceRepo) Summary(_ context.Context, warehouseID string) ([]repository.BalanceSummaryRow, error) {
	type group struct {
		row   repository.BalanceSummaryRow
		costs decimal.Decimal
		n     int64
	}
	groups := map[[4]string]*group{}
	err := r.v.read(func(st *state) error {
		for _, b := range st.balances {
			if warehouseID != "" && b.WarehouseID != warehouseID {
				continue
			}
			k := [4]string{b.Name, b.Spec, b.CategoryID, b.Unit}
			g, ok := groups[k]
			if !ok {
				g = &group{row: repository.BalanceSummaryRow{Name: b.Name, Spec: b.Spec, CategoryID: b.CategoryID, Unit: b.Unit}}
				groups[k] = g
			}
			g.row.TotalQuantity += b.Quantity
			g.costs = g.costs.Add(b.UnitCost)
			g.n++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.BalanceSummaryRow, 0, len(groups))
	for _, g := range groups {
		g.row.AvgUnitCost = g.costs.Div(decimal.NewFromInt(g.n)).Round(2)
		out = append(out, g.row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Spec != b.Spec {
			return a.Spec < b.Spec
		}
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		return a.Unit < b.Unit
	})
	return out, nil
}
