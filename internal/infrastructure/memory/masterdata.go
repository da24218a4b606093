package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// WarehouseRepo bodegas registradas con AddWarehouse.
type WarehouseRepo struct{ s *Store }

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// GetByID devuelve la bodega o nil si no está registrada.
func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// CategoryRepo categorías registradas con AddCategory.
type CategoryRepo struct{ s *Store }

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// GetByID devuelve la categoría o nil si no está registrada.
func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// AnalyticsRepo totales del dashboard calculados sobre el estado confirmado.
type AnalyticsRepo struct{ v *view }

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// GetOverview cuenta entradas (total y desde monthStart) y valora saldos y salidas.
func (r *AnalyticsRepo) GetOverview(_ context.Context, monthStart time.Time) (*repository.OverviewResult, error) {
	res := &repository.OverviewResult{StockValue: decimal.Zero, TotalConsumption: decimal.Zero}
	err := r.v.read(func(st *state) error {
		for _, p := range st.puts {
			res.InboundCount++
			if !p.CreatedAt.Before(monthStart) {
				res.MonthInboundCount++
			}
		}
		for _, b := range st.balances {
			res.StockValue = res.StockValue.Add(b.UnitCost.Mul(decimal.NewFromInt(b.Quantity)))
		}
		for _, m := range st.movements {
			if m.Kind == entity.KindOutbound {
				res.TotalConsumption = res.TotalConsumption.Add(m.UnitCost.Mul(decimal.NewFromInt(m.Quantity)))
			}
		}
		return nil
	})
	return res, err
}

// GetDailyQuantity agrupa las cantidades de los movimientos de tipo kind por día en la zona horaria de from.
func (r *AnalyticsRepo) GetDailyQuantity(_ context.Context, kind int, from time.Time) ([]repository.DailyQuantity, error) {
	byDay := map[string]int64{}
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.Kind != kind || m.CreatedAt.Before(from) {
				continue
			}
			byDay[m.CreatedAt.In(from.Location()).Format("2006-01-02")] += m.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.DailyQuantity, 0, len(byDay))
	for d, q := range byDay {
		out = append(out, repository.DailyQuantity{Date: d, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// GetQuantityByCategory suma las cantidades de los movimientos de tipo kind por nombre de categoría.
func (r *AnalyticsRepo) GetQuantityByCategory(_ context.Context, kind int) ([]repository.CategoryQuantity, error) {
	byName := map[string]int64{}
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.Kind != kind {
				continue
			}
			if c, ok := r.v.s.categories[m.CategoryID]; ok {
				byName[c.Name] += m.Quantity
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.CategoryQuantity, 0, len(byName))
	for n, q := range byName {
		out = append(out, repository.CategoryQuantity{Name: n, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetLowStock devuelve hasta limit saldos con 0 < cantidad <= threshold, de menor a mayor cantidad.
func (r *AnalyticsRepo) GetLowStock(_ context.Context, threshold int64, limit int) ([]repository.LowStockRow, error) {
	var out []repository.LowStockRow
	err := r.v.read(func(st *state) error {
		for _, b := range st.balances {
			if b.Quantity <= 0 || b.Quantity > threshold {
				continue
			}
			row := repository.LowStockRow{ID: b.ID, Name: b.Name, Quantity: b.Quantity, Unit: b.Unit}
			if c, ok := r.v.s.categories[b.CategoryID]; ok {
				row.CategoryName = c.Name
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
