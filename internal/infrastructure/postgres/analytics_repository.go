package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetOverview cuenta entradas (total y desde monthStart) y valora saldos y salidas (Σ cantidad × costo).
func (r *AnalyticsRepo) GetOverview(ctx context.Context, monthStart time.Time) (*repository.OverviewResult, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM stock_put)                                                  AS inbound_count,
	    (SELECT COUNT(*) FROM stock_put WHERE created_at >= $1)                           AS month_inbound_count,
	    (SELECT COALESCE(SUM(quantity * unit_cost), 0) FROM stock_info WHERE kind = 0)    AS stock_value,
	    (SELECT COALESCE(SUM(quantity * unit_cost), 0) FROM stock_info WHERE kind = 2)    AS total_consumption`
	var res repository.OverviewResult
	err := r.pool.QueryRow(ctx, query, monthStart).Scan(
		&res.InboundCount, &res.MonthInboundCount, &res.StockValue, &res.TotalConsumption,
	)
	if err != nil {
		return nil, mapError("dashboard overview", err)
	}
	return &res, nil
}

// GetDailyQuantity suma las cantidades de los movimientos de tipo kind por día desde from.
// Los días se cortan con el desplazamiento horario de from.
func (r *AnalyticsRepo) GetDailyQuantity(ctx context.Context, kind int, from time.Time) ([]repository.DailyQuantity, error) {
	const query = `
	SELECT to_char((created_at AT TIME ZONE 'UTC') + make_interval(secs => $3), 'YYYY-MM-DD') AS day,
	       SUM(quantity)::bigint
	FROM stock_info
	WHERE kind = $1 AND created_at >= $2
	GROUP BY day
	ORDER BY day`
	_, offset := from.Zone()
	rows, err := r.pool.Query(ctx, query, kind, from, float64(offset))
	if err != nil {
		return nil, mapError("daily quantity", err)
	}
	defer rows.Close()

	var out []repository.DailyQuantity
	for rows.Next() {
		var d repository.DailyQuantity
		if err := rows.Scan(&d.Date, &d.Quantity); err != nil {
			return nil, mapError("scan daily quantity", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("daily quantity", err)
	}
	return out, nil
}

// GetQuantityByCategory suma las cantidades de los movimientos de tipo kind por nombre de categoría.
func (r *AnalyticsRepo) GetQuantityByCategory(ctx context.Context, kind int) ([]repository.CategoryQuantity, error) {
	const query = `
	SELECT c.name, SUM(si.quantity)::bigint
	FROM stock_info si
	JOIN categories c ON c.id = si.category_id
	WHERE si.kind = $1
	GROUP BY c.name
	ORDER BY c.name`
	rows, err := r.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, mapError("quantity by category", err)
	}
	defer rows.Close()

	var out []repository.CategoryQuantity
	for rows.Next() {
		var q repository.CategoryQuantity
		if err := rows.Scan(&q.Name, &q.Quantity); err != nil {
			return nil, mapError("scan quantity by category", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("quantity by category", err)
	}
	return out, nil
}

// GetLowStock lista los saldos con 0 < cantidad <= threshold.
func (r *AnalyticsRepo) GetLowStock(ctx context.Context, threshold int64, limit int) ([]repository.LowStockRow, error) {
	const query = `
	SELECT si.id::text, si.name, COALESCE(c.name, ''), si.quantity, si.unit
	FROM stock_info si
	LEFT JOIN categories c ON c.id = si.category_id
	WHERE si.kind = 0 AND si.quantity > 0 AND si.quantity <= $1
	ORDER BY si.quantity, si.name
	LIMIT $2`
	rows, err := r.pool.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, mapError("low stock", err)
	}
	defer rows.Close()

	var out []repository.LowStockRow
	for rows.Next() {
		var l repository.LowStockRow
		if err := rows.Scan(&l.ID, &l.Name, &l.CategoryName, &l.Quantity, &l.Unit); err != nil {
			return nil, mapError("scan low stock", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("low stock", err)
	}
	return out, nil
}
