package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

const balanceColumns = `id, name, category_id, spec, warehouse_id, quantity, unit_cost, unit, content, version, created_at, updated_at`

// BalanceRepo saldos (stock_info kind=0) sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// FindForUpdate busca por identidad y bloquea la fila. Categoría y especificación nulas actúan como comodín;
// se prefiere la fila que también las tiene nulas y luego la más antigua.
func (r *BalanceRepo) FindForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM stock_info
		WHERE kind = 0 AND warehouse_id = $1 AND name = $2
		  AND ($3::uuid IS NULL OR category_id = $3::uuid)
		  AND ($4::text IS NULL OR spec = $4::text)
		ORDER BY (CASE WHEN $3::uuid IS NULL AND category_id IS NULL THEN 1 ELSE 0 END
		        + CASE WHEN $4::text IS NULL AND spec IS NULL THEN 1 ELSE 0 END) DESC,
		         created_at, id
		LIMIT 1
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, key.WarehouseID, key.Name, nullable(key.CategoryID), nullable(key.Spec)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("find balance for update", err)
	}
	return b, nil
}

// InsertIfAbsent crea el saldo; si el índice único de identidad ya tiene la fila no hace nada.
func (r *BalanceRepo) InsertIfAbsent(ctx context.Context, b *entity.Balance) error {
	query := `
		INSERT INTO stock_info (id, kind, name, category_id, spec, warehouse_id, quantity, unit_cost, unit, content, version, created_at, updated_at)
		VALUES ($1, 0, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11)
		ON CONFLICT DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.Name, nullable(b.CategoryID), nullable(b.Spec), b.WarehouseID,
		b.Quantity, b.UnitCost, b.Unit, b.Content, b.CreatedAt, b.UpdatedAt,
	)
	return mapError("insert balance", err)
}

// Update escribe cantidad y costo solo si la versión leída sigue vigente.
func (r *BalanceRepo) Update(ctx context.Context, b *entity.Balance) error {
	query := `
		UPDATE stock_info
		SET quantity = $1, unit_cost = $2, updated_at = $3, version = version + 1
		WHERE id = $4 AND version = $5 AND kind = 0`
	tag, err := r.q.Exec(ctx, query, b.Quantity, b.UnitCost, b.UpdatedAt, b.ID, b.Version)
	if err != nil {
		return mapError("update balance", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: saldo %s modificado por otra transacción", domain.ErrConflict, b.ID)
	}
	b.Version++
	return nil
}

func (r *BalanceRepo) GetByID(ctx context.Context, id string) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_info WHERE id = $1 AND kind = 0`
	b, err := scanBalance(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get balance", err)
	}
	return b, nil
}

// List lista saldos, el más reciente primero.
func (r *BalanceRepo) List(ctx context.Context, filter repository.BalanceFilter, limit, offset int) ([]*entity.Balance, int, error) {
	where := []string{"kind = 0"}
	args := []any{}
	pos := 1
	if filter.Name != "" {
		where = append(where, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", pos))
		args = append(args, filter.Name)
		pos++
	}
	if filter.CategoryID != "" {
		where = append(where, fmt.Sprintf("category_id = $%d", pos))
		args = append(args, filter.CategoryID)
		pos++
	}
	if filter.WarehouseID != "" {
		where = append(where, fmt.Sprintf("warehouse_id = $%d", pos))
		args = append(args, filter.WarehouseID)
		pos++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_info WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count balances", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM stock_info WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, balanceColumns, cond, pos, pos+1)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, mapError("list balances", err)
	}
	defer rows.Close()

	var list []*entity.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, 0, mapError("scan balance", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list balances", err)
	}
	return list, total, nil
}

// Summary agrupa por (nombre, especificación, categoría, unidad): suma de cantidades y promedio del costo unitario.
func (r *BalanceRepo) Summary(ctx context.Context, warehouseID string) ([]repository.BalanceSummaryRow, error) {
	query := `
		SELECT name, COALESCE(spec, ''), COALESCE(category_id::text, ''), unit,
		       SUM(quantity)::bigint, ROUND(AVG(unit_cost), 2)
		FROM stock_info
		WHERE kind = 0 AND ($1::uuid IS NULL OR warehouse_id = $1::uuid)
		GROUP BY name, spec, category_id, unit
		ORDER BY name, COALESCE(spec, ''), COALESCE(category_id::text, ''), unit`
	rows, err := r.q.Query(ctx, query, nullable(warehouseID))
	if err != nil {
		return nil, mapError("balance summary", err)
	}
	defer rows.Close()

	var out []repository.BalanceSummaryRow
	for rows.Next() {
		var s repository.BalanceSummaryRow
		if err := rows.Scan(&s.Name, &s.Spec, &s.CategoryID, &s.Unit, &s.TotalQuantity, &s.AvgUnitCost); err != nil {
			return nil, mapError("scan balance summary", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("balance summary", err)
	}
	return out, nil
}

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var b entity.Balance
	var categoryID, spec *string
	err := row.Scan(
		&b.ID, &b.Name, &categoryID, &spec, &b.WarehouseID,
		&b.Quantity, &b.UnitCost, &b.Unit, &b.Content, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CategoryID = deref(categoryID)
	b.Spec = deref(spec)
	return &b, nil
}
