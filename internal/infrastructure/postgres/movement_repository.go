package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, kind, name, category_id, spec, quantity, unit_cost, unit, warehouse_id, created_at`

// MovementRepo movimientos (stock_info kind 1/2) sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_info (id, kind, name, category_id, spec, quantity, unit_cost, unit, warehouse_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Kind, m.Name, nullable(m.CategoryID), nullable(m.Spec),
		m.Quantity, m.UnitCost, m.Unit, m.WarehouseID, m.CreatedAt,
	)
	return mapError("create movement", err)
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_info WHERE id = $1 AND kind IN (1, 2)`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get movement", err)
	}
	return m, nil
}

func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stock_info WHERE id = $1 AND kind IN (1, 2)`, id)
	return mapError("delete movement", err)
}

// ListByStockPut devuelve los movimientos de una entrada en el orden en que se registraron.
func (r *MovementRepo) ListByStockPut(ctx context.Context, stockPutID string) ([]*entity.Movement, error) {
	query := `
		SELECT m.id, m.kind, m.name, m.category_id, m.spec, m.quantity, m.unit_cost, m.unit, m.warehouse_id, m.created_at
		FROM goods_belong g
		JOIN stock_info m ON m.id = g.movement_id
		WHERE g.stock_put_id = $1
		ORDER BY g.seq`
	rows, err := r.q.Query(ctx, query, stockPutID)
	if err != nil {
		return nil, mapError("list movements by stock put", err)
	}
	return collectMovements(rows)
}

// List lista movimientos, el más reciente primero. Kind 0 incluye entradas y salidas.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int, error) {
	where := []string{"kind IN (1, 2)"}
	args := []any{}
	pos := 1
	if filter.Kind != 0 {
		where = append(where, fmt.Sprintf("kind = $%d", pos))
		args = append(args, filter.Kind)
		pos++
	}
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
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_info WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count movements", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM stock_info WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, movementColumns, cond, pos, pos+1)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, mapError("list movements", err)
	}
	list, err := collectMovements(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapError("scan movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list movements", err)
	}
	return list, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var categoryID, spec *string
	err := row.Scan(
		&m.ID, &m.Kind, &m.Name, &categoryID, &spec,
		&m.Quantity, &m.UnitCost, &m.Unit, &m.WarehouseID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.CategoryID = deref(categoryID)
	m.Spec = deref(spec)
	return &m, nil
}
