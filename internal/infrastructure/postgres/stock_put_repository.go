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

var (
	_ repository.StockPutRepository    = (*StockPutRepo)(nil)
	_ repository.GoodsBelongRepository = (*GoodsBelongRepo)(nil)
)

const stockPutColumns = `id, num, total_price, custodian, put_user, content, warehouse_id, created_at`

// StockPutRepo cabeceras de entrada sobre PostgreSQL (usable con pool o tx).
type StockPutRepo struct {
	q Querier
}

// NewStockPutRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockPutRepository(q Querier) *StockPutRepo {
	return &StockPutRepo{q: q}
}

// Create persiste la cabecera. Un número repetido (índice único de num) es un conflicto reintentable.
func (r *StockPutRepo) Create(ctx context.Context, p *entity.StockPut) error {
	query := `
		INSERT INTO stock_put (id, num, total_price, custodian, put_user, content, warehouse_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Num, p.TotalPrice, p.Custodian, p.PutUser, p.Content, p.WarehouseID, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de entrada %s repetido", domain.ErrConflict, p.Num)
		}
		return mapError("create stock put", err)
	}
	return nil
}

// GetForUpdate obtiene la cabecera y la bloquea hasta el fin de la transacción.
func (r *StockPutRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockPut, error) {
	return r.get(ctx, `SELECT `+stockPutColumns+` FROM stock_put WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockPutRepo) GetByID(ctx context.Context, id string) (*entity.StockPut, error) {
	return r.get(ctx, `SELECT `+stockPutColumns+` FROM stock_put WHERE id = $1`, id)
}

func (r *StockPutRepo) get(ctx context.Context, query, id string) (*entity.StockPut, error) {
	p, err := scanStockPut(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock put", err)
	}
	return p, nil
}

func (r *StockPutRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stock_put WHERE id = $1`, id)
	return mapError("delete stock put", err)
}

// List lista entradas, la más reciente primero. Filtros por subcadena sin distinguir mayúsculas.
func (r *StockPutRepo) List(ctx context.Context, filter repository.StockPutFilter, limit, offset int) ([]*entity.StockPut, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	pos := 1
	if filter.Num != "" {
		where = append(where, fmt.Sprintf("num ILIKE '%%' || $%d || '%%'", pos))
		args = append(args, filter.Num)
		pos++
	}
	if filter.Custodian != "" {
		where = append(where, fmt.Sprintf("custodian ILIKE '%%' || $%d || '%%'", pos))
		args = append(args, filter.Custodian)
		pos++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_put WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count stock puts", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM stock_put WHERE %s
		ORDER BY created_at DESC, num DESC
		LIMIT $%d OFFSET $%d`, stockPutColumns, cond, pos, pos+1)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, mapError("list stock puts", err)
	}
	defer rows.Close()

	var list []*entity.StockPut
	for rows.Next() {
		p, err := scanStockPut(rows)
		if err != nil {
			return nil, 0, mapError("scan stock put", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list stock puts", err)
	}
	return list, total, nil
}

func scanStockPut(row pgx.Row) (*entity.StockPut, error) {
	var p entity.StockPut
	err := row.Scan(&p.ID, &p.Num, &p.TotalPrice, &p.Custodian, &p.PutUser, &p.Content, &p.WarehouseID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GoodsBelongRepo enlaces movimiento-cabecera sobre PostgreSQL (usable con pool o tx).
type GoodsBelongRepo struct {
	q Querier
}

// NewGoodsBelongRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGoodsBelongRepository(q Querier) *GoodsBelongRepo {
	return &GoodsBelongRepo{q: q}
}

func (r *GoodsBelongRepo) Create(ctx context.Context, l *entity.GoodsBelong) error {
	query := `
		INSERT INTO goods_belong (id, movement_id, stock_put_id, quantity, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, l.ID, l.MovementID, l.StockPutID, l.Quantity, l.TotalPrice, l.CreatedAt)
	return mapError("create goods belong", err)
}

// ListByStockPut devuelve los enlaces en orden de inserción.
func (r *GoodsBelongRepo) ListByStockPut(ctx context.Context, stockPutID string) ([]*entity.GoodsBelong, error) {
	query := `
		SELECT id, movement_id, stock_put_id, quantity, total_price, created_at
		FROM goods_belong WHERE stock_put_id = $1
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, stockPutID)
	if err != nil {
		return nil, mapError("list goods belong", err)
	}
	defer rows.Close()

	var list []*entity.GoodsBelong
	for rows.Next() {
		var l entity.GoodsBelong
		if err := rows.Scan(&l.ID, &l.MovementID, &l.StockPutID, &l.Quantity, &l.TotalPrice, &l.CreatedAt); err != nil {
			return nil, mapError("scan goods belong", err)
		}
		list = append(list, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list goods belong", err)
	}
	return list, nil
}

func (r *GoodsBelongRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM goods_belong WHERE id = $1`, id)
	return mapError("delete goods belong", err)
}
