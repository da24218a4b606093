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

var _ repository.RequestRepository = (*RequestRepo)(nil)

const requestColumns = `id, kind, num, purchase_num, requester_id, content, status, total_price, approver_id, approved_at, created_at`

// RequestRepo solicitudes de compra y de artículos sobre PostgreSQL.
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

// Create guarda cabecera e ítems en una transacción (savepoint si q ya es una tx).
func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return mapError("begin create request", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO requests (id, kind, num, purchase_num, requester_id, content, status, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.Kind, req.Num, nullable(req.PurchaseNum), req.RequesterID, req.Content, req.Status,
		req.TotalPrice, req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de solicitud %s repetido", domain.ErrConflict, req.Num)
		}
		return mapError("create request", err)
	}

	batch := &pgx.Batch{}
	for i, it := range req.Items {
		batch.Queue(`
			INSERT INTO request_items (id, request_id, line_no, balance_id, name, category_id, spec, quantity, unit, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, req.ID, i+1, nullable(it.BalanceID), it.Name, nullable(it.CategoryID), nullable(it.Spec),
			it.Quantity, it.Unit, it.UnitCost,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapError("create request items", err)
	}
	return mapError("commit create request", tx.Commit(ctx))
}

// GetByID obtiene la solicitud con sus ítems; nil si no existe.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get request", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, balance_id, name, category_id, spec, quantity, unit, unit_cost
		FROM request_items WHERE request_id = $1
		ORDER BY line_no`, id)
	if err != nil {
		return nil, mapError("list request items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.RequestItem
		var balanceID, categoryID, spec *string
		if err := rows.Scan(&it.ID, &it.RequestID, &balanceID, &it.Name, &categoryID, &spec,
			&it.Quantity, &it.Unit, &it.UnitCost); err != nil {
			return nil, mapError("scan request item", err)
		}
		it.BalanceID, it.CategoryID, it.Spec = deref(balanceID), deref(categoryID), deref(spec)
		req.Items = append(req.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list request items", err)
	}
	return req, nil
}

// UpdatePending guarda contenido, estado y aprobación con la condición status = PENDING en el propio UPDATE,
// de modo que dos resoluciones concurrentes no se pisan.
func (r *RequestRepo) UpdatePending(ctx context.Context, req *entity.Request) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE requests SET content = $1, status = $2, approver_id = $3, approved_at = $4
		WHERE id = $5 AND status = $6`,
		req.Content, req.Status, nullable(req.ApproverID), req.ApprovedAt, req.ID, entity.RequestStatusPending,
	)
	if err != nil {
		return mapError("update request", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var status string
	err = r.q.QueryRow(ctx, `SELECT status FROM requests WHERE id = $1`, req.ID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, req.ID)
	}
	if err != nil {
		return mapError("update request", err)
	}
	return fmt.Errorf("%w: la solicitud %s ya está %s", domain.ErrConflict, req.Num, status)
}

// Delete elimina la solicitud; los ítems se borran en cascada.
func (r *RequestRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	return mapError("delete request", err)
}

// List lista solicitudes sin ítems, la más reciente primero.
func (r *RequestRepo) List(ctx context.Context, filter repository.RequestFilter, limit, offset int) ([]*entity.Request, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	pos := 1
	add := func(cond string, v any) {
		where = append(where, fmt.Sprintf(cond, pos))
		args = append(args, v)
		pos++
	}
	if filter.Kind != "" {
		add("kind = $%d", filter.Kind)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.RequesterID != "" {
		add("requester_id = $%d", filter.RequesterID)
	}
	if filter.Num != "" {
		add("num ILIKE '%%' || $%d || '%%'", filter.Num)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM requests WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count requests", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM requests WHERE %s
		ORDER BY created_at DESC, num DESC
		LIMIT $%d OFFSET $%d`, requestColumns, cond, pos, pos+1)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, mapError("list requests", err)
	}
	defer rows.Close()

	var list []*entity.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, mapError("scan request", err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list requests", err)
	}
	return list, total, nil
}

func scanRequest(row pgx.Row) (*entity.Request, error) {
	var req entity.Request
	var purchaseNum, approverID *string
	err := row.Scan(
		&req.ID, &req.Kind, &req.Num, &purchaseNum, &req.RequesterID, &req.Content, &req.Status,
		&req.TotalPrice, &approverID, &req.ApprovedAt, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.PurchaseNum = deref(purchaseNum)
	req.ApproverID = deref(approverID)
	return &req, nil
}
