// Package request contiene el flujo de solicitudes de compra y de artículos.
// Una solicitud solo cambia de estado (pendiente → aprobada | rechazada); nunca escribe en el libro de inventario.
package request

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Prefijos de numeración por tipo de solicitud.
var numPrefix = map[string]string{
	entity.RequestKindPurchase: "RUR",
	entity.RequestKindGoods:    "REQ",
}

// UseCase casos de uso de solicitudes.
type UseCase struct {
	repo repository.RequestRepository
	log  zerolog.Logger
	now  func() time.Time

	numMu   sync.Mutex
	lastNum int64
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.RequestRepository, log zerolog.Logger) *UseCase {
	return &UseCase{
		repo: repo,
		log:  log.With().Str("component", "request").Logger(),
		now:  time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create registra una solicitud pendiente. kind es entity.RequestKindPurchase o entity.RequestKindGoods.
func (uc *UseCase) Create(ctx context.Context, kind, requesterID string, in dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	prefix, ok := numPrefix[kind]
	if !ok {
		return nil, fmt.Errorf("%w: tipo de solicitud %q", domain.ErrInvalidInput, kind)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos un artículo", domain.ErrInvalidInput)
	}

	now := uc.now().UTC()
	req := &entity.Request{
		ID:          uuid.New().String(),
		Kind:        kind,
		Num:         uc.nextNum(prefix, now),
		RequesterID: requesterID,
		Content:     in.Content,
		Status:      entity.RequestStatusPending,
		TotalPrice:  decimal.Zero,
		CreatedAt:   now,
		Items:       make([]entity.RequestItem, 0, len(in.Items)),
	}
	if kind == entity.RequestKindGoods {
		req.PurchaseNum = in.PurchaseNum
	}
	for i, it := range in.Items {
		if it.Name == "" && it.BalanceID == "" {
			return nil, fmt.Errorf("%w: artículo %d: nombre requerido", domain.ErrInvalidInput, i+1)
		}
		if err := inventory.ValidateLine(it.Quantity, it.UnitCost); err != nil {
			return nil, fmt.Errorf("artículo %d: %w", i+1, err)
		}
		req.Items = append(req.Items, entity.RequestItem{
			ID:         uuid.New().String(),
			RequestID:  req.ID,
			BalanceID:  it.BalanceID,
			Name:       it.Name,
			CategoryID: it.CategoryID,
			Spec:       it.Spec,
			Quantity:   it.Quantity,
			Unit:       it.Unit,
			UnitCost:   it.UnitCost,
		})
		req.TotalPrice = req.TotalPrice.Add(inventory.LineTotal(it.Quantity, it.UnitCost))
	}

	if req.TotalPrice.GreaterThan(inventory.MaxAmount) {
		return nil, fmt.Errorf("%w: el total de la solicitud supera %s", domain.ErrInvalidInput, inventory.MaxAmount.StringFixed(inventory.CostPlaces))
	}

	if err := uc.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("num", req.Num).Str("kind", kind).Int("items", len(req.Items)).Msg("solicitud creada")
	return toResponse(req, true), nil
}

// Get devuelve la solicitud con sus ítems.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(req, true), nil
}

// List lista solicitudes, la más reciente primero.
func (uc *UseCase) List(ctx context.Context, filter repository.RequestFilter, page dto.PageRequest) (*dto.RequestListResponse, error) {
	page.Normalize()
	rows, total, err := uc.repo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	out := &dto.RequestListResponse{
		Records:      make([]dto.RequestResponse, 0, len(rows)),
		PageResponse: dto.NewPageResponse(page, total),
	}
	for _, r := range rows {
		out.Records = append(out.Records, *toResponse(r, false))
	}
	return out, nil
}

// UpdateContent cambia la observación de una solicitud pendiente.
func (uc *UseCase) UpdateContent(ctx context.Context, id string, in dto.UpdateRequestRequest) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, fmt.Errorf("%w: la solicitud %s ya está %s", domain.ErrConflict, req.Num, req.Status)
	}
	if in.Content != nil {
		req.Content = *in.Content
	}
	if err := uc.repo.UpdatePending(ctx, req); err != nil {
		return nil, err
	}
	return toResponse(req, true), nil
}

// Approve resuelve una solicitud pendiente: aprobada o rechazada. Ambos estados son terminales.
func (uc *UseCase) Approve(ctx context.Context, id, approverID string, approved bool) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, fmt.Errorf("%w: la solicitud %s ya está %s", domain.ErrConflict, req.Num, req.Status)
	}
	now := uc.now().UTC()
	req.Status = entity.RequestStatusRejected
	if approved {
		req.Status = entity.RequestStatusApproved
	}
	req.ApproverID = approverID
	req.ApprovedAt = &now
	if err := uc.repo.UpdatePending(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("num", req.Num).Str("status", req.Status).Str("approver", approverID).Msg("solicitud resuelta")
	return toResponse(req, true), nil
}

// Delete elimina una solicitud.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.load(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *UseCase) load(ctx context.Context, id string) (*entity.Request, error) {
	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
	}
	return req, nil
}

// nextNum genera <prefijo>-<milisegundos>, estrictamente creciente dentro del proceso.
func (uc *UseCase) nextNum(prefix string, now time.Time) string {
	uc.numMu.Lock()
	defer uc.numMu.Unlock()
	ms := now.UnixMilli()
	if ms <= uc.lastNum {
		ms = uc.lastNum + 1
	}
	uc.lastNum = ms
	return fmt.Sprintf("%s-%d", prefix, ms)
}

func toResponse(r *entity.Request, withItems bool) *dto.RequestResponse {
	out := &dto.RequestResponse{
		ID:          r.ID,
		Kind:        r.Kind,
		Num:         r.Num,
		PurchaseNum: r.PurchaseNum,
		RequesterID: r.RequesterID,
		Content:     r.Content,
		Status:      r.Status,
		TotalPrice:  r.TotalPrice,
		ApproverID:  r.ApproverID,
		ApprovedAt:  r.ApprovedAt,
		CreatedAt:   r.CreatedAt,
	}
	if withItems {
		out.Items = make([]dto.RequestItemResponse, 0, len(r.Items))
		for _, it := range r.Items {
			out.Items = append(out.Items, dto.RequestItemResponse{
				ID:         it.ID,
				BalanceID:  it.BalanceID,
				Name:       it.Name,
				CategoryID: it.CategoryID,
				Spec:       it.Spec,
				Quantity:   it.Quantity,
				Unit:       it.Unit,
				UnitCost:   it.UnitCost,
			})
		}
	}
	return out
}
