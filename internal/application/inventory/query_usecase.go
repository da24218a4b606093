package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Textos del tipo de movimiento.
const (
	StatusTextInbound  = "Entrada"
	StatusTextOutbound = "Salida"
)

// QueryUseCase consultas de solo lectura sobre el libro: entradas, saldos, movimientos y resumen.
type QueryUseCase struct {
	balanceRepo   repository.BalanceRepository
	movRepo       repository.MovementRepository
	putRepo       repository.StockPutRepository
	warehouseRepo repository.WarehouseRepository
	categoryRepo  repository.CategoryRepository
	cache         SummaryCache
	log           zerolog.Logger
}

// NewQueryUseCase construye el caso de uso de consultas. cache puede ser nil.
func NewQueryUseCase(
	balanceRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	putRepo repository.StockPutRepository,
	warehouseRepo repository.WarehouseRepository,
	categoryRepo repository.CategoryRepository,
	cache SummaryCache,
	log zerolog.Logger,
) *QueryUseCase {
	if cache == nil {
		cache = NoopSummaryCache{}
	}
	return &QueryUseCase{
		balanceRepo:   balanceRepo,
		movRepo:       movRepo,
		putRepo:       putRepo,
		warehouseRepo: warehouseRepo,
		categoryRepo:  categoryRepo,
		cache:         cache,
		log:           log.With().Str("component", "ledger_query").Logger(),
	}
}

// GetInbound devuelve la cabecera con sus movimientos.
func (uc *QueryUseCase) GetInbound(ctx context.Context, id string) (*dto.InboundDetailResponse, error) {
	put, err := uc.putRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if put == nil {
		return nil, fmt.Errorf("%w: entrada %s", domain.ErrNotFound, id)
	}
	movs, err := uc.movRepo.ListByStockPut(ctx, put.ID)
	if err != nil {
		return nil, err
	}
	names := uc.newNames()
	out := &dto.InboundDetailResponse{
		InboundResponse: uc.toInbound(ctx, names, put),
		Items:           make([]dto.MovementResponse, 0, len(movs)),
	}
	for _, m := range movs {
		out.Items = append(out.Items, uc.toMovement(ctx, names, m))
	}
	return out, nil
}

// ListInbounds lista entradas, la más reciente primero.
func (uc *QueryUseCase) ListInbounds(ctx context.Context, filter repository.StockPutFilter, page dto.PageRequest) (*dto.InboundListResponse, error) {
	page.Normalize()
	puts, total, err := uc.putRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	names := uc.newNames()
	out := &dto.InboundListResponse{
		Records:      make([]dto.InboundResponse, 0, len(puts)),
		PageResponse: dto.NewPageResponse(page, total),
	}
	for _, p := range puts {
		out.Records = append(out.Records, uc.toInbound(ctx, names, p))
	}
	return out, nil
}

// ListBalances lista saldos en bodega.
func (uc *QueryUseCase) ListBalances(ctx context.Context, filter repository.BalanceFilter, page dto.PageRequest) (*dto.BalanceListResponse, error) {
	page.Normalize()
	rows, total, err := uc.balanceRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	names := uc.newNames()
	out := &dto.BalanceListResponse{
		Records:      make([]dto.BalanceResponse, 0, len(rows)),
		PageResponse: dto.NewPageResponse(page, total),
	}
	for _, b := range rows {
		out.Records = append(out.Records, dto.BalanceResponse{
			ID:            b.ID,
			Name:          b.Name,
			CategoryID:    b.CategoryID,
			CategoryName:  names.category(ctx, b.CategoryID),
			Spec:          b.Spec,
			Quantity:      b.Quantity,
			Unit:          b.Unit,
			UnitCost:      b.UnitCost,
			Content:       b.Content,
			WarehouseID:   b.WarehouseID,
			WarehouseName: names.warehouse(ctx, b.WarehouseID),
			CreatedAt:     b.CreatedAt,
		})
	}
	return out, nil
}

// ListMovements lista movimientos de entrada y salida.
func (uc *QueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, page dto.PageRequest) (*dto.MovementListResponse, error) {
	if filter.Kind != 0 && filter.Kind != entity.KindInbound && filter.Kind != entity.KindOutbound {
		return nil, fmt.Errorf("%w: tipo de movimiento %d", domain.ErrInvalidInput, filter.Kind)
	}
	page.Normalize()
	movs, total, err := uc.movRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	names := uc.newNames()
	out := &dto.MovementListResponse{
		Records:      make([]dto.MovementResponse, 0, len(movs)),
		PageResponse: dto.NewPageResponse(page, total),
	}
	for _, m := range movs {
		out.Records = append(out.Records, uc.toMovement(ctx, names, m))
	}
	return out, nil
}

// GetBalanceSummary agrega saldos por (nombre, especificación, categoría, unidad).
// warehouseID vacío agrega todas las bodegas. Sirve desde caché cuando hay una entrada vigente;
// si no, guarda el resultado bajo la generación leída antes de consultar.
func (uc *QueryUseCase) GetBalanceSummary(ctx context.Context, warehouseID string) ([]dto.BalanceSummaryDTO, error) {
	cached, gen, ok := uc.cache.Get(ctx, warehouseID)
	if ok {
		return cached, nil
	}
	rows, err := uc.balanceRepo.Summary(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	names := uc.newNames()
	out := make([]dto.BalanceSummaryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.BalanceSummaryDTO{
			Name:         r.Name,
			Spec:         r.Spec,
			CategoryID:   r.CategoryID,
			CategoryName: names.category(ctx, r.CategoryID),
			Unit:         r.Unit,
			TotalAmount:  r.TotalQuantity,
			AvgPrice:     r.AvgUnitCost.Round(2),
		})
	}
	uc.cache.Set(ctx, gen, warehouseID, out)
	return out, nil
}

func (uc *QueryUseCase) toInbound(ctx context.Context, names *nameMemo, p *entity.StockPut) dto.InboundResponse {
	return dto.InboundResponse{
		ID:            p.ID,
		Num:           p.Num,
		Price:         p.TotalPrice,
		Custodian:     p.Custodian,
		PutUser:       p.PutUser,
		Content:       p.Content,
		WarehouseID:   p.WarehouseID,
		WarehouseName: names.warehouse(ctx, p.WarehouseID),
		CreatedAt:     p.CreatedAt,
	}
}

func (uc *QueryUseCase) toMovement(ctx context.Context, names *nameMemo, m *entity.Movement) dto.MovementResponse {
	status := StatusTextInbound
	if m.Kind == entity.KindOutbound {
		status = StatusTextOutbound
	}
	return dto.MovementResponse{
		ID:            m.ID,
		Kind:          m.Kind,
		StatusText:    status,
		Name:          m.Name,
		CategoryID:    m.CategoryID,
		CategoryName:  names.category(ctx, m.CategoryID),
		Spec:          m.Spec,
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		UnitCost:      m.UnitCost,
		WarehouseID:   m.WarehouseID,
		WarehouseName: names.warehouse(ctx, m.WarehouseID),
		CreatedAt:     m.CreatedAt,
	}
}

// nameMemo resuelve nombres de bodega y categoría una sola vez por consulta.
// Un id que no resuelve (o cuya consulta falla) queda en nil.
type nameMemo struct {
	uc         *QueryUseCase
	warehouses map[string]*string
	categories map[string]*string
}

func (uc *QueryUseCase) newNames() *nameMemo {
	return &nameMemo{uc: uc, warehouses: map[string]*string{}, categories: map[string]*string{}}
}

func (n *nameMemo) warehouse(ctx context.Context, id string) *string {
	if id == "" || n.uc.warehouseRepo == nil {
		return nil
	}
	if name, ok := n.warehouses[id]; ok {
		return name
	}
	var name *string
	wh, err := n.uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		n.uc.log.Warn().Err(err).Str("warehouse_id", id).Msg("no se pudo resolver el nombre de la bodega")
	} else if wh != nil {
		name = &wh.Name
	}
	n.warehouses[id] = name
	return name
}

func (n *nameMemo) category(ctx context.Context, id string) *string {
	if id == "" || n.uc.categoryRepo == nil {
		return nil
	}
	if name, ok := n.categories[id]; ok {
		return name
	}
	var name *string
	cat, err := n.uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		n.uc.log.Warn().Err(err).Str("category_id", id).Msg("no se pudo resolver el nombre de la categoría")
	} else if cat != nil {
		name = &cat.Name
	}
	n.categories[id] = name
	return name
}
