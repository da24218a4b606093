package inventory_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// fakeCache caché en memoria por generación que cuenta aciertos e invalidaciones.
type fakeCache struct {
	mu          sync.Mutex
	gen         int64
	rows        map[int64]map[string][]dto.BalanceSummaryDTO
	hits        int
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{rows: map[int64]map[string][]dto.BalanceSummaryDTO{}}
}

func (c *fakeCache) Get(_ context.Context, warehouseID string) ([]dto.BalanceSummaryDTO, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.rows[c.gen][warehouseID]
	if ok {
		c.hits++
	}
	return rows, c.gen, ok
}

func (c *fakeCache) Set(_ context.Context, gen int64, warehouseID string, rows []dto.BalanceSummaryDTO) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows[gen] == nil {
		c.rows[gen] = map[string][]dto.BalanceSummaryDTO{}
	}
	c.rows[gen][warehouseID] = rows
}

func (c *fakeCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
}

// slowSummary ejecuta after una vez, entre la consulta del resumen y su retorno.
type slowSummary struct {
	repository.BalanceRepository
	after func()
}

func (s *slowSummary) Summary(ctx context.Context, warehouseID string) ([]repository.BalanceSummaryRow, error) {
	rows, err := s.BalanceRepository.Summary(ctx, warehouseID)
	if s.after != nil {
		fn := s.after
		s.after = nil
		fn()
	}
	return rows, err
}

func TestListInbounds_PaginaYOrden(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, item("Pen", 1, "1.00"))
	f.create(t, item("Pen", 1, "1.00"))
	third := f.create(t, item("Pen", 1, "1.00"))

	res, err := f.query.ListInbounds(context.Background(), repository.StockPutFilter{}, dto.PageRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Pages)
	require.Len(t, res.Records, 2)
	assert.Equal(t, third.ID, res.Records[0].ID, "la más reciente primero")

	res, err = f.query.ListInbounds(context.Background(), repository.StockPutFilter{}, dto.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, first.ID, res.Records[0].ID)
	assert.Equal(t, 2, res.Current)
}

func TestListInbounds_FiltroPorCustodio(t *testing.T) {
	f := newFixture(t)
	f.create(t, item("Pen", 1, "1.00"))
	_, err := f.inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: testWarehouseID,
		Custodian:   "Marta Ruiz",
		Items:       []inventory.InboundItemInput{item("Pen", 1, "1.00")},
	})
	require.NoError(t, err)

	res, err := f.query.ListInbounds(context.Background(), repository.StockPutFilter{Custodian: "marta"}, dto.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Marta Ruiz", res.Records[0].Custodian)
	assert.Equal(t, dto.DefaultPageSize, res.Size)
}

func TestGetInbound_NombreNoResueltoQuedaNulo(t *testing.T) {
	f := newFixture(t)
	it := item("Pen", 1, "1.00")
	it.CategoryID = "cat-borrada"
	put := f.create(t, it)

	detail, err := f.query.GetInbound(context.Background(), put.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Nil(t, detail.Items[0].CategoryName)
	assert.Equal(t, "cat-borrada", detail.Items[0].CategoryID)
}

func TestListMovements_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.query.ListMovements(context.Background(), repository.MovementFilter{Kind: 7}, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.create(t, item("Pen", 1, "1.00"))
	res, err := f.query.ListMovements(context.Background(), repository.MovementFilter{Kind: entity.KindOutbound}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}

func TestGetBalanceSummary_AgrupaYUsaCache(t *testing.T) {
	f := newFixture(t)
	cache := newFakeCache()
	inbound := inventory.NewInboundUseCase(f.store, f.store.Warehouses(), zerolog.Nop(), inventory.WithSummaryCache(cache))
	query := inventory.NewQueryUseCase(f.store.Balances(), f.store.Movements(), f.store.StockPuts(),
		f.store.Warehouses(), f.store.Categories(), cache, zerolog.Nop())

	f.store.AddWarehouse(&entity.Warehouse{ID: "wh-norte", Name: "Norte"})
	for _, wh := range []string{testWarehouseID, "wh-norte"} {
		_, err := inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
			WarehouseID: wh,
			Items:       []inventory.InboundItemInput{item("Pen", 10, "2.00")},
		})
		require.NoError(t, err)
	}
	_, err := inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: "wh-norte",
		Items:       []inventory.InboundItemInput{item("Pen", 10, "3.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, cache.invalidated)

	// central 10@2.00, norte 20@2.50
	rows, err := query.GetBalanceSummary(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(30), rows[0].TotalAmount)
	assert.True(t, rows[0].AvgPrice.Equal(dec("2.25")), "promedio esperado 2.25, obtenido %s", rows[0].AvgPrice)

	_, err = query.GetBalanceSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	rows, err = query.GetBalanceSummary(context.Background(), "wh-norte")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(20), rows[0].TotalAmount)
}

func TestGetBalanceSummary_EscrituraDuranteLaConsultaNoDejaCacheVieja(t *testing.T) {
	f := newFixture(t)
	cache := newFakeCache()
	inbound := inventory.NewInboundUseCase(f.store, f.store.Warehouses(), zerolog.Nop(), inventory.WithSummaryCache(cache))
	_, err := inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: testWarehouseID,
		Items:       []inventory.InboundItemInput{item("Pen", 10, "2.00")},
	})
	require.NoError(t, err)

	balances := &slowSummary{BalanceRepository: f.store.Balances()}
	balances.after = func() {
		_, err := inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
			WarehouseID: testWarehouseID,
			Items:       []inventory.InboundItemInput{item("Pen", 10, "4.00")},
		})
		require.NoError(t, err)
	}
	query := inventory.NewQueryUseCase(balances, f.store.Movements(), f.store.StockPuts(),
		f.store.Warehouses(), f.store.Categories(), cache, zerolog.Nop())

	rows, err := query.GetBalanceSummary(context.Background(), testWarehouseID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(10), rows[0].TotalAmount, "la lectura en curso ve el estado previo")

	rows, err = query.GetBalanceSummary(context.Background(), testWarehouseID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(20), rows[0].TotalAmount)
	assert.True(t, rows[0].AvgPrice.Equal(dec("3.00")))
	assert.Equal(t, 0, cache.hits, "el resumen viejo quedó bajo una generación vencida")

	_, err = query.GetBalanceSummary(context.Background(), testWarehouseID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestCreateInboundFromRequest_UsaActorPorDefecto(t *testing.T) {
	f := newFixture(t)
	put, err := f.inbound.CreateInboundFromRequest(context.Background(), "jperez", dto.CreateInboundRequest{
		WarehouseID: testWarehouseID,
		Items:       []dto.InboundItemRequest{{Name: "Pen", Quantity: 2, UnitCost: dec("1.50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "jperez", put.Custodian)
	assert.Equal(t, "jperez", put.PutUser)
	assert.True(t, put.TotalPrice.Equal(dec("3.00")))
}

func TestListados_PaginaEnormeDevuelveVacio(t *testing.T) {
	f := newFixture(t)
	f.create(t, item("Pen", 1, "1.00"), item("Lápiz", 1, "1.00"))
	huge := dto.PageRequest{Page: math.MaxInt, Size: 10}

	inbounds, err := f.query.ListInbounds(context.Background(), repository.StockPutFilter{}, huge)
	require.NoError(t, err)
	assert.Empty(t, inbounds.Records)
	assert.Equal(t, 1, inbounds.Total)

	balances, err := f.query.ListBalances(context.Background(), repository.BalanceFilter{}, huge)
	require.NoError(t, err)
	assert.Empty(t, balances.Records)

	movements, err := f.query.ListMovements(context.Background(), repository.MovementFilter{}, huge)
	require.NoError(t, err)
	assert.Empty(t, movements.Records)
}
