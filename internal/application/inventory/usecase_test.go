package inventory_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testWarehouseID = "wh-central"
	testCategoryID  = "cat-papeleria"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *memory.Store
	inbound *inventory.InboundUseCase
	query   *inventory.QueryUseCase
}

func newFixture(t *testing.T, opts ...inventory.Option) *fixture {
	t.Helper()
	store := memory.New()
	store.AddWarehouse(&entity.Warehouse{ID: testWarehouseID, Name: "Central"})
	store.AddCategory(&entity.Category{ID: testCategoryID, Name: "Papelería"})

	opts = append([]inventory.Option{inventory.WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		store:   store,
		inbound: inventory.NewInboundUseCase(store, store.Warehouses(), zerolog.Nop(), opts...),
		query: inventory.NewQueryUseCase(store.Balances(), store.Movements(), store.StockPuts(),
			store.Warehouses(), store.Categories(), nil, zerolog.Nop()),
	}
}

func item(name string, qty int64, cost string) inventory.InboundItemInput {
	return inventory.InboundItemInput{Name: name, Quantity: qty, Unit: "unidad", UnitCost: dec(cost)}
}

func (f *fixture) create(t *testing.T, items ...inventory.InboundItemInput) *entity.StockPut {
	t.Helper()
	put, err := f.inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: testWarehouseID,
		Custodian:   "Ana",
		PutUser:     "Luis",
		Items:       items,
	})
	require.NoError(t, err)
	return put
}

func (f *fixture) balances(t *testing.T, name string) []dto.BalanceResponse {
	t.Helper()
	res, err := f.query.ListBalances(context.Background(), repository.BalanceFilter{Name: name}, dto.PageRequest{Size: 100})
	require.NoError(t, err)
	return res.Records
}

func (f *fixture) singleBalance(t *testing.T, name string) dto.BalanceResponse {
	t.Helper()
	rows := f.balances(t, name)
	require.Len(t, rows, 1, "se esperaba un único saldo para %q", name)
	return rows[0]
}

func (f *fixture) inboundCount(t *testing.T) int {
	t.Helper()
	res, err := f.query.ListInbounds(context.Background(), repository.StockPutFilter{}, dto.PageRequest{})
	require.NoError(t, err)
	return res.Total
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro y reversión de entradas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInbound_PromedioPonderadoYReversion(t *testing.T) {
	f := newFixture(t)

	f.create(t, item("Pen", 100, "2.50"))
	b := f.singleBalance(t, "Pen")
	assert.Equal(t, int64(100), b.Quantity)
	assert.True(t, b.UnitCost.Equal(dec("2.50")))

	second := f.create(t, item("Pen", 50, "4.00"))
	b = f.singleBalance(t, "Pen")
	assert.Equal(t, int64(150), b.Quantity)
	assert.True(t, b.UnitCost.Equal(dec("3.00")), "costo esperado 3.00, obtenido %s", b.UnitCost)

	ok, err := f.inbound.DeleteInbound(context.Background(), second.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// la reversión descuenta cantidad pero no recalcula el costo
	b = f.singleBalance(t, "Pen")
	assert.Equal(t, int64(100), b.Quantity)
	assert.True(t, b.UnitCost.Equal(dec("3.00")))
}

func TestCreateInbound_CabeceraEnlacesYMovimientos(t *testing.T) {
	f := newFixture(t)

	put := f.create(t, item("Pen", 3, "1.10"), item("Cuaderno", 2, "4.25"))
	assert.True(t, strings.HasPrefix(put.Num, "PUT-"))
	assert.Equal(t, "PUT-1773484200000", put.Num)
	assert.True(t, put.TotalPrice.Equal(dec("11.80")), "total esperado 11.80, obtenido %s", put.TotalPrice)

	detail, err := f.query.GetInbound(context.Background(), put.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Pen", detail.Items[0].Name)
	assert.Equal(t, "Cuaderno", detail.Items[1].Name)
	for _, m := range detail.Items {
		assert.Equal(t, entity.KindInbound, m.Kind)
		assert.Equal(t, inventory.StatusTextInbound, m.StatusText)
		require.NotNil(t, m.WarehouseName)
		assert.Equal(t, "Central", *m.WarehouseName)
	}
	require.NotNil(t, detail.WarehouseName)
	assert.Equal(t, "Ana", detail.Custodian)
}

func TestCreateInbound_NumerosCrecientesConRelojFijo(t *testing.T) {
	f := newFixture(t)

	a := f.create(t, item("Pen", 1, "1.00"))
	b := f.create(t, item("Pen", 1, "1.00"))
	assert.Equal(t, "PUT-1773484200000", a.Num)
	assert.Equal(t, "PUT-1773484200001", b.Num)
}

func TestCreateInbound_ConservaCantidades(t *testing.T) {
	f := newFixture(t)

	f.create(t, item("Pen", 7, "1.00"), item("Lápiz", 4, "0.50"))
	f.create(t, item("Pen", 5, "1.20"))
	third := f.create(t, item("Lápiz", 9, "0.70"), item("Pen", 2, "2.00"))
	_, err := f.inbound.DeleteInbound(context.Background(), third.ID)
	require.NoError(t, err)

	movs, err := f.query.ListMovements(context.Background(), repository.MovementFilter{}, dto.PageRequest{Size: 100})
	require.NoError(t, err)
	sums := map[string]int64{}
	for _, m := range movs.Records {
		sums[m.Name] += m.Quantity
	}
	for name, qty := range sums {
		assert.Equal(t, qty, f.singleBalance(t, name).Quantity, "saldo de %s", name)
	}
	assert.Equal(t, int64(12), sums["Pen"])
	assert.Equal(t, int64(4), sums["Lápiz"])
}

func TestDeleteInbound_SegundaVezNoEncontrada(t *testing.T) {
	f := newFixture(t)
	put := f.create(t, item("Pen", 10, "1.00"))

	ok, err := f.inbound.DeleteInbound(context.Background(), put.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.inbound.DeleteInbound(context.Background(), put.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.query.GetInbound(context.Background(), put.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.inboundCount(t))
}

func TestDeleteInbound_NoBajaDeCero(t *testing.T) {
	f := newFixture(t)
	put := f.create(t, item("Pen", 10, "2.00"))

	// otra operación dejó el saldo por debajo de lo que entró
	err := f.store.Run(context.Background(), func(
		balanceRepo repository.BalanceRepository, _ repository.MovementRepository,
		_ repository.StockPutRepository, _ repository.GoodsBelongRepository,
	) error {
		b, err := balanceRepo.FindForUpdate(context.Background(), entity.BalanceKey{Name: "Pen", WarehouseID: testWarehouseID})
		require.NoError(t, err)
		require.NotNil(t, b)
		b.Quantity = 3
		return balanceRepo.Update(context.Background(), b)
	})
	require.NoError(t, err)

	_, err = f.inbound.DeleteInbound(context.Background(), put.ID)
	require.NoError(t, err)
	b := f.singleBalance(t, "Pen")
	assert.Equal(t, int64(0), b.Quantity)
	assert.True(t, b.UnitCost.Equal(dec("2.00")))
}

func TestDeleteInbound_SaldoAusenteSeOmiteYSeBorraTodo(t *testing.T) {
	f := newFixture(t)
	put := f.create(t, item("Pen", 10, "2.00"), item("Clip", 4, "1.00"))
	other := f.create(t, item("Papel", 7, "3.00"))

	pen := f.singleBalance(t, "Pen")
	require.True(t, f.store.RemoveBalance(pen.ID))
	movs, err := f.store.Movements().ListByStockPut(context.Background(), put.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)

	ok, err := f.inbound.DeleteInbound(context.Background(), put.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.query.GetInbound(context.Background(), put.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	for _, m := range movs {
		got, err := f.store.Movements().GetByID(context.Background(), m.ID)
		require.NoError(t, err)
		assert.Nil(t, got, "movimiento %s", m.Name)
	}
	links, err := f.store.GoodsBelongs().ListByStockPut(context.Background(), put.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	assert.Empty(t, f.balances(t, "Pen"), "no se recrea el saldo ausente")
	assert.Equal(t, int64(0), f.singleBalance(t, "Clip").Quantity)
	papel := f.singleBalance(t, "Papel")
	assert.Equal(t, int64(7), papel.Quantity)
	assert.True(t, papel.UnitCost.Equal(dec("3.00")))

	detail, err := f.query.GetInbound(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 1)
	assert.Equal(t, 1, f.inboundCount(t))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y atomicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInbound_Validacion(t *testing.T) {
	cases := map[string]inventory.CreateInboundInput{
		"sin artículos":     {WarehouseID: testWarehouseID},
		"sin bodega":        {Items: []inventory.InboundItemInput{item("Pen", 1, "1.00")}},
		"cantidad cero":     {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{item("Pen", 0, "1.00")}},
		"cantidad negativa": {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{item("Pen", -2, "1.00")}},
		"costo negativo":    {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{item("Pen", 1, "-0.01")}},
		"sin nombre":        {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{item("", 1, "1.00")}},
		"cantidad excesiva": {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{
			item("Pen", 1<<62, "1.00"), item("Pen", 1<<62, "1.00"), item("Pen", 1<<62, "1.00"),
		}},
		"costo con tres decimales": {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{item("Pen", 1, "1.005")}},
		"total de línea excesivo":  {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{item("Pen", 100000000, "1000")}},
		"total de entrada excesivo": {WarehouseID: testWarehouseID, Items: []inventory.InboundItemInput{
			item("Pen", 1000000000, "9.00"), item("Lápiz", 1000000000, "9.00"),
		}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.inbound.CreateInbound(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, f.inboundCount(t))
		})
	}
}

func TestCreateInbound_ArticuloInvalidoNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	_, err := f.inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: testWarehouseID,
		Items:       []inventory.InboundItemInput{item("Pen", 1, "1.00"), item("Lápiz", 0, "1.00"), item("Borrador", 2, "1.00")},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.inboundCount(t))
	assert.Empty(t, f.balances(t, ""))
}

func TestCreateInbound_BodegaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: "no-existe",
		Items:       []inventory.InboundItemInput{item("Pen", 1, "1.00")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInbound_FalloDeAlmacenamientoRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.create(t, item("Pen", 10, "2.00"))

	links := 0
	boom := errors.New("disco lleno")
	f.store.SetFault(func(op string) error {
		if op == "goods_belong.create" {
			links++
			if links == 2 {
				return boom
			}
		}
		return nil
	})

	_, err := f.inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: testWarehouseID,
		Items:       []inventory.InboundItemInput{item("Pen", 5, "5.00"), item("Lápiz", 3, "1.00")},
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 1, f.inboundCount(t))
	b := f.singleBalance(t, "Pen")
	assert.Equal(t, int64(10), b.Quantity)
	assert.True(t, b.UnitCost.Equal(dec("2.00")))
	assert.Empty(t, f.balances(t, "Lápiz"))
}

func TestDeleteInbound_FalloDeAlmacenamientoConservaLaEntrada(t *testing.T) {
	f := newFixture(t)
	put := f.create(t, item("Pen", 10, "2.00"), item("Lápiz", 4, "1.00"))

	f.store.SetFault(func(op string) error {
		if op == "stock_put.delete" {
			return errors.New("conexión perdida")
		}
		return nil
	})
	ok, err := f.inbound.DeleteInbound(context.Background(), put.ID)
	require.Error(t, err)
	assert.False(t, ok)

	f.store.SetFault(nil)
	detail, err := f.query.GetInbound(context.Background(), put.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 2)
	assert.Equal(t, int64(10), f.singleBalance(t, "Pen").Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInbound_ReintentaAnteConflicto(t *testing.T) {
	f := newFixture(t)
	conflicts := 0
	f.store.SetFault(func(op string) error {
		if op == "balance.update" && conflicts < 2 {
			conflicts++
			return domain.ErrConflict
		}
		return nil
	})

	put := f.create(t, item("Pen", 4, "2.00"))
	assert.Equal(t, 2, conflicts)
	assert.Equal(t, "PUT-1773484200002", put.Num, "cada intento usa un número nuevo")
	assert.Equal(t, 1, f.inboundCount(t))
	assert.Equal(t, int64(4), f.singleBalance(t, "Pen").Quantity)
}

func TestCreateInbound_ConflictoPersistenteSeReporta(t *testing.T) {
	f := newFixture(t, inventory.WithMaxAttempts(3))
	attempts := 0
	f.store.SetFault(func(op string) error {
		if op == "stock_put.create" {
			attempts++
			return domain.ErrConflict
		}
		return nil
	})

	_, err := f.inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
		WarehouseID: testWarehouseID,
		Items:       []inventory.InboundItemInput{item("Pen", 1, "1.00")},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 0, f.inboundCount(t))
}

func TestCreateInbound_Concurrente(t *testing.T) {
	f := newFixture(t)
	const workers = 12

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.inbound.CreateInbound(context.Background(), inventory.CreateInboundInput{
				WarehouseID: testWarehouseID,
				Items:       []inventory.InboundItemInput{item("Pen", 2, "3.00")},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	b := f.singleBalance(t, "Pen")
	assert.Equal(t, int64(2*workers), b.Quantity)
	assert.True(t, b.UnitCost.Equal(dec("3.00")))
	assert.Equal(t, workers, f.inboundCount(t))
}

// ──────────────────────────────────────────────────────────────────────────────
// Identidad del saldo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInbound_CategoriaAusenteCoincideConSaldoExistente(t *testing.T) {
	f := newFixture(t)
	withCat := item("Pen", 10, "2.00")
	withCat.CategoryID = testCategoryID
	f.create(t, withCat)

	// sin categoría actúa como comodín y suma sobre el saldo existente
	f.create(t, item("Pen", 10, "4.00"))

	b := f.singleBalance(t, "Pen")
	assert.Equal(t, int64(20), b.Quantity)
	assert.Equal(t, testCategoryID, b.CategoryID)
	assert.True(t, b.UnitCost.Equal(dec("3.00")))
	require.NotNil(t, b.CategoryName)
	assert.Equal(t, "Papelería", *b.CategoryName)
}

func TestCreateInbound_CategoriaInformadaCreaSaldoPropio(t *testing.T) {
	f := newFixture(t)
	f.create(t, item("Pen", 10, "2.00"))

	withCat := item("Pen", 5, "4.00")
	withCat.CategoryID = testCategoryID
	f.create(t, withCat)

	rows := f.balances(t, "Pen")
	require.Len(t, rows, 2)
	byCat := map[string]int64{}
	for _, r := range rows {
		byCat[r.CategoryID] = r.Quantity
	}
	assert.Equal(t, int64(10), byCat[""])
	assert.Equal(t, int64(5), byCat[testCategoryID])
}

func TestCreateInbound_PrefiereSaldoSinCamposOpcionales(t *testing.T) {
	f := newFixture(t)
	f.create(t, item("Pen", 2, "1.00"))
	withSpec := item("Pen", 1, "1.00")
	withSpec.Spec = "azul"
	f.create(t, withSpec)

	// hay dos saldos: con especificación "azul" y sin especificación
	f.create(t, item("Pen", 3, "1.00"))

	bySpec := map[string]int64{}
	for _, r := range f.balances(t, "Pen") {
		bySpec[r.Spec] = r.Quantity
	}
	assert.Equal(t, int64(1), bySpec["azul"])
	assert.Equal(t, int64(5), bySpec[""])
}
