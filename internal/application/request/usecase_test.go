package request_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/request"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var fixedNow = time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

func newUseCase() (*request.UseCase, *memory.Store) {
	store := memory.New()
	uc := request.NewUseCase(store.Requests(), zerolog.Nop()).WithClock(func() time.Time { return fixedNow })
	return uc, store
}

func purchase() dto.CreateRequestRequest {
	return dto.CreateRequestRequest{
		Content: "reposición de papelería",
		Items: []dto.RequestItemRequest{
			{Name: "Pen", Quantity: 10, UnitCost: decimal.RequireFromString("1.25")},
			{Name: "Cuaderno", Quantity: 2, UnitCost: decimal.RequireFromString("4.10")},
		},
	}
}

func TestCreate_CompraPendienteConTotal(t *testing.T) {
	uc, _ := newUseCase()
	res, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", purchase())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Num, "RUR-"))
	assert.Equal(t, entity.RequestStatusPending, res.Status)
	assert.True(t, res.TotalPrice.Equal(decimal.RequireFromString("20.70")))
	assert.Len(t, res.Items, 2)
	assert.Nil(t, res.ApprovedAt)
}

func TestCreate_SolicitudDeArticulosConCompraRelacionada(t *testing.T) {
	uc, _ := newUseCase()
	in := purchase()
	in.PurchaseNum = "RUR-1"
	res, err := uc.Create(context.Background(), entity.RequestKindGoods, "u-1", in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Num, "REQ-"))
	assert.Equal(t, "RUR-1", res.PurchaseNum)
}

func TestCreate_Validacion(t *testing.T) {
	uc, _ := newUseCase()

	_, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", dto.CreateRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), "OTRO", "u-1", purchase())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := purchase()
	bad.Items[1].Quantity = 0
	_, err = uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ImportesFueraDeRango(t *testing.T) {
	uc, store := newUseCase()
	cases := map[string]func(in *dto.CreateRequestRequest){
		"cantidad excesiva":    func(in *dto.CreateRequestRequest) { in.Items[0].Quantity = 1 << 62 },
		"precio con decimales": func(in *dto.CreateRequestRequest) { in.Items[0].UnitCost = decimal.RequireFromString("1.255") },
		"total excesivo": func(in *dto.CreateRequestRequest) {
			in.Items[0].Quantity, in.Items[0].UnitCost = 1000000000, decimal.RequireFromString("9.00")
			in.Items[1].Quantity, in.Items[1].UnitCost = 1000000000, decimal.RequireFromString("9.00")
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := purchase()
			mutate(&in)
			_, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	rows, total, err := store.Requests().List(context.Background(), repository.RequestFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
}

func TestApprove_EstadosTerminales(t *testing.T) {
	uc, _ := newUseCase()
	created, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", purchase())
	require.NoError(t, err)

	res, err := uc.Approve(context.Background(), created.ID, "jefe", true)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, res.Status)
	assert.Equal(t, "jefe", res.ApproverID)
	require.NotNil(t, res.ApprovedAt)
	assert.True(t, res.ApprovedAt.Equal(fixedNow))

	_, err = uc.Approve(context.Background(), created.ID, "jefe", false)
	assert.ErrorIs(t, err, domain.ErrConflict)

	content := "cambio tardío"
	_, err = uc.UpdateContent(context.Background(), created.ID, dto.UpdateRequestRequest{Content: &content})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := uc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, got.Status)
	assert.Equal(t, "reposición de papelería", got.Content)
}

func TestApprove_Rechazo(t *testing.T) {
	uc, _ := newUseCase()
	created, err := uc.Create(context.Background(), entity.RequestKindGoods, "u-1", purchase())
	require.NoError(t, err)

	res, err := uc.Approve(context.Background(), created.ID, "jefe", false)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusRejected, res.Status)
}

func TestUpdateContent_Pendiente(t *testing.T) {
	uc, _ := newUseCase()
	created, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", purchase())
	require.NoError(t, err)

	content := "urgente"
	res, err := uc.UpdateContent(context.Background(), created.ID, dto.UpdateRequestRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "urgente", res.Content)
	assert.Equal(t, entity.RequestStatusPending, res.Status)
}

func TestListYDelete(t *testing.T) {
	uc, _ := newUseCase()
	a, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", purchase())
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), entity.RequestKindPurchase, "u-2", purchase())
	require.NoError(t, err)
	_, err = uc.Approve(context.Background(), a.ID, "jefe", true)
	require.NoError(t, err)

	res, err := uc.List(context.Background(), repository.RequestFilter{Status: entity.RequestStatusPending}, dto.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "u-2", res.Records[0].RequesterID)

	res, err = uc.List(context.Background(), repository.RequestFilter{RequesterID: "u-1"}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	require.NoError(t, uc.Delete(context.Background(), a.ID))
	_, err = uc.Get(context.Background(), a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(context.Background(), a.ID), domain.ErrNotFound)
}

func TestApprove_NoTocaElLibro(t *testing.T) {
	uc, store := newUseCase()
	created, err := uc.Create(context.Background(), entity.RequestKindGoods, "u-1", purchase())
	require.NoError(t, err)
	_, err = uc.Approve(context.Background(), created.ID, "jefe", true)
	require.NoError(t, err)

	rows, total, err := store.Balances().List(context.Background(), repository.BalanceFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestApprove_ResolucionesConcurrentesSoloUnaGana(t *testing.T) {
	uc, store := newUseCase()
	created, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", purchase())
	require.NoError(t, err)

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  []string
		conflict int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(approved bool) {
			defer wg.Done()
			res, err := uc.Approve(context.Background(), created.ID, "jefe", approved)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrConflict)
				conflict++
				return
			}
			winners = append(winners, res.Status)
		}(i%2 == 0)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, workers-1, conflict)

	stored, err := store.Requests().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], stored.Status, "el estado resuelto no se sobrescribe")
}

func TestUpdatePending_CopiaDesactualizadaEsConflicto(t *testing.T) {
	uc, store := newUseCase()
	created, err := uc.Create(context.Background(), entity.RequestKindPurchase, "u-1", purchase())
	require.NoError(t, err)

	stale, err := store.Requests().GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), created.ID, "jefe", true)
	require.NoError(t, err)

	stale.Status = entity.RequestStatusRejected
	err = store.Requests().UpdatePending(context.Background(), stale)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := store.Requests().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, got.Status)
}
