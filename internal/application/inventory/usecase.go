package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del libro de inventario: Commit solo si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		balanceRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
		putRepo repository.StockPutRepository,
		linkRepo repository.GoodsBelongRepository,
	) error) error
}

// SummaryCache caché de lectura del resumen de existencias. Las escrituras del libro la invalidan.
//
// Cada entrada pertenece a una generación. Get informa la generación vigente al momento de leer,
// aunque no haya acierto; Set guarda bajo esa generación e Invalidate la avanza. Un resumen calculado
// antes de una escritura queda así bajo una generación que ya nadie lee.
type SummaryCache interface {
	Get(ctx context.Context, warehouseID string) (rows []dto.BalanceSummaryDTO, gen int64, ok bool)
	Set(ctx context.Context, gen int64, warehouseID string, rows []dto.BalanceSummaryDTO)
	Invalidate(ctx context.Context)
}

// NoopSummaryCache caché deshabilitada.
type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(context.Context, string) ([]dto.BalanceSummaryDTO, int64, bool) {
	return nil, 0, false
}
func (NoopSummaryCache) Set(context.Context, int64, string, []dto.BalanceSummaryDTO) {}
func (NoopSummaryCache) Invalidate(context.Context)                                  {}

// ReceiptRenderer dibuja el comprobante de una entrada (PDF).
type ReceiptRenderer interface {
	RenderInboundReceipt(ctx context.Context, in *dto.InboundDetailResponse) ([]byte, error)
}
