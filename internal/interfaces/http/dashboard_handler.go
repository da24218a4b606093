package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetOverview devuelve el conteo de entradas, el valor del inventario y el consumo.
// GET /api/dashboard/overview
func (h *DashboardHandler) GetOverview(c *fiber.Ctx) error {
	overview, err := h.uc.Overview(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(overview)
}

// GetDailyInbound devuelve la serie diaria de cantidades ingresadas.
// GET /api/dashboard/daily-inbound?days=7
func (h *DashboardHandler) GetDailyInbound(c *fiber.Ctx) error {
	points, err := h.uc.DailyInbound(c.Context(), c.QueryInt("days", appanalytics.DefaultDailyDays))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(points)
}

// GetDailyOutbound devuelve la serie diaria de cantidades despachadas.
// GET /api/dashboard/daily-outbound?days=7
func (h *DashboardHandler) GetDailyOutbound(c *fiber.Ctx) error {
	points, err := h.uc.DailyOutbound(c.Context(), c.QueryInt("days", appanalytics.DefaultDailyDays))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(points)
}

// GetInboundByType GET /api/dashboard/inbound-by-type
func (h *DashboardHandler) GetInboundByType(c *fiber.Ctx) error {
	stats, err := h.uc.InboundByType(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

// GetOutboundByType GET /api/dashboard/outbound-by-type
func (h *DashboardHandler) GetOutboundByType(c *fiber.Ctx) error {
	stats, err := h.uc.OutboundByType(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

// GetLowStock devuelve los saldos con pocas unidades.
// GET /api/dashboard/low-stock?threshold=10
func (h *DashboardHandler) GetLowStock(c *fiber.Ctx) error {
	items, err := h.uc.LowStock(c.Context(), int64(c.QueryInt("threshold", appanalytics.DefaultLowStockThreshold)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// GetBoard GET /api/dashboard/board
func (h *DashboardHandler) GetBoard(c *fiber.Ctx) error {
	board, err := h.uc.Board(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(board)
}
