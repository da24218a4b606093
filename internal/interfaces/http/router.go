package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/request"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Inbound   *inventory.InboundUseCase
	Query     *inventory.QueryUseCase
	Receipt   *inventory.ReceiptUseCase
	Requests  *request.UseCase
	Dashboard *appanalytics.DashboardUseCase
	JWTSecret string
	JWTIssuer string // vacío: no se valida el emisor
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	writers := RequireRole(RoleAdmin, RoleBodeguero)

	// Entradas de inventario
	inventoryHandler := NewInventoryHandler(deps.Inbound, deps.Query, deps.Receipt)
	inbounds := api.Group("/inbounds")
	inbounds.Get("/", inventoryHandler.ListInbounds)
	inbounds.Post("/", writers, inventoryHandler.CreateInbound)
	inbounds.Get("/:id", inventoryHandler.GetInbound)
	inbounds.Delete("/:id", writers, inventoryHandler.DeleteInbound)
	inbounds.Get("/:id/pdf", inventoryHandler.DownloadInboundPDF)

	// Existencias
	stock := api.Group("/stock")
	stock.Get("/balances", inventoryHandler.ListBalances)
	stock.Get("/summary", inventoryHandler.GetSummary)
	stock.Get("/movements", inventoryHandler.ListMovements)

	// Solicitudes (solo estado; no tocan el libro)
	registerRequests(api.Group("/purchase-requests"), NewRequestHandler(deps.Requests, entity.RequestKindPurchase))
	registerRequests(api.Group("/goods-requests"), NewRequestHandler(deps.Requests, entity.RequestKindGoods))

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	dashboard := api.Group("/dashboard")
	dashboard.Get("/overview", dashboardHandler.GetOverview)
	dashboard.Get("/daily-inbound", dashboardHandler.GetDailyInbound)
	dashboard.Get("/daily-outbound", dashboardHandler.GetDailyOutbound)
	dashboard.Get("/inbound-by-type", dashboardHandler.GetInboundByType)
	dashboard.Get("/outbound-by-type", dashboardHandler.GetOutboundByType)
	dashboard.Get("/low-stock", dashboardHandler.GetLowStock)
	dashboard.Get("/board", dashboardHandler.GetBoard)
}

func registerRequests(g fiber.Router, h *RequestHandler) {
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.GetByID)
	g.Put("/:id", h.UpdateContent)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/approve", RequireRole(RoleAdmin), h.Approve)
}
