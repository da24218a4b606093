package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler maneja las entradas de inventario y las consultas de existencias (protegido).
type InventoryHandler struct {
	inbound *inventory.InboundUseCase
	query   *inventory.QueryUseCase
	receipt *inventory.ReceiptUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(inbound *inventory.InboundUseCase, query *inventory.QueryUseCase, receipt *inventory.ReceiptUseCase) *InventoryHandler {
	return &InventoryHandler{inbound: inbound, query: query, receipt: receipt}
}

// CreateInbound godoc
// @Summary      Registrar entrada de inventario
// @Description  Crea la cabecera, un movimiento por artículo y actualiza los saldos con costo promedio ponderado.
// @Tags         inbounds
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInboundRequest  true  "stock_id, items[name, type_id, type, amount, unit, price]"
// @Success      201   {object}  dto.InboundDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inbounds [post]
func (h *InventoryHandler) CreateInbound(c *fiber.Ctx) error {
	var in dto.CreateInboundRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	put, err := h.inbound.CreateInboundFromRequest(c.Context(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	detail, err := h.query.GetInbound(c.Context(), put.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(detail)
}

// ListInbounds godoc
// @Summary      Listar entradas
// @Tags         inbounds
// @Security     Bearer
// @Produce      json
// @Param        num        query  string  false  "Número (subcadena)"
// @Param        custodian  query  string  false  "Custodio (subcadena)"
// @Param        page       query  int     false  "Página (1-based)"
// @Param        size       query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.InboundListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inbounds [get]
func (h *InventoryHandler) ListInbounds(c *fiber.Ctx) error {
	filter := repository.StockPutFilter{Num: c.Query("num"), Custodian: c.Query("custodian")}
	res, err := h.query.ListInbounds(c.Context(), filter, parsePage(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// GetInbound godoc
// @Summary      Detalle de una entrada
// @Tags         inbounds
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrada"
// @Success      200  {object}  dto.InboundDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inbounds/{id} [get]
func (h *InventoryHandler) GetInbound(c *fiber.Ctx) error {
	detail, err := h.query.GetInbound(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(detail)
}

// DeleteInbound godoc
// @Summary      Revertir una entrada
// @Description  Descuenta las cantidades de los saldos (sin bajar de cero) y elimina movimientos, enlaces y cabecera.
// @Tags         inbounds
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrada"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inbounds/{id} [delete]
func (h *InventoryHandler) DeleteInbound(c *fiber.Ctx) error {
	deleted, err := h.inbound.DeleteInbound(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// DownloadInboundPDF godoc
// @Summary      Comprobante PDF de una entrada
// @Tags         inbounds
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la entrada"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inbounds/{id}/pdf [get]
func (h *InventoryHandler) DownloadInboundPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.receipt.DownloadInboundReceipt(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

// ListBalances godoc
// @Summary      Listar saldos en bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        name      query  string  false  "Nombre (subcadena)"
// @Param        type_id   query  string  false  "Categoría"
// @Param        stock_id  query  string  false  "Bodega"
// @Param        page      query  int     false  "Página (1-based)"
// @Param        size      query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.BalanceListResponse
// @Router       /api/stock/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	filter := repository.BalanceFilter{
		Name:        c.Query("name"),
		CategoryID:  c.Query("type_id"),
		WarehouseID: c.Query("stock_id"),
	}
	res, err := h.query.ListBalances(c.Context(), filter, parsePage(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// GetSummary godoc
// @Summary      Resumen de existencias
// @Description  Agrupa por nombre, tipo, categoría y unidad: cantidad total y costo promedio.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        stock_id  query  string  false  "Bodega. Vacío = todas."
// @Success      200  {array}   dto.BalanceSummaryDTO
// @Router       /api/stock/summary [get]
func (h *InventoryHandler) GetSummary(c *fiber.Ctx) error {
	rows, err := h.query.GetBalanceSummary(c.Context(), c.Query("stock_id"))
	if err != nil {
		return writeError(c, err)
	}
	if rows == nil {
		rows = []dto.BalanceSummaryDTO{}
	}
	return c.JSON(rows)
}

// ListMovements godoc
// @Summary      Detalle de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        name     query  string  false  "Nombre (subcadena)"
// @Param        type_id  query  string  false  "Categoría"
// @Param        is_in    query  int     false  "1 entradas, 2 salidas, vacío ambas"
// @Param        page     query  int     false  "Página (1-based)"
// @Param        size     query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		Name:       c.Query("name"),
		CategoryID: c.Query("type_id"),
		Kind:       c.QueryInt("is_in", 0),
	}
	res, err := h.query.ListMovements(c.Context(), filter, parsePage(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
