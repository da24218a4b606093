package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/request"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// RequestHandler maneja solicitudes de compra o de artículos; una instancia por tipo.
type RequestHandler struct {
	uc   *request.UseCase
	kind string
}

// NewRequestHandler construye el handler para el tipo indicado (entity.RequestKindPurchase o entity.RequestKindGoods).
func NewRequestHandler(uc *request.UseCase, kind string) *RequestHandler {
	return &RequestHandler{uc: uc, kind: kind}
}

// Create godoc
// @Summary      Crear solicitud
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "items[name, amount, price], content, purchase_num (solo artículos)"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-requests [post]
// @Router       /api/goods-requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Create(c.Context(), h.kind, actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        num      query  string  false  "Número (subcadena)"
// @Param        status   query  string  false  "PENDING | APPROVED | REJECTED"
// @Param        user_id  query  string  false  "Solicitante"
// @Param        page     query  int     false  "Página (1-based)"
// @Param        size     query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.RequestListResponse
// @Router       /api/purchase-requests [get]
// @Router       /api/goods-requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	filter := repository.RequestFilter{
		Kind:        h.kind,
		Num:         c.Query("num"),
		Status:      c.Query("status"),
		RequesterID: c.Query("user_id"),
	}
	res, err := h.uc.List(c.Context(), filter, parsePage(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// GetByID godoc
// @Summary      Detalle de una solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-requests/{id} [get]
// @Router       /api/goods-requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.get(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// UpdateContent godoc
// @Summary      Actualizar observación de una solicitud pendiente
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la solicitud"
// @Param        body  body  dto.UpdateRequestRequest  true  "content"
// @Success      200   {object}  dto.RequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-requests/{id} [put]
// @Router       /api/goods-requests/{id} [put]
func (h *RequestHandler) UpdateContent(c *fiber.Ctx) error {
	var in dto.UpdateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if _, err := h.get(c); err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.UpdateContent(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Approve godoc
// @Summary      Aprobar o rechazar una solicitud
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la solicitud"
// @Param        body  body  dto.ApproveRequestRequest  true  "approved"
// @Success      200   {object}  dto.RequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-requests/{id}/approve [post]
// @Router       /api/goods-requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if _, err := h.get(c); err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.Approve(c.Context(), c.Params("id"), actor(c), in.Approved)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Delete godoc
// @Summary      Eliminar una solicitud
// @Tags         requests
// @Security     Bearer
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-requests/{id} [delete]
// @Router       /api/goods-requests/{id} [delete]
func (h *RequestHandler) Delete(c *fiber.Ctx) error {
	if _, err := h.get(c); err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// get carga la solicitud y verifica que sea del tipo del handler.
func (h *RequestHandler) get(c *fiber.Ctx) (*dto.RequestResponse, error) {
	res, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if res.Kind != h.kind {
		return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, c.Params("id"))
	}
	return res, nil
}
