package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestItemRequest línea de una solicitud.
type RequestItemRequest struct {
	BalanceID  string          `json:"stock_info_id,omitempty"`
	Name       string          `json:"name"`
	CategoryID string          `json:"type_id,omitempty"`
	Spec       string          `json:"type,omitempty"`
	Quantity   int64           `json:"amount"`
	Unit       string          `json:"unit,omitempty"`
	UnitCost   decimal.Decimal `json:"price"`
}

// CreateRequestRequest body para crear solicitudes de compra o de artículos.
type CreateRequestRequest struct {
	PurchaseNum string               `json:"purchase_num,omitempty"`
	Content     string               `json:"content,omitempty"`
	Items       []RequestItemRequest `json:"items"`
}

// UpdateRequestRequest body para actualizar el contenido de una solicitud pendiente.
type UpdateRequestRequest struct {
	Content *string `json:"content"`
}

// ApproveRequestRequest body para aprobar o rechazar.
type ApproveRequestRequest struct {
	Approved bool `json:"approved"`
}

// RequestItemResponse línea de una solicitud.
type RequestItemResponse struct {
	ID         string          `json:"id"`
	BalanceID  string          `json:"stock_info_id,omitempty"`
	Name       string          `json:"name"`
	CategoryID string          `json:"type_id"`
	Spec       string          `json:"type"`
	Quantity   int64           `json:"amount"`
	Unit       string          `json:"unit"`
	UnitCost   decimal.Decimal `json:"price"`
}

// RequestResponse solicitud de compra o de artículos.
type RequestResponse struct {
	ID          string                `json:"id"`
	Kind        string                `json:"kind"`
	Num         string                `json:"num"`
	PurchaseNum string                `json:"purchase_num,omitempty"`
	RequesterID string                `json:"user_id"`
	Content     string                `json:"content"`
	Status      string                `json:"status"`
	TotalPrice  decimal.Decimal       `json:"total_price"`
	ApproverID  string                `json:"approve_user_id,omitempty"`
	ApprovedAt  *time.Time            `json:"approve_date"`
	CreatedAt   time.Time             `json:"create_date"`
	Items       []RequestItemResponse `json:"items,omitempty"`
}

// RequestListResponse lista paginada de solicitudes.
type RequestListResponse struct {
	Records []RequestResponse `json:"records"`
	PageResponse
}
