package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de solicitud.
const (
	RequestKindPurchase = "PURCHASE" // solicitud de compra (RUR-)
	RequestKindGoods    = "GOODS"    // solicitud de artículos (REQ-)
)

// Estados de una solicitud. approved y rejected son terminales.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// Request solicitud de compra o de artículos. Solo cambia de estado; nunca toca el libro de inventario.
type Request struct {
	ID          string
	Kind        string
	Num         string
	PurchaseNum string // solicitudes de artículos: número de compra relacionada
	RequesterID string
	Content     string
	Status      string
	TotalPrice  decimal.Decimal
	ApproverID  string
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	Items       []RequestItem
}

// RequestItem línea de una solicitud.
type RequestItem struct {
	ID         string
	RequestID  string
	BalanceID  string // opcional: saldo de referencia en solicitudes de artículos
	Name       string
	CategoryID string
	Spec       string
	Quantity   int64
	Unit       string
	UnitCost   decimal.Decimal
}

// IsTerminal indica si la solicitud ya fue resuelta.
func (r *Request) IsTerminal() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}
