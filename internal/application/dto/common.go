package dto

import "math"

// Límites de paginación.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest paginación 1-based para listados (page, size).
type PageRequest struct {
	Page int `query:"page"`
	Size int `query:"size"`
}

// Normalize aplica valores por defecto y límites. La página se acota para que Offset no desborde.
func (p *PageRequest) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if maxPage := math.MaxInt32 / p.Size; p.Page > maxPage {
		p.Page = maxPage
	}
}

// Offset filas a saltar para la página actual; 0 si la petición no está normalizada.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Size <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Total   int `json:"total"`
	Size    int `json:"size"`
	Current int `json:"current"`
	Pages   int `json:"pages"`
}

// NewPageResponse calcula pages = ceil(total / size).
func NewPageResponse(p PageRequest, total int) PageResponse {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return PageResponse{Total: total, Size: p.Size, Current: p.Page, Pages: pages}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
