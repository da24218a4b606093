package inventory

import (
	"context"
	"fmt"
)

// ReceiptUseCase genera el comprobante PDF de una entrada.
type ReceiptUseCase struct {
	query    *QueryUseCase
	renderer ReceiptRenderer
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(query *QueryUseCase, renderer ReceiptRenderer) *ReceiptUseCase {
	return &ReceiptUseCase{query: query, renderer: renderer}
}

// DownloadInboundReceipt devuelve los bytes del PDF y el nombre de archivo sugerido.
// domain.ErrNotFound si la entrada no existe.
func (uc *ReceiptUseCase) DownloadInboundReceipt(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	detail, err := uc.query.GetInbound(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.renderer.RenderInboundReceipt(ctx, detail)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante %s: %w", detail.Num, err)
	}
	return pdfBytes, fmt.Sprintf("entrada_%s.pdf", detail.Num), nil
}
