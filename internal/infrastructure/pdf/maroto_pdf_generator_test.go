package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"11.8":      "11,80",
		"1000":      "1.000,00",
		"1234567.5": "1.234.567,50",
		"-2500.25":  "-2.500,25",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdf.FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRenderInboundReceipt(t *testing.T) {
	name := "Central"
	detail := &dto.InboundDetailResponse{
		InboundResponse: dto.InboundResponse{
			ID:            "put-1",
			Num:           "PUT-1773484200000",
			Price:         decimal.RequireFromString("11.80"),
			Custodian:     "jperez",
			PutUser:       "jperez",
			WarehouseID:   "wh-1",
			WarehouseName: &name,
			CreatedAt:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		},
		Items: []dto.MovementResponse{
			{Name: "Pen", Spec: "azul", Quantity: 4, Unit: "unidad", UnitCost: decimal.RequireFromString("1.20")},
			{Name: "Notebook", Quantity: 2, UnitCost: decimal.RequireFromString("3.50")},
		},
	}

	out, err := pdf.NewMarotoReceiptGenerator().RenderInboundReceipt(context.Background(), detail)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "se esperaba un documento PDF")
}
