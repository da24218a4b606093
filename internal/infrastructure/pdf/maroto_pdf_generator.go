// Package pdf genera el comprobante de una entrada de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Bodega               │  N° Entrada + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESPONSABLES: Custodio / Registró / Observaciones          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Artículo | Tipo | Unidad | C.Unit | Subtotal │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + QR con el número de la entrada                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ inventory.ReceiptRenderer = (*MarotoReceiptGenerator)(nil)

// MarotoReceiptGenerator implementa inventory.ReceiptRenderer usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// RenderInboundReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) RenderInboundReceipt(_ context.Context, in *dto.InboundDetailResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Entrada de inventario "+in.Num, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(in))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(peopleRow(in))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(in.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(in))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(in *dto.InboundDetailResponse) core.Row {
	warehouse := in.WarehouseID
	if in.WarehouseName != nil {
		warehouse = *in.WarehouseName
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(warehouse, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Bodega", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("ENTRADA DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(in.Num, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+in.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func peopleRow(in *dto.InboundDetailResponse) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RESPONSABLES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Custodio: %s   |   Registró: %s",
				nonEmpty(in.Custodian, "—"),
				nonEmpty(in.PutUser, "—"),
			), props.Text{Size: 8, Top: 6}),
			text.New("Observaciones: "+nonEmpty(in.Content, "—"), props.Text{
				Size: 8, Top: 11, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Artículo", 4, align.Left),
		h("Tipo", 2, align.Left),
		h("Unidad", 1, align.Center),
		h("Costo Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func tableItemRows(items []dto.MovementResponse) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		subtotal := it.UnitCost.Mul(decimal.NewFromInt(it.Quantity)).Round(2)
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(it.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(it.Spec, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(nonEmpty(it.Unit, "—"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+FormatMoney(it.UnitCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+FormatMoney(subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalRow: total de la entrada a la derecha y QR con el número a la izquierda.
func totalRow(in *dto.InboundDetailResponse) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(in.Num, props.Rect{Percent: 90, Center: true})),
		col.New(3),
		col.New(3).Add(text.New("TOTAL ENTRADA:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 4, Right: 2,
		})),
		col.New(3).Add(text.New("$"+FormatMoney(in.Price), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 4, Right: 1,
		})),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatMoney formatea con dos decimales, puntos de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
