// Package pdf genera el relatório de posição de estoque.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razão social + CNPJ │  Título + data de emissão    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Descrição | Un | Saldo | Mín | PMED | Valor│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Valor em estoque / Itens no mínimo                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/ports"
)

var _ ports.PDFGenerator = (*MarotoPDFGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 176, Green: 0, Blue: 32}
)

// MarotoPDFGenerator implementa ports.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateStockPosition genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStockPosition(report dto.StockPositionReportDTO) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Posição de Estoque", true).
		WithAuthor(report.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(report.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r dto.StockPositionReportDTO) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(r.CompanyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CNPJ: "+nonEmpty(r.CompanyCNPJ, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("POSIÇÃO DE ESTOQUE", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido em "+r.GeneratedAt, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
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
		h("Código", 2, align.Left),
		h("Descrição", 4, align.Left),
		h("Un", 1, align.Center),
		h("Saldo", 1, align.Right),
		h("Mínimo", 1, align.Right),
		h("PMED", 1, align.Right),
		h("Valor", 2, align.Right),
	)
}

// itemRows una fila por producto; los que están en el mínimo van en rojo.
func itemRows(items []dto.StockPositionItemDTO) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		base := props.Text{Size: 8, Top: 1}
		if it.AtRisk {
			base.Color = colorAlert
			base.Style = fontstyle.Bold
		}
		cell := func(s string, size int, a align.Type) core.Col {
			p := base
			p.Align = a
			p.Left, p.Right = 1, 1
			return col.New(size).Add(text.New(s, p))
		}
		rows = append(rows, row.New(6).Add(
			cell(it.Code, 2, align.Left),
			cell(it.Description, 4, align.Left),
			cell(it.Unit, 1, align.Center),
			cell(it.Balance.String(), 1, align.Right),
			cell(it.MinStock.String(), 1, align.Right),
			cell(formatBRL(it.Pmed), 1, align.Right),
			cell("R$ "+formatBRL(it.Value), 2, align.Right),
		))
	}
	if len(items) == 0 {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Nenhum produto ativo.", props.Text{Size: 9, Align: align.Center, Color: colorGray, Top: 2}),
		)))
	}
	return rows
}

func totalsRow(r dto.StockPositionReportDTO) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Color: colorPrimary})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Valor em estoque:")),
		col.New(3).Add(
			text.New("R$ "+formatBRL(r.TotalValue), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1}),
			text.New(fmt.Sprintf("%d itens no mínimo", r.AtRiskCount), props.Text{Size: 8, Align: align.Right, Top: 6, Right: 1, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatBRL formatea con 2 decimales al estilo brasileño: 1234567.8 → "1.234.567,80".
func formatBRL(v decimal.Decimal) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
