package pdf

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
)

func TestFormatBRL(t *testing.T) {
	cases := map[string]string{
		"0":          "0,00",
		"12.5":       "12,50",
		"1234":       "1.234,00",
		"1234567.8":  "1.234.567,80",
		"-98765.432": "-98.765,43",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatBRL(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateStockPosition(t *testing.T) {
	report := dto.StockPositionReportDTO{
		CompanyName: "Hospital Santa Luzia",
		CompanyCNPJ: "11222333000181",
		GeneratedAt: "10/03/2026 14:00",
		Items: []dto.StockPositionItemDTO{
			{Code: "LUVA-01", Description: "Luva nitrílica", Unit: "CX", Balance: decimal.NewFromInt(3),
				MinStock: decimal.NewFromInt(5), Pmed: decimal.RequireFromString("12.5"), Value: decimal.RequireFromString("37.5"), AtRisk: true},
			{Code: "PAP-A4", Description: "Papel A4", Unit: "CX", Balance: decimal.NewFromInt(40),
				MinStock: decimal.NewFromInt(10), Pmed: decimal.NewFromInt(20), Value: decimal.NewFromInt(800)},
		},
		TotalValue:  decimal.RequireFromString("837.5"),
		AtRiskCount: 1,
	}

	out, err := NewMarotoPDFGenerator().GenerateStockPosition(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateStockPosition_SinProductos(t *testing.T) {
	out, err := NewMarotoPDFGenerator().GenerateStockPosition(dto.StockPositionReportDTO{CompanyName: "Vazio"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
