package ports

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
)

// LLMService define el puerto de salida para la redacción asistida por IA.
// Cualquier adaptador (Anthropic, mock) debe implementar esta interfaz; la aplicación
// solo conoce este contrato.
type LLMService interface {
	// WriteMonthlyReport redacta en portugués el análisis del mes a partir de los datos consolidados.
	// El contexto debe llevar un timeout: es una llamada externa lenta.
	WriteMonthlyReport(ctx context.Context, data dto.MonthlyReportDataDTO) (string, error)

	// Model identifica el modelo usado (se devuelve junto al texto).
	Model() string
}

// PDFGenerator genera documentos PDF en memoria.
type PDFGenerator interface {
	GenerateStockPosition(report dto.StockPositionReportDTO) ([]byte, error)
}
