package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/ports"
)

// Verificar en tiempo de compilación que AnthropicService implementa LLMService.
var _ ports.LLMService = (*AnthropicService)(nil)

const (
	defaultMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion   = "2023-06-01"

	monthlyReportSystemPrompt = `Você é um analista de suprimentos que escreve relatórios mensais de almoxarifado para gestores.
Receberá um JSON com os números consolidados do mês (entradas, saídas, valor em estoque, produtos no mínimo,
produtos mais consumidos e consumo por setor).
Escreva em português do Brasil, em no máximo 4 parágrafos curtos:
- visão geral do mês (entradas x saídas, valor em estoque);
- destaques de consumo por produto e por setor;
- riscos de ruptura e recomendações de compra.
Use apenas os números fornecidos; não invente dados. Valores em reais no formato R$ 1.234,56. Sem markdown.`
)

// AnthropicService adaptador que implementa LLMService usando la API REST de Anthropic (Claude).
// Usa net/http de la librería estándar; no requiere el SDK oficial.
type AnthropicService struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador.
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		url:    defaultMessagesURL,
		httpClient: &http.Client{
			// el use case impone además un context.WithTimeout de 30 s
			Timeout: 45 * time.Second,
		},
	}
}

// WithBaseURL apunta el adaptador a otro endpoint (tests con httptest).
func (s *AnthropicService) WithBaseURL(url string) *AnthropicService {
	s.url = url
	return s
}

// Model devuelve el modelo configurado.
func (s *AnthropicService) Model() string { return s.model }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteMonthlyReport envía los datos del mes a Claude y devuelve el texto redactado.
func (s *AnthropicService) WriteMonthlyReport(ctx context.Context, data dto.MonthlyReportDataDTO) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("AI: serializar datos del mes: %w", err)
	}

	payload := anthropicRequest{
		Model:     s.model,
		MaxTokens: 1500,
		System:    monthlyReportSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: "Dados do mês:\n" + string(dataJSON)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return "", fmt.Errorf("AI: Anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return "", fmt.Errorf("AI: Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return "", fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}

	var sb strings.Builder
	for _, c := range anthResp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}
	return text, nil
}
