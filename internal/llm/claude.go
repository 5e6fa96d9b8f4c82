package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ClaudeAPIBaseURL = "https://api.anthropic.com/v1"
	ClaudeVersion    = "2023-06-01"
	MaxTokens        = 512
	Temperature      = 0.0 // deterministic SQL generation

	// EmbeddingDim is the dimension of the lightweight embeddings stored in
	// the consultas history table. Must match the vector column width.
	EmbeddingDim = 256
)

// ClaudeClient implements the Client interface using Anthropic's Claude API
type ClaudeClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Claude API request structures
type ClaudeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Claude API response structures
type ClaudeResponse struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
	Model   string         `json:"model"`
	Usage   Usage          `json:"usage"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Error response structure
type ClaudeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ClaudeErrorResponse struct {
	Error ClaudeError `json:"error"`
}

// NewClaudeClient creates a new Claude client
func NewClaudeClient(apiKey, model string) (*ClaudeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	return &ClaudeClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: ClaudeAPIBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Translate sends the question to Claude and returns a candidate SQL
// statement. The result is untrusted model output.
func (c *ClaudeClient) Translate(ctx context.Context, question string, examples []Example) (string, error) {
	request := ClaudeRequest{
		Model:       c.model,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		Messages: []Message{
			{
				Role:    "user",
				Content: buildPrompt(question, examples),
			},
		},
	}

	response, err := c.sendClaudeRequestWithRetry(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to send request to Claude: %w", err)
	}

	sql := extractSQL(response)
	if sql == "" {
		return "", fmt.Errorf("Claude did not return a SQL statement")
	}

	return sql, nil
}

// Embed implements simple text-based similarity using basic string features.
// Claude does not provide embeddings, so this creates a lightweight
// representation good enough for few-shot example retrieval.
func (c *ClaudeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return createSimpleEmbedding(text), nil
}

// buildPrompt creates the translation prompt for the ventas table
func buildPrompt(question string, examples []Example) string {
	var sb strings.Builder

	sb.WriteString("Eres un asistente que traduce preguntas en lenguaje natural sobre ventas ")
	sb.WriteString("a consultas SQL seguras para la tabla 'ventas'. Solo genera consultas SELECT.\n")
	sb.WriteString("Devuelve únicamente la consulta SQL, sin explicaciones ni markdown.\n\n")
	sb.WriteString("Columnas disponibles: producto, vendedor, ciudad, cantidad, precio, fecha.\n\n")

	if len(examples) > 0 {
		sb.WriteString("Ejemplos:\n")
		for i, ex := range examples {
			if i >= 3 {
				break
			}
			sb.WriteString(fmt.Sprintf("Pregunta: %s\nSQL: %s\n\n", ex.Question, ex.SQL))
		}
	}

	sb.WriteString(fmt.Sprintf("Pregunta: %s\nSQL:", question))

	return sb.String()
}

// sendClaudeRequest handles the HTTP communication with the Claude API
func (c *ClaudeClient) sendClaudeRequest(ctx context.Context, request ClaudeRequest) (*ClaudeResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", ClaudeVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp.StatusCode, body)
	}

	var claudeResponse ClaudeResponse
	if err := json.Unmarshal(body, &claudeResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &claudeResponse, nil
}

// extractSQL pulls the SQL statement out of Claude's response text.
// Models wrap output in code fences or prefix it with prose despite the
// prompt asking them not to; both are handled here.
func extractSQL(response *ClaudeResponse) string {
	if len(response.Content) == 0 {
		return ""
	}

	text := strings.TrimSpace(response.Content[0].Text)

	// Code fence first: the most reliable shape
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```sql")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Otherwise take everything from the first SELECT onward, stopping at a
	// blank line that would start an explanation paragraph.
	lowered := strings.ToLower(text)
	start := strings.Index(lowered, "select")
	if start < 0 {
		return ""
	}
	text = text[start:]
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

// handleAPIError processes Claude API errors
func (c *ClaudeClient) handleAPIError(statusCode int, body []byte) error {
	var errorResponse ClaudeErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil {
		return fmt.Errorf("API error %d: %s", statusCode, string(body))
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("invalid API key: %s", errorResponse.Error.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("rate limit exceeded: %s", errorResponse.Error.Message)
	case http.StatusBadRequest:
		return fmt.Errorf("bad request: %s", errorResponse.Error.Message)
	case http.StatusInternalServerError:
		return fmt.Errorf("Claude API internal error: %s", errorResponse.Error.Message)
	default:
		return fmt.Errorf("Claude API error %d: %s", statusCode, errorResponse.Error.Message)
	}
}

// createSimpleEmbedding creates a basic text representation for similarity
// matching between questions about the sales dataset
func createSimpleEmbedding(text string) []float32 {
	embedding := make([]float32, EmbeddingDim)

	text = strings.ToLower(text)

	// Feature 0-37: character frequencies, including accented vowels
	chars := "abcdefghijklmnopqrstuvwxyzáéíóúñ0123456789 "
	for i, char := range chars {
		if i >= 50 {
			break
		}
		count := strings.Count(text, string(char))
		if count > 0 && len(text) > 0 {
			embedding[i] = float32(count) / float32(len(text))
		}
	}

	// Feature 50-: vocabulary of the sales domain
	keywords := []string{
		"venta", "ventas", "producto", "productos", "vendedor", "vendedores",
		"ciudad", "cantidad", "precio", "fecha", "total", "suma", "promedio",
		"máximo", "maximo", "mínimo", "minimo", "top", "mejor", "peor",
		"mes", "año", "dia", "semana", "trimestre",
		"gráfico", "grafico", "grafica", "tabla", "archivo", "csv", "excel",
		"medellín", "medellin", "bogotá", "bogota", "cali",
		"cuántos", "cuantos", "cuál", "cual", "quién", "quien", "dónde", "donde",
		"muestra", "guarda", "genera", "compara", "lista",
	}

	for i, keyword := range keywords {
		if i+50 >= EmbeddingDim {
			break
		}
		if strings.Contains(text, keyword) {
			embedding[i+50] = 1.0
		}
	}

	// Structural features
	embedding[120] = float32(len(text)) / 1000.0
	if len(text) > 0 {
		embedding[121] = float32(strings.Count(text, " ")) / float32(len(text))
	}
	embedding[122] = float32(strings.Count(text, "?") + strings.Count(text, "¿"))

	// Normalize the vector
	var magnitude float32
	for _, val := range embedding {
		magnitude += val * val
	}
	if magnitude > 0 {
		magnitude = float32(1.0 / (magnitude + 0.001))
		for i := range embedding {
			embedding[i] *= magnitude
		}
	}

	return embedding
}
