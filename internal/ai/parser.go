package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured indicates that no OpenAI API key was provided; the
// endpoint responds with 503 so clients can fall back to manual entry.
var ErrNotConfigured = errors.New("ai: parser not configured")

// DraftItem is one extracted line item.
type DraftItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	TaxPercent  float64 `json:"tax_percent"`
}

// Draft is the structured result of parsing free-form text. Fields the model
// could not determine are left zero; the draft is a starting point, never a
// persisted document.
type Draft struct {
	Type       string      `json:"type"`
	ClientName string      `json:"client_name"`
	ClientRUC  string      `json:"client_ruc"`
	Date       string      `json:"date"`
	Items      []DraftItem `json:"items"`
	Notes      string      `json:"notes"`
}

// Parser extracts a document draft from natural-language text.
type Parser interface {
	ParseDocument(ctx context.Context, text string) (Draft, error)
}

const maxAttempts = 3

const systemPrompt = `Eres un asistente que extrae datos de facturas, cotizaciones y gastos
para pequeños negocios en Panamá. El usuario describe un documento en lenguaje natural,
posiblemente mezclando español e inglés.

Devuelve EXCLUSIVAMENTE un objeto JSON válido, sin texto antes ni después, con estos campos:
{
  "type": "INVOICE, QUOTE o EXPENSE",
  "client_name": "nombre del cliente o proveedor, o cadena vacía",
  "client_ruc": "RUC si se menciona, o cadena vacía",
  "date": "YYYY-MM-DD si se menciona, o cadena vacía",
  "items": [{"description": "...", "quantity": 1, "price": 0, "tax_percent": 7}],
  "notes": "detalles que no encajan en otros campos, o cadena vacía"
}

Reglas:
- Montos en balboas/dólares como números, sin símbolos.
- El ITBMS estándar es 7; usa 0 solo si el texto indica exención.
- No inventes datos que el texto no contiene.
- Sin coma final después del último campo.`

// OpenAIParser implements Parser over the chat completions API.
type OpenAIParser struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIParser builds the parser. An empty API key yields a parser whose
// calls fail with ErrNotConfigured rather than a nil pointer.
func NewOpenAIParser(apiKey, model string, logger *slog.Logger) *OpenAIParser {
	p := &OpenAIParser{model: model, logger: logger}
	if p.model == "" {
		p.model = openai.GPT4oMini
	}
	if apiKey != "" {
		p.client = openai.NewClient(apiKey)
	}
	return p
}

// ParseDocument sends the text to the model and decodes the JSON draft,
// retrying on transport errors and malformed responses.
func (p *OpenAIParser) ParseDocument(ctx context.Context, text string) (Draft, error) {
	if p.client == nil {
		return Draft{}, ErrNotConfigured
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       p.model,
			Temperature: 0.1,
			MaxTokens:   800,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: text},
			},
		})
		if err != nil {
			lastErr = err
			p.logger.Warn("ai parse request failed",
				slog.Int("attempt", attempt), slog.Any("error", err))
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("ai: empty completion response")
			continue
		}

		draft, err := decodeDraft(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = err
			p.logger.Warn("ai parse response rejected",
				slog.Int("attempt", attempt), slog.Any("error", err))
			continue
		}
		return draft, nil
	}
	return Draft{}, fmt.Errorf("ai: parse failed after %d attempts: %w", maxAttempts, lastErr)
}

// decodeDraft tolerates models that wrap the JSON in markdown fences.
func decodeDraft(content string) (Draft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var draft Draft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return Draft{}, fmt.Errorf("ai: decode draft: %w", err)
	}

	switch draft.Type {
	case "INVOICE", "QUOTE", "EXPENSE":
	default:
		return Draft{}, fmt.Errorf("ai: invalid document type %q", draft.Type)
	}
	if draft.Date != "" {
		if _, err := time.Parse("2006-01-02", draft.Date); err != nil {
			draft.Date = ""
		}
	}
	for i := range draft.Items {
		if draft.Items[i].Quantity <= 0 {
			draft.Items[i].Quantity = 1
		}
	}
	return draft, nil
}
