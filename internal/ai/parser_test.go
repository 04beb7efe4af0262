package ai

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDraft(t *testing.T) {
	draft, err := decodeDraft(`{
		"type": "INVOICE",
		"client_name": "Acme S.A.",
		"client_ruc": "155-612-345",
		"date": "2024-06-01",
		"items": [{"description": "Consultoría", "quantity": 2, "price": 500, "tax_percent": 7}],
		"notes": ""
	}`)
	require.NoError(t, err)
	require.Equal(t, "INVOICE", draft.Type)
	require.Equal(t, "Acme S.A.", draft.ClientName)
	require.Len(t, draft.Items, 1)
	require.InDelta(t, 7.0, draft.Items[0].TaxPercent, 0.001)
}

func TestDecodeDraftStripsMarkdownFences(t *testing.T) {
	draft, err := decodeDraft("```json\n{\"type\":\"QUOTE\",\"client_name\":\"Beta\",\"items\":[]}\n```")
	require.NoError(t, err)
	require.Equal(t, "QUOTE", draft.Type)
}

func TestDecodeDraftRejectsBadType(t *testing.T) {
	_, err := decodeDraft(`{"type":"RECEIPT","items":[]}`)
	require.Error(t, err)
}

func TestDecodeDraftDropsBadDateAndDefaultsQuantity(t *testing.T) {
	draft, err := decodeDraft(`{
		"type": "EXPENSE",
		"date": "el martes pasado",
		"items": [{"description": "Gasolina", "price": 35}]
	}`)
	require.NoError(t, err)
	require.Empty(t, draft.Date)
	require.InDelta(t, 1.0, draft.Items[0].Quantity, 0.001)
}

func TestDecodeDraftRejectsProse(t *testing.T) {
	_, err := decodeDraft("Claro, aquí está tu factura: total 100")
	require.Error(t, err)
}

func TestParserNotConfigured(t *testing.T) {
	parser := NewOpenAIParser("", "", slog.Default())
	_, err := parser.ParseDocument(context.Background(), "factura para Acme por 100")
	require.ErrorIs(t, err, ErrNotConfigured)
}
