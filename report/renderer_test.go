package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/panafact/panafact/internal/document"
)

func TestRenderHTML(t *testing.T) {
	items := []document.LineItem{
		{Description: "Diseño de logo", Quantity: 1, Price: 350, TaxPercent: 7},
	}
	subtotal, taxTotal, total := document.CalcTotals(items)
	doc := document.Document{
		ID:          "doc-123",
		ClientName:  "Acme S.A.",
		ClientTaxID: "155-612-345",
		Type:        document.TypeInvoice,
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Items:       items,
		Subtotal:    subtotal,
		TaxTotal:    taxTotal,
		Total:       total,
		Status:      document.StatusEnviada,
	}

	html, err := RenderHTML(doc)
	require.NoError(t, err)
	require.Contains(t, html, "Factura")
	require.Contains(t, html, "Acme S.A.")
	require.Contains(t, html, "RUC 155-612-345")
	require.Contains(t, html, "Diseño de logo")
	require.Contains(t, html, "B/. 350.00")
	require.Contains(t, html, "B/. 374.50")
	require.Contains(t, html, "01/06/2024")
}

func TestRenderHTMLQuoteTitleAndAbono(t *testing.T) {
	doc := document.Document{
		ID:         "q-1",
		ClientName: "Beta",
		Type:       document.TypeQuote,
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Total:      100,
		AmountPaid: 40,
		Status:     document.StatusEnviada,
	}
	html, err := RenderHTML(doc)
	require.NoError(t, err)
	require.Contains(t, html, "Cotización")
	require.Contains(t, html, "Abonado")
	require.Contains(t, html, "B/. 40.00")
}
