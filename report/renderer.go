package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/panafact/panafact/internal/document"
)

// docTemplate lays out invoices, quotes and expense records. Panamanian
// documents are billed in balboas; amounts render with the B/. prefix.
var docTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("B/. %.2f", v) },
	"mul":   func(a, b float64) float64 { return a * b },
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.Doc.ID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 40px; }
h1 { font-size: 22px; margin-bottom: 0; }
.meta { color: #555; margin-bottom: 24px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { text-align: left; padding: 8px 6px; border-bottom: 1px solid #ddd; }
th { background: #f4f4f4; font-size: 12px; text-transform: uppercase; }
td.num, th.num { text-align: right; }
.totals { margin-top: 16px; width: 40%; margin-left: auto; }
.totals td { border: none; padding: 4px 6px; }
.totals tr.total td { font-weight: bold; border-top: 2px solid #1a1a1a; }
.status { display: inline-block; padding: 2px 10px; border: 1px solid #888; border-radius: 10px; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">
{{.Doc.ClientName}}{{if .Doc.ClientTaxID}} · RUC {{.Doc.ClientTaxID}}{{end}}<br>
Fecha: {{.Doc.Date.Format "02/01/2006"}} · <span class="status">{{.Doc.Status}}</span>
</p>
<table>
<thead>
<tr><th>Descripción</th><th class="num">Cant.</th><th class="num">Precio</th><th class="num">ITBMS %</th><th class="num">Importe</th></tr>
</thead>
<tbody>
{{range .Doc.Items}}
<tr>
<td>{{.Description}}</td>
<td class="num">{{.Quantity}}</td>
<td class="num">{{money .Price}}</td>
<td class="num">{{.TaxPercent}}</td>
<td class="num">{{money (mul .Quantity .Price)}}</td>
</tr>
{{end}}
</tbody>
</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{money .Doc.Subtotal}}</td></tr>
<tr><td>ITBMS</td><td class="num">{{money .Doc.TaxTotal}}</td></tr>
<tr class="total"><td>Total</td><td class="num">{{money .Doc.Total}}</td></tr>
{{if gt .Doc.AmountPaid 0.0}}<tr><td>Abonado</td><td class="num">{{money .Doc.AmountPaid}}</td></tr>{{end}}
</table>
</body>
</html>`))

// Renderer turns documents into PDFs via Gotenberg.
type Renderer struct {
	client *Client
}

// NewRenderer builds Renderer instance.
func NewRenderer(client *Client) *Renderer {
	return &Renderer{client: client}
}

// RenderDocument produces the printable PDF for a document.
func (r *Renderer) RenderDocument(ctx context.Context, doc document.Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html)
}

// RenderHTML produces the document's HTML without converting it, used by
// email bodies and tests.
func RenderHTML(doc document.Document) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Title string
		Doc   document.Document
	}{Title: titleFor(doc.Type), Doc: doc}
	if err := docTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render document html: %w", err)
	}
	return buf.String(), nil
}

func titleFor(t document.Type) string {
	switch t {
	case document.TypeQuote:
		return "Cotización"
	case document.TypeExpense:
		return "Registro de gasto"
	default:
		return "Factura"
	}
}
