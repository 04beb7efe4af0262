package tax

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/panafact/panafact/internal/document"
	"github.com/panafact/panafact/internal/report"
	"github.com/panafact/panafact/internal/users"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func window12M(t *testing.T) report.Window {
	t.Helper()
	w, err := report.ResolveWindow(report.Range12M, time.Time{}, time.Time{}, testNow)
	require.NoError(t, err)
	return w
}

func paidInvoice(total, taxPercent float64) document.Document {
	items := []document.LineItem{{Description: "Servicio", Quantity: 1, Price: total, TaxPercent: taxPercent}}
	subtotal, taxTotal, grand := document.CalcTotals(items)
	return document.Document{
		Type: document.TypeInvoice, ClientName: "Acme",
		Items: items, Subtotal: subtotal, TaxTotal: taxTotal, Total: grand,
		Status: document.StatusPagada,
		Date:   testNow.AddDate(0, -1, 0),
	}
}

func paidExpense(total float64) document.Document {
	return document.Document{
		Type: document.TypeExpense, Total: total,
		Status: document.StatusPagada,
		Date:   testNow.AddDate(0, -1, 0),
	}
}

func TestNaturalISRBrackets(t *testing.T) {
	require.Zero(t, naturalISR(8000))
	require.Zero(t, naturalISR(11000))
	require.InDelta(t, 1350.0, naturalISR(20000), 0.001)
	// Continuity at the bracket boundary: 15% formula up to exactly 50k
	// equals the fixed base that starts the 25% bracket.
	require.InDelta(t, 5850.0, naturalISR(50000), 0.001)
	require.InDelta(t, 5850.0+2500.0, naturalISR(60000), 0.001)
}

func TestCorporateISRAndCAIR(t *testing.T) {
	// Below the gross threshold: flat 25% on net.
	isr, cair := corporateISR(100000, 800000)
	require.False(t, cair)
	require.InDelta(t, 25000.0, isr, 0.001)

	// Above the threshold with thin margins the 4.67% gross floor wins.
	isr, cair = corporateISR(100000, 2000000)
	require.True(t, cair)
	require.InDelta(t, 93400.0, isr, 0.001)

	// Above the threshold with fat margins the regular calculation wins.
	isr, cair = corporateISR(800000, 2000000)
	require.True(t, cair)
	require.InDelta(t, 200000.0, isr, 0.001)

	// Losses never produce negative tax, but CAIR still floors gross.
	isr, cair = corporateISR(-50000, 2000000)
	require.True(t, cair)
	require.InDelta(t, 93400.0, isr, 0.001)
}

func TestProjectITBMSUsesEmbeddedRatio(t *testing.T) {
	docs := []document.Document{
		paidInvoice(1000, 7),
		paidInvoice(500, 0),
		paidExpense(200),
	}
	p := Project(docs, window12M(t), users.EntityNatural, testNow)

	// 1070 collected carries 70 tax; the untaxed invoice adds none.
	require.InDelta(t, 70.0, p.ITBMSCollected, 0.01)
	require.InDelta(t, 14.0, p.ITBMSPaid, 0.001)
	require.InDelta(t, 56.0, p.ITBMSNet, 0.01)
	require.InDelta(t, 1570.0, p.PeriodIncome, 0.01)
	require.InDelta(t, 200.0, p.PeriodExpenses, 0.001)
	require.Equal(t, Disclaimer, p.Disclaimer)
}

func TestProjectAnnualizes(t *testing.T) {
	doc := paidInvoice(3000, 0)
	doc.Date = testNow.AddDate(0, 0, -10)
	docs := []document.Document{doc}
	w, err := report.ResolveWindow(report.Range30D, time.Time{}, time.Time{}, testNow)
	require.NoError(t, err)

	p := Project(docs, w, users.EntityNatural, testNow)
	require.InDelta(t, 36000.0, p.AnnualGross, 0.001)
	require.InDelta(t, 36000.0, p.AnnualNet, 0.001)
	require.InDelta(t, (36000.0-11000.0)*0.15, p.ISRAnnual, 0.001)
}

func TestProjectSkipsUncollectedAndDrafts(t *testing.T) {
	open := paidInvoice(1000, 7)
	open.Status = document.StatusEnviada
	open.AmountPaid = 0

	p := Project([]document.Document{open}, window12M(t), users.EntityNatural, testNow)
	require.Zero(t, p.PeriodIncome)
	require.Zero(t, p.ITBMSCollected)
}

func TestInsightsRules(t *testing.T) {
	// Enough collected ITBMS to trip the reserve warning.
	docs := []document.Document{paidInvoice(20000, 7)}
	p := Project(docs, window12M(t), users.EntityNatural, testNow)
	require.NotEmpty(t, p.Insights)

	var hasITBMS, hasNoExpenses bool
	for _, insight := range p.Insights {
		if strings.Contains(insight, "ITBMS") {
			hasITBMS = true
		}
		if strings.Contains(insight, "gastos") {
			hasNoExpenses = true
		}
	}
	require.True(t, hasITBMS)
	require.True(t, hasNoExpenses)
}
