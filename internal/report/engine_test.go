package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/panafact/panafact/internal/directory"
	"github.com/panafact/panafact/internal/document"
)

var testNow = time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)

func testWindow(t *testing.T, start, end time.Time) Window {
	t.Helper()
	w, err := ResolveWindow(RangeCustom, start, end, testNow)
	require.NoError(t, err)
	return w
}

func TestMonthlyBucketsSortAcrossYearBoundary(t *testing.T) {
	docs := []document.Document{
		{Type: document.TypeInvoice, ClientName: "A", Total: 100, Status: document.StatusPagada,
			Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{Type: document.TypeInvoice, ClientName: "B", Total: 200, Status: document.StatusPagada,
			Date: time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)},
	}
	window := testWindow(t,
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	summary := BuildSummary(docs, window, testNow, directory.ExactMatcher{})
	require.Len(t, summary.Monthly, 2)
	require.Equal(t, "Dic 23", summary.Monthly[0].Label)
	require.Equal(t, "Ene 24", summary.Monthly[1].Label)
	require.InDelta(t, 200.0, summary.Monthly[0].Ingresos, 0.001)
	require.InDelta(t, 100.0, summary.Monthly[1].Ingresos, 0.001)
}

func TestExpensesFeedGastos(t *testing.T) {
	docs := []document.Document{
		{Type: document.TypeInvoice, ClientName: "A", Total: 500, Status: document.StatusPagada,
			Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Type: document.TypeExpense, Total: 120, Status: document.StatusPagada,
			Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
	}
	window := testWindow(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	summary := BuildSummary(docs, window, testNow, directory.ExactMatcher{})
	require.InDelta(t, 500.0, summary.TotalIngresos, 0.001)
	require.InDelta(t, 120.0, summary.TotalGastos, 0.001)
	require.InDelta(t, 380.0, summary.Net, 0.001)
}

func TestFunnelNonExclusive(t *testing.T) {
	doc := document.Document{
		Type: document.TypeInvoice, ClientName: "A", Total: 100,
		Status: document.StatusEnviada,
		Date:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Timeline: []document.TimelineEvent{
			{Kind: document.EventCreated, At: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
			{Kind: document.EventOpened, At: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)},
		},
	}
	window := testWindow(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	summary := BuildSummary([]document.Document{doc}, window, testNow, directory.ExactMatcher{})
	require.Equal(t, 1, summary.Funnel.Enviada)
	require.Equal(t, 1, summary.Funnel.Viewed)
	require.Zero(t, summary.Funnel.Borrador)
	require.Zero(t, summary.Funnel.Collected)
}

func TestDSOAveragesCreatedToPaid(t *testing.T) {
	mk := func(days int) document.Document {
		created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		return document.Document{
			Type: document.TypeInvoice, ClientName: "A", Total: 100,
			Status: document.StatusPagada,
			Date:   created,
			Timeline: []document.TimelineEvent{
				{Kind: document.EventCreated, At: created},
				{Kind: document.EventPaid, At: created.AddDate(0, 0, days)},
			},
		}
	}
	// Paid without a PAID event stays out of the average.
	incomplete := document.Document{
		Type: document.TypeInvoice, ClientName: "B", Total: 100,
		Status: document.StatusPagada,
		Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Timeline: []document.TimelineEvent{
			{Kind: document.EventCreated, At: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		},
	}
	window := testWindow(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	summary := BuildSummary([]document.Document{mk(10), mk(20), incomplete}, window, testNow, directory.ExactMatcher{})
	require.InDelta(t, 15.0, summary.DSODays, 0.001)
}

func TestConversionRate(t *testing.T) {
	docs := []document.Document{
		{Type: document.TypeQuote, ClientName: "A", Total: 100, Status: document.StatusAceptada,
			Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Type: document.TypeQuote, ClientName: "B", Total: 100, Status: document.StatusEnviada,
			Date: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)},
		{Type: document.TypeQuote, ClientName: "C", Total: 100, Status: document.StatusRechazada,
			Date: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)},
		{Type: document.TypeQuote, ClientName: "D", Total: 100, Status: document.StatusNegociacion,
			Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
	}
	window := testWindow(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	summary := BuildSummary(docs, window, testNow, directory.ExactMatcher{})
	require.Equal(t, 4, summary.QuoteCount)
	require.Equal(t, 1, summary.QuotesWon)
	require.InDelta(t, 25.0, summary.ConversionRate, 0.001)
}

func TestRetentionBuckets(t *testing.T) {
	docs := []document.Document{
		{Type: document.TypeInvoice, ClientName: "Reciente", Total: 100, Status: document.StatusPagada,
			Date: testNow.AddDate(0, 0, -10)},
		{Type: document.TypeInvoice, ClientName: "Dormido", Total: 100, Status: document.StatusPagada,
			Date: testNow.AddDate(0, 0, -120)},
	}
	window := testWindow(t, testNow.AddDate(-1, 0, 0), testNow)

	summary := BuildSummary(docs, window, testNow, directory.ExactMatcher{})
	require.Equal(t, 1, summary.Retention.Active)
	require.Equal(t, 1, summary.Retention.AtRisk)
}

func TestWindowFiltersDocuments(t *testing.T) {
	docs := []document.Document{
		{Type: document.TypeInvoice, ClientName: "A", Total: 100, Status: document.StatusPagada,
			Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{Type: document.TypeInvoice, ClientName: "B", Total: 999, Status: document.StatusPagada,
			Date: time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)},
	}
	window := testWindow(t,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	summary := BuildSummary(docs, window, testNow, directory.ExactMatcher{})
	require.InDelta(t, 100.0, summary.TotalIngresos, 0.001)
}

func TestResolveWindow(t *testing.T) {
	w, err := ResolveWindow(Range30D, time.Time{}, time.Time{}, testNow)
	require.NoError(t, err)
	require.Equal(t, testNow.AddDate(0, 0, -30), w.Start)
	require.Equal(t, 1, w.Months())

	w, err = ResolveWindow(Range12M, time.Time{}, time.Time{}, testNow)
	require.NoError(t, err)
	require.Equal(t, 12, w.Months())

	_, err = ResolveWindow("7D", time.Time{}, time.Time{}, testNow)
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = ResolveWindow(RangeCustom, testNow, testNow.AddDate(0, 0, -1), testNow)
	require.ErrorIs(t, err, ErrInvalidRange)

	w, err = ResolveWindow(RangeCustom, testNow.AddDate(0, -6, 0), testNow, testNow)
	require.NoError(t, err)
	require.Equal(t, 6, w.Months())
}
