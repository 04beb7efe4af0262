package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/panafact/panafact/internal/directory"
	"github.com/panafact/panafact/internal/document"
)

// retentionThresholdDays is the fixed churn-risk cutoff: a client with no
// interaction for longer than this is at risk.
const retentionThresholdDays = 90

// Spanish month labels used for bucket display.
var monthLabels = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// MonthlyBucket accumulates one month of cash flow. Buckets sort by the
// underlying month, not the label, so Dic 23 precedes Ene 24.
type MonthlyBucket struct {
	Label    string    `json:"label"`
	Month    time.Time `json:"month"`
	Ingresos float64   `json:"ingresos"`
	Gastos   float64   `json:"gastos"`
}

// Funnel counts are non-exclusive: one document can sit in several buckets.
type Funnel struct {
	Borrador  int `json:"borrador"`
	Enviada   int `json:"enviada"`
	Viewed    int `json:"viewed"`
	Collected int `json:"collected"`
}

// Retention buckets clients by recency of their last interaction.
type Retention struct {
	Active int `json:"active"`
	AtRisk int `json:"at_risk"`
}

// Summary is the full reporting dataset for one window.
type Summary struct {
	Window         Window          `json:"window"`
	Monthly        []MonthlyBucket `json:"monthly"`
	TotalIngresos  float64         `json:"total_ingresos"`
	TotalGastos    float64         `json:"total_gastos"`
	Net            float64         `json:"net"`
	DSODays        float64         `json:"dso_days"`
	Funnel         Funnel          `json:"funnel"`
	QuoteCount     int             `json:"quote_count"`
	QuotesWon      int             `json:"quotes_won"`
	ConversionRate float64         `json:"conversion_rate"`
	Retention      Retention       `json:"retention"`
}

// BuildSummary folds the window-filtered documents into the reporting
// dataset. Pure computation; runs to completion on the calling goroutine.
func BuildSummary(docs []document.Document, window Window, now time.Time, matcher directory.Matcher) Summary {
	if matcher == nil {
		matcher = directory.ExactMatcher{}
	}
	filtered := window.Filter(docs)

	summary := Summary{Window: window}

	buckets := make(map[string]*MonthlyBucket)
	lastInteraction := make(map[string]time.Time)
	var dsoTotal float64
	var dsoCount int

	for _, doc := range filtered {
		month := time.Date(doc.Date.Year(), doc.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		key := month.Format("2006-01")
		bucket, ok := buckets[key]
		if !ok {
			bucket = &MonthlyBucket{
				Label: fmt.Sprintf("%s %02d", monthLabels[month.Month()-1], month.Year()%100),
				Month: month,
			}
			buckets[key] = bucket
		}

		switch doc.Type {
		case document.TypeExpense:
			bucket.Gastos += doc.Total
			summary.TotalGastos += doc.Total
			continue
		case document.TypeInvoice:
			if collected := doc.Collected(); collected > 0 {
				bucket.Ingresos += collected
				summary.TotalIngresos += collected
			}
			if doc.Status == document.StatusPagada || doc.Status == document.StatusAceptada {
				created, hasCreated := doc.EventAt(document.EventCreated)
				paid, hasPaid := doc.EventAt(document.EventPaid)
				if hasCreated && hasPaid {
					dsoTotal += paid.Sub(created).Hours() / 24
					dsoCount++
				}
			}
		case document.TypeQuote:
			summary.QuoteCount++
			if doc.Status == document.StatusAceptada {
				summary.QuotesWon++
			}
		}

		// Funnel stages are independent counts.
		if doc.Status == document.StatusBorrador {
			summary.Funnel.Borrador++
		}
		if doc.Status == document.StatusEnviada {
			summary.Funnel.Enviada++
		}
		if doc.HasEvent(document.EventOpened) {
			summary.Funnel.Viewed++
		}
		if doc.Status == document.StatusAceptada || doc.Status == document.StatusPagada ||
			(doc.Status == document.StatusAbonada && doc.AmountPaid > 0) {
			summary.Funnel.Collected++
		}

		clientKey := matcher.Key(doc.ClientName)
		if doc.ClientID != nil {
			clientKey = fmt.Sprintf("id:%d", *doc.ClientID)
		}
		if doc.Date.After(lastInteraction[clientKey]) {
			lastInteraction[clientKey] = doc.Date
		}
	}

	summary.Net = summary.TotalIngresos - summary.TotalGastos

	if dsoCount > 0 {
		summary.DSODays = dsoTotal / float64(dsoCount)
	}
	if summary.QuoteCount > 0 {
		summary.ConversionRate = float64(summary.QuotesWon) / float64(summary.QuoteCount) * 100
	}

	for _, last := range lastInteraction {
		days := now.Sub(last).Hours() / 24
		if days <= retentionThresholdDays {
			summary.Retention.Active++
		} else {
			summary.Retention.AtRisk++
		}
	}

	summary.Monthly = make([]MonthlyBucket, 0, len(buckets))
	for _, bucket := range buckets {
		summary.Monthly = append(summary.Monthly, *bucket)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		return summary.Monthly[i].Month.Before(summary.Monthly[j].Month)
	})

	return summary
}
