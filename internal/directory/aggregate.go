package directory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/panafact/panafact/internal/document"
)

// ClientStatus classifies an aggregated client.
type ClientStatus string

const (
	StatusClient   ClientStatus = "CLIENT"
	StatusProspect ClientStatus = "PROSPECT"
)

// Seed is an externally supplied client record layered under the document
// fold, defaulting to PROSPECT.
type Seed struct {
	ClientID *int64
	Name     string
	TaxID    string
}

// AggregatedClient is the derived, non-persisted client profile. It is
// recomputed from scratch on every aggregation pass.
type AggregatedClient struct {
	Key             string       `json:"key"`
	Name            string       `json:"name"`
	TaxID           string       `json:"tax_id,omitempty"`
	Status          ClientStatus `json:"status"`
	InvoiceCount    int          `json:"invoice_count"`
	TotalInvoiced   float64      `json:"total_invoiced"`
	QuoteCount      int          `json:"quote_count"`
	TotalQuoted     float64      `json:"total_quoted"`
	QuotesWon       int          `json:"quotes_won"`
	TotalCollected  float64      `json:"total_collected"`
	LastInteraction time.Time    `json:"last_interaction"`
	AvgTicket       float64      `json:"avg_ticket"`
	DisplayValue    float64      `json:"display_value"`
	VIP             bool         `json:"vip"`
}

// PortfolioKPIs are the portfolio-level scalars.
type PortfolioKPIs struct {
	ActiveClients     int     `json:"active_clients"`
	PortfolioValue    float64 `json:"portfolio_value"`
	AvgTicket         float64 `json:"avg_ticket"`
	OpenPipelineValue float64 `json:"open_pipeline_value"`
	OpenOpportunities int     `json:"open_opportunities"`
}

// Result of one aggregation pass.
type Result struct {
	Clients []AggregatedClient `json:"clients"`
	KPIs    PortfolioKPIs      `json:"kpis"`
}

// pipeline statuses count quotes as open opportunities.
func inPipeline(status document.Status) bool {
	return status == document.StatusEnviada ||
		status == document.StatusSeguimiento ||
		status == document.StatusNegociacion
}

// AggregateClients folds documents (and optional seed records) into client
// profiles plus portfolio KPIs. Pure: no side effects, identical output for
// identical input. Expenses carry no client and are skipped.
func AggregateClients(docs []document.Document, seeds []Seed, matcher Matcher) Result {
	if matcher == nil {
		matcher = ExactMatcher{}
	}

	clients := make(map[string]*AggregatedClient)
	order := make([]string, 0)

	lookup := func(clientID *int64, name string) *AggregatedClient {
		key := matcher.Key(name)
		if clientID != nil {
			key = fmt.Sprintf("id:%d", *clientID)
		}
		if key == "" {
			key = "(sin nombre)"
		}
		entry, ok := clients[key]
		if !ok {
			entry = &AggregatedClient{Key: key, Name: nameOrKey(name, key), Status: StatusProspect}
			clients[key] = entry
			order = append(order, key)
		}
		return entry
	}

	for _, seed := range seeds {
		entry := lookup(seed.ClientID, seed.Name)
		if seed.TaxID != "" {
			entry.TaxID = seed.TaxID
		}
	}

	var kpis PortfolioKPIs

	for _, doc := range docs {
		if doc.Type == document.TypeExpense {
			continue
		}
		entry := lookup(doc.ClientID, doc.ClientName)
		if doc.ClientTaxID != "" {
			entry.TaxID = doc.ClientTaxID
		}
		if doc.Date.After(entry.LastInteraction) {
			entry.LastInteraction = doc.Date
		}

		switch doc.Type {
		case document.TypeInvoice:
			if doc.Status != document.StatusBorrador && doc.Status != document.StatusRechazada {
				entry.InvoiceCount++
				entry.TotalInvoiced += doc.Total
			}
			if collected := doc.Collected(); collected > 0 {
				entry.TotalCollected += collected
				entry.Status = StatusClient
			}
		case document.TypeQuote:
			entry.QuoteCount++
			entry.TotalQuoted += doc.Total
			if inPipeline(doc.Status) {
				kpis.OpenPipelineValue += doc.Total
				kpis.OpenOpportunities++
			}
			if doc.Status == document.StatusAceptada {
				entry.QuotesWon++
				entry.Status = StatusClient
			}
		}
	}

	// Second pass: prospects are valued by pipeline, clients by realized
	// revenue.
	var totalInvoiced float64
	var totalInvoices int
	for _, key := range order {
		entry := clients[key]
		if entry.Status == StatusProspect {
			if entry.QuoteCount > 0 {
				entry.AvgTicket = entry.TotalQuoted / float64(entry.QuoteCount)
			}
			entry.DisplayValue = entry.TotalQuoted
		} else {
			if entry.InvoiceCount > 0 {
				entry.AvgTicket = entry.TotalInvoiced / float64(entry.InvoiceCount)
			}
			entry.DisplayValue = entry.TotalInvoiced
			kpis.ActiveClients++
		}
		totalInvoiced += entry.TotalInvoiced
		totalInvoices += entry.InvoiceCount
	}
	kpis.PortfolioValue = totalInvoiced
	if totalInvoices > 0 {
		kpis.AvgTicket = totalInvoiced / float64(totalInvoices)
	}

	markVIPs(clients, order)

	out := make([]AggregatedClient, 0, len(order))
	for _, key := range order {
		out = append(out, *clients[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayValue != out[j].DisplayValue {
			return out[i].DisplayValue > out[j].DisplayValue
		}
		return out[i].Name < out[j].Name
	})

	return Result{Clients: out, KPIs: kpis}
}

// markVIPs flags the top 20% of clients by invoiced revenue. The threshold is
// the value at rank ceil(0.2*N)-1 after sorting by (totalInvoiced desc, name
// asc); the name tiebreak makes the last slot deterministic when values tie.
func markVIPs(clients map[string]*AggregatedClient, order []string) {
	if len(order) == 0 {
		return
	}
	ranked := make([]*AggregatedClient, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, clients[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalInvoiced != ranked[j].TotalInvoiced {
			return ranked[i].TotalInvoiced > ranked[j].TotalInvoiced
		}
		return ranked[i].Name < ranked[j].Name
	})
	cut := int(math.Ceil(0.2*float64(len(ranked)))) - 1
	if cut < 0 {
		cut = 0
	}
	threshold := ranked[cut].TotalInvoiced
	for _, entry := range ranked {
		entry.VIP = entry.Status == StatusClient && entry.TotalInvoiced > 0 &&
			entry.TotalInvoiced >= threshold
	}
}

func nameOrKey(name, key string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return key
}
