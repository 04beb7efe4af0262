package document

import "time"

// Type discriminates the document union.
type Type string

const (
	TypeInvoice Type = "INVOICE"
	TypeQuote   Type = "QUOTE"
	TypeExpense Type = "EXPENSE"
)

// Status enumerates document statuses. Wire values keep the Spanish labels
// the product has always used.
type Status string

const (
	StatusBorrador    Status = "Borrador"
	StatusCreada      Status = "Creada"
	StatusEnviada     Status = "Enviada"
	StatusSeguimiento Status = "Seguimiento"
	StatusNegociacion Status = "Negociacion"
	StatusAbonada     Status = "Abonada"
	StatusAceptada    Status = "Aceptada"
	StatusPagada      Status = "Pagada"
	StatusRechazada   Status = "Rechazada"
	StatusIncobrable  Status = "Incobrable"
)

// EventKind identifies timeline events.
type EventKind string

const (
	EventCreated  EventKind = "CREATED"
	EventSent     EventKind = "SENT"
	EventOpened   EventKind = "OPENED"
	EventFollowUp EventKind = "FOLLOW_UP"
	EventPaid     EventKind = "PAID"
	EventRejected EventKind = "REJECTED"
)

// LineItem is one ordered row of a document.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	TaxPercent  float64 `json:"tax_percent"`
}

// TimelineEvent is a dated lifecycle event.
type TimelineEvent struct {
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`
}

// Document model. Total is derived from the items at creation time and is
// authoritative afterwards; reports never recompute it.
type Document struct {
	ID                 string          `json:"id"`
	UserID             int64           `json:"user_id"`
	ClientID           *int64          `json:"client_id,omitempty"`
	ClientName         string          `json:"client_name"`
	ClientTaxID        string          `json:"client_tax_id,omitempty"`
	Type               Type            `json:"type"`
	Date               time.Time       `json:"date"`
	Items              []LineItem      `json:"items"`
	Subtotal           float64         `json:"subtotal"`
	TaxTotal           float64         `json:"tax_total"`
	Total              float64         `json:"total"`
	AmountPaid         float64         `json:"amount_paid,omitempty"`
	Status             Status          `json:"status"`
	PendingSync        bool            `json:"pending_sync,omitempty"`
	SuccessProbability *int            `json:"success_probability,omitempty"`
	Timeline           []TimelineEvent `json:"timeline"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CalcTotals folds line items into subtotal, tax and grand total.
func CalcTotals(items []LineItem) (subtotal, taxTotal, total float64) {
	for _, item := range items {
		gross := item.Quantity * item.Price
		tax := gross * (item.TaxPercent / 100)
		subtotal += gross
		taxTotal += tax
		total += gross + tax
	}
	return subtotal, taxTotal, total
}

// Collected returns the amount counted as cash received for this document.
// A partial payment takes precedence over full-total collection.
func (d Document) Collected() float64 {
	if d.Type == TypeExpense {
		return 0
	}
	if d.AmountPaid > 0 {
		return d.AmountPaid
	}
	if d.Status == StatusPagada || d.Status == StatusAceptada {
		return d.Total
	}
	return 0
}

// EventAt returns the timestamp of the first timeline event of the given kind.
func (d Document) EventAt(kind EventKind) (time.Time, bool) {
	for _, ev := range d.Timeline {
		if ev.Kind == kind {
			return ev.At, true
		}
	}
	return time.Time{}, false
}

// HasEvent reports whether the timeline contains an event of the given kind.
func (d Document) HasEvent(kind EventKind) bool {
	_, ok := d.EventAt(kind)
	return ok
}

// TaxRatio returns the share of the document total that is embedded tax,
// recomputed from the line items. Zero when the items carry no tax.
func (d Document) TaxRatio() float64 {
	subtotal, taxTotal, _ := CalcTotals(d.Items)
	if subtotal+taxTotal <= 0 {
		return 0
	}
	return taxTotal / (subtotal + taxTotal)
}
