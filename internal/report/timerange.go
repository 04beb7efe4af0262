package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/panafact/panafact/internal/document"
)

// Range selects the reporting window.
type Range string

const (
	Range30D    Range = "30D"
	Range90D    Range = "90D"
	Range12M    Range = "12M"
	RangeCustom Range = "CUSTOM"
)

// ErrInvalidRange indicates an unknown or incomplete range selection.
var ErrInvalidRange = errors.New("report: invalid range")

// Window is a resolved [Start, End] interval.
type Window struct {
	Range Range     `json:"range"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolveWindow turns a range selection into a concrete interval anchored at
// now. Custom ranges need both bounds.
func ResolveWindow(r Range, start, end, now time.Time) (Window, error) {
	switch r {
	case Range30D:
		return Window{Range: r, Start: now.AddDate(0, 0, -30), End: now}, nil
	case Range90D:
		return Window{Range: r, Start: now.AddDate(0, 0, -90), End: now}, nil
	case Range12M:
		return Window{Range: r, Start: now.AddDate(0, -12, 0), End: now}, nil
	case RangeCustom:
		if start.IsZero() || end.IsZero() || end.Before(start) {
			return Window{}, fmt.Errorf("%w: custom range needs valid start and end", ErrInvalidRange)
		}
		return Window{Range: r, Start: start, End: end}, nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidRange, r)
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Months returns the period length used for annualization: 1, 3 or 12 for
// the fixed ranges, the rounded month count for custom windows (minimum 1).
func (w Window) Months() int {
	switch w.Range {
	case Range30D:
		return 1
	case Range90D:
		return 3
	case Range12M:
		return 12
	}
	days := w.End.Sub(w.Start).Hours() / 24
	months := int(days/30 + 0.5)
	if months < 1 {
		months = 1
	}
	return months
}

// Filter returns the documents dated inside the window, preserving order.
func (w Window) Filter(docs []document.Document) []document.Document {
	out := make([]document.Document, 0, len(docs))
	for _, doc := range docs {
		if w.Contains(doc.Date) {
			out = append(out, doc)
		}
	}
	return out
}
