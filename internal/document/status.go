package document

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not allowed by the
// document state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status transitions are validated centrally; nothing outside this table can
// persist an out-of-order move such as Aceptada back to Borrador.
var invoiceTransitions = map[Status][]Status{
	StatusBorrador:    {StatusCreada, StatusEnviada},
	StatusCreada:      {StatusEnviada, StatusRechazada},
	StatusEnviada:     {StatusSeguimiento, StatusAbonada, StatusAceptada, StatusPagada, StatusRechazada, StatusIncobrable},
	StatusSeguimiento: {StatusAbonada, StatusAceptada, StatusPagada, StatusRechazada, StatusIncobrable},
	StatusAbonada:     {StatusPagada, StatusAceptada, StatusIncobrable},
}

var quoteTransitions = map[Status][]Status{
	StatusBorrador:    {StatusCreada, StatusEnviada},
	StatusCreada:      {StatusEnviada, StatusRechazada},
	StatusEnviada:     {StatusSeguimiento, StatusNegociacion, StatusAceptada, StatusRechazada},
	StatusSeguimiento: {StatusNegociacion, StatusAceptada, StatusRechazada},
	StatusNegociacion: {StatusAceptada, StatusRechazada},
}

var expenseTransitions = map[Status][]Status{
	StatusBorrador: {StatusCreada, StatusPagada},
	StatusCreada:   {StatusPagada},
}

func transitionsFor(docType Type) map[Status][]Status {
	switch docType {
	case TypeQuote:
		return quoteTransitions
	case TypeExpense:
		return expenseTransitions
	default:
		return invoiceTransitions
	}
}

// ValidStatus reports whether the status belongs to the given document type.
func ValidStatus(docType Type, status Status) bool {
	table := transitionsFor(docType)
	if _, ok := table[status]; ok {
		return true
	}
	for _, targets := range table {
		for _, t := range targets {
			if t == status {
				return true
			}
		}
	}
	return false
}

// CanTransition reports whether from → to is allowed for the document type.
func CanTransition(docType Type, from, to Status) bool {
	for _, allowed := range transitionsFor(docType)[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when from → to is illegal.
func ValidateTransition(docType Type, from, to Status) error {
	if !CanTransition(docType, from, to) {
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, docType, from, to)
	}
	return nil
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(docType Type, status Status) bool {
	return len(transitionsFor(docType)[status]) == 0
}

// transitionEvent maps a newly entered status to the timeline event recorded
// alongside it, when any.
func transitionEvent(to Status) (EventKind, bool) {
	switch to {
	case StatusEnviada:
		return EventSent, true
	case StatusSeguimiento:
		return EventFollowUp, true
	case StatusAceptada, StatusPagada:
		return EventPaid, true
	case StatusRechazada:
		return EventRejected, true
	default:
		return "", false
	}
}
