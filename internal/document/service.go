package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidInput covers semantic validation failures.
	ErrInvalidInput = errors.New("document: invalid input")
)

// CacheBumper invalidates derived report data after a mutation. The report
// module recomputes everything from scratch, so one version bump is enough.
type CacheBumper interface {
	Bump(ctx context.Context, userID int64) error
}

// CreateInput for new documents.
type CreateInput struct {
	UserID             int64
	ClientID           *int64
	ClientName         string
	ClientTaxID        string
	Type               Type
	Date               time.Time
	Items              []LineItem
	Status             Status
	SuccessProbability *int
}

// UpdateInput is the explicit edit path; it is the only way a total changes
// after creation.
type UpdateInput struct {
	ClientID           *int64
	ClientName         *string
	ClientTaxID        *string
	Date               *time.Time
	Items              *[]LineItem
	SuccessProbability *int
}

// Service handles document business logic.
type Service struct {
	repo   Repository
	bumper CacheBumper
	now    func() time.Time
}

// NewService builds a Service instance. bumper may be nil.
func NewService(repo Repository, bumper CacheBumper) *Service {
	return &Service{repo: repo, bumper: bumper, now: time.Now}
}

// Create derives totals from the items and persists the document with a
// CREATED timeline event.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Document, error) {
	if input.UserID == 0 {
		return nil, fmt.Errorf("%w: user required", ErrInvalidInput)
	}
	if input.Type != TypeInvoice && input.Type != TypeQuote && input.Type != TypeExpense {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, input.Type)
	}
	if input.ClientName == "" && input.Type != TypeExpense {
		return nil, fmt.Errorf("%w: client name required", ErrInvalidInput)
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if input.SuccessProbability != nil {
		if input.Type != TypeQuote {
			return nil, fmt.Errorf("%w: success probability is quote-only", ErrInvalidInput)
		}
		if *input.SuccessProbability < 0 || *input.SuccessProbability > 100 {
			return nil, fmt.Errorf("%w: success probability out of range", ErrInvalidInput)
		}
	}

	status := input.Status
	if status == "" {
		status = StatusBorrador
	}
	if status != StatusBorrador && status != StatusCreada {
		return nil, fmt.Errorf("%w: documents start as Borrador or Creada", ErrInvalidInput)
	}

	now := s.now()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	subtotal, taxTotal, total := CalcTotals(input.Items)

	doc := Document{
		ID:                 uuid.NewString(),
		UserID:             input.UserID,
		ClientID:           input.ClientID,
		ClientName:         input.ClientName,
		ClientTaxID:        input.ClientTaxID,
		Type:               input.Type,
		Date:               date,
		Items:              input.Items,
		Subtotal:           subtotal,
		TaxTotal:           taxTotal,
		Total:              total,
		Status:             status,
		SuccessProbability: input.SuccessProbability,
		Timeline:           []TimelineEvent{{Kind: EventCreated, At: date}},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.bump(ctx, doc.UserID)
	return &doc, nil
}

// Update edits a non-terminal document, recomputing totals when items change.
func (s *Service) Update(ctx context.Context, userID int64, id string, input UpdateInput) (*Document, error) {
	doc, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if IsTerminal(doc.Type, doc.Status) {
		return nil, fmt.Errorf("%w: %s documents cannot be edited", ErrInvalidTransition, doc.Status)
	}

	if input.ClientID != nil {
		doc.ClientID = input.ClientID
	}
	if input.ClientName != nil {
		doc.ClientName = *input.ClientName
	}
	if input.ClientTaxID != nil {
		doc.ClientTaxID = *input.ClientTaxID
	}
	if input.Date != nil {
		doc.Date = *input.Date
	}
	if input.Items != nil {
		if err := validateItems(*input.Items); err != nil {
			return nil, err
		}
		doc.Items = *input.Items
		doc.Subtotal, doc.TaxTotal, doc.Total = CalcTotals(doc.Items)
	}
	if input.SuccessProbability != nil {
		if doc.Type != TypeQuote {
			return nil, fmt.Errorf("%w: success probability is quote-only", ErrInvalidInput)
		}
		doc.SuccessProbability = input.SuccessProbability
	}
	doc.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, *doc); err != nil {
		return nil, err
	}
	s.bump(ctx, userID)
	return doc, nil
}

// Transition moves the document through the state machine, recording the
// matching timeline event.
func (s *Service) Transition(ctx context.Context, userID int64, id string, to Status) (*Document, error) {
	doc, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(doc.Type, doc.Status, to); err != nil {
		return nil, err
	}
	doc.Status = to
	if kind, ok := transitionEvent(to); ok {
		doc.Timeline = append(doc.Timeline, TimelineEvent{Kind: kind, At: s.now()})
	}
	doc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, *doc); err != nil {
		return nil, err
	}
	s.bump(ctx, userID)
	return doc, nil
}

// RecordPayment registers a partial or full payment on an invoice. Reaching
// the full total moves the invoice to Pagada, anything less to Abonada.
func (s *Service) RecordPayment(ctx context.Context, userID int64, id string, amount float64) (*Document, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment must be positive", ErrInvalidInput)
	}
	doc, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != TypeInvoice {
		return nil, fmt.Errorf("%w: payments apply to invoices only", ErrInvalidInput)
	}
	if IsTerminal(doc.Type, doc.Status) {
		return nil, fmt.Errorf("%w: %s invoices cannot receive payments", ErrInvalidTransition, doc.Status)
	}

	doc.AmountPaid += amount
	target := StatusAbonada
	if doc.AmountPaid >= doc.Total {
		target = StatusPagada
	}
	if doc.Status != target {
		if err := ValidateTransition(doc.Type, doc.Status, target); err != nil {
			return nil, err
		}
		doc.Status = target
	}
	if target == StatusPagada {
		doc.Timeline = append(doc.Timeline, TimelineEvent{Kind: EventPaid, At: s.now()})
	}
	doc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, *doc); err != nil {
		return nil, err
	}
	s.bump(ctx, userID)
	return doc, nil
}

// RecordEvent appends a timeline event without changing status, e.g. an
// OPENED ping from email tracking.
func (s *Service) RecordEvent(ctx context.Context, userID int64, id string, kind EventKind) (*Document, error) {
	doc, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	doc.Timeline = append(doc.Timeline, TimelineEvent{Kind: kind, At: s.now()})
	doc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, *doc); err != nil {
		return nil, err
	}
	s.bump(ctx, userID)
	return doc, nil
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, userID int64, id string) (*Document, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns the user's documents.
func (s *Service) List(ctx context.Context, userID int64, filter ListFilter) ([]Document, error) {
	return s.repo.List(ctx, userID, filter)
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.bump(ctx, userID)
	return nil
}

func (s *Service) bump(ctx context.Context, userID int64) {
	if s.bumper != nil {
		_ = s.bumper.Bump(ctx, userID)
	}
}

func validateItems(items []LineItem) error {
	for i, item := range items {
		if item.Quantity < 0 || item.Price < 0 || item.TaxPercent < 0 {
			return fmt.Errorf("%w: item %d has negative values", ErrInvalidInput, i)
		}
	}
	return nil
}
