package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	docs map[string]Document
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[string]Document)}
}

func (r *memoryRepo) Create(ctx context.Context, doc Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, doc Document) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return ErrNotFound
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, userID int64, id string) (*Document, error) {
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return nil, ErrNotFound
	}
	out := doc
	return &out, nil
}

func (r *memoryRepo) List(ctx context.Context, userID int64, filter ListFilter) ([]Document, error) {
	var out []Document
	for _, doc := range r.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, userID int64, id string) error {
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

type countingBumper struct {
	calls int
}

func (b *countingBumper) Bump(ctx context.Context, userID int64) error {
	b.calls++
	return nil
}

func newTestService(repo Repository, bumper CacheBumper) *Service {
	svc := NewService(repo, bumper)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateDerivesTotals(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateInput{
		UserID:     1,
		ClientName: "Acme Corp",
		Type:       TypeInvoice,
		Items: []LineItem{
			{Description: "Consultoría", Quantity: 2, Price: 500, TaxPercent: 7},
			{Description: "Licencia", Quantity: 1, Price: 100, TaxPercent: 0},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 1100.0, doc.Subtotal, 0.001)
	require.InDelta(t, 70.0, doc.TaxTotal, 0.001)
	require.InDelta(t, 1170.0, doc.Total, 0.001)
	require.Equal(t, StatusBorrador, doc.Status)
	require.True(t, doc.HasEvent(EventCreated))
	require.NotEmpty(t, doc.ID)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{UserID: 1, ClientName: "X", Type: "RECEIPT"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{UserID: 1, Type: TypeInvoice})
	require.ErrorIs(t, err, ErrInvalidInput)

	// Expenses do not need a counterparty name.
	_, err = svc.Create(ctx, CreateInput{UserID: 1, Type: TypeExpense})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "X", Type: TypeInvoice,
		Items: []LineItem{{Quantity: -1, Price: 10}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "X", Type: TypeInvoice, Status: StatusPagada,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	p := 50
	_, err = svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "X", Type: TypeInvoice, SuccessProbability: &p,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	bad := 140
	_, err = svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "X", Type: TypeQuote, SuccessProbability: &bad,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "X", Type: TypeQuote, SuccessProbability: &p,
	})
	require.NoError(t, err)
}

func TestTransitionRecordsEvent(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "Acme", Type: TypeInvoice, Status: StatusCreada,
	})
	require.NoError(t, err)

	doc, err = svc.Transition(ctx, 1, doc.ID, StatusEnviada)
	require.NoError(t, err)
	require.Equal(t, StatusEnviada, doc.Status)
	require.True(t, doc.HasEvent(EventSent))

	_, err = svc.Transition(ctx, 1, doc.ID, StatusBorrador)
	require.ErrorIs(t, err, ErrInvalidTransition)

	doc, err = svc.Transition(ctx, 1, doc.ID, StatusPagada)
	require.NoError(t, err)
	require.True(t, doc.HasEvent(EventPaid))
}

func TestRecordPayment(t *testing.T) {
	repo := newMemoryRepo()
	bumper := &countingBumper{}
	svc := newTestService(repo, bumper)
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "Acme", Type: TypeInvoice, Status: StatusCreada,
		Items: []LineItem{{Description: "Obra", Quantity: 1, Price: 150}},
	})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, 1, doc.ID, StatusEnviada)
	require.NoError(t, err)

	doc, err = svc.RecordPayment(ctx, 1, doc.ID, 100)
	require.NoError(t, err)
	require.Equal(t, StatusAbonada, doc.Status)
	require.InDelta(t, 100.0, doc.Collected(), 0.001)

	doc, err = svc.RecordPayment(ctx, 1, doc.ID, 50)
	require.NoError(t, err)
	require.Equal(t, StatusPagada, doc.Status)
	require.InDelta(t, 150.0, doc.Collected(), 0.001)

	_, err = svc.RecordPayment(ctx, 1, doc.ID, 10)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.RecordPayment(ctx, 1, doc.ID, -5)
	require.ErrorIs(t, err, ErrInvalidInput)

	// create + transition + two payments, each invalidates reports
	require.Equal(t, 4, bumper.calls)
}

func TestPaymentOnQuoteRejected(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateInput{UserID: 1, ClientName: "Acme", Type: TypeQuote})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, 1, doc.ID, 100)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateRecomputesTotalsAndGuardsTerminal(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateInput{
		UserID: 1, ClientName: "Acme", Type: TypeInvoice, Status: StatusCreada,
		Items: []LineItem{{Description: "A", Quantity: 1, Price: 100, TaxPercent: 7}},
	})
	require.NoError(t, err)

	items := []LineItem{{Description: "A", Quantity: 2, Price: 100, TaxPercent: 7}}
	doc, err = svc.Update(ctx, 1, doc.ID, UpdateInput{Items: &items})
	require.NoError(t, err)
	require.InDelta(t, 214.0, doc.Total, 0.001)

	_, err = svc.Transition(ctx, 1, doc.ID, StatusRechazada)
	require.NoError(t, err)

	name := "Otro"
	_, err = svc.Update(ctx, 1, doc.ID, UpdateInput{ClientName: &name})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUserScoping(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateInput{UserID: 1, ClientName: "Acme", Type: TypeInvoice})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, doc.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, 2, doc.ID), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, 1, doc.ID))
}

func TestCollectedPrecedence(t *testing.T) {
	// A partial payment wins over the full-total rule even in a collected
	// status.
	doc := Document{Type: TypeInvoice, Total: 500, AmountPaid: 150, Status: StatusPagada}
	require.InDelta(t, 150.0, doc.Collected(), 0.001)

	doc = Document{Type: TypeInvoice, Total: 500, Status: StatusAceptada}
	require.InDelta(t, 500.0, doc.Collected(), 0.001)

	doc = Document{Type: TypeInvoice, Total: 500, Status: StatusEnviada}
	require.Zero(t, doc.Collected())

	doc = Document{Type: TypeExpense, Total: 500, Status: StatusPagada}
	require.Zero(t, doc.Collected())
}
