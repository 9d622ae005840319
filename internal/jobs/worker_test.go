package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"guardops_backend/platform/logger"
)

type fakeRecomputer struct {
	orgID   uuid.UUID
	quoteID uuid.UUID
	force   bool
	err     error
}

func (f *fakeRecomputer) RecomputeQuote(_ context.Context, orgID, quoteID uuid.UUID, force bool) error {
	f.orgID = orgID
	f.quoteID = quoteID
	f.force = force
	return f.err
}

func TestHandleRecomputeQuote(t *testing.T) {
	rec := &fakeRecomputer{}
	w := &Worker{recompute: rec, log: logger.New("test")}

	orgID, quoteID := uuid.New(), uuid.New()
	task, err := NewRecomputeQuoteTask(RecomputeQuotePayload{
		QuoteID:        quoteID.String(),
		OrganizationID: orgID.String(),
		Force:          true,
	})
	if err != nil {
		t.Fatalf("NewRecomputeQuoteTask: %v", err)
	}

	if err := w.handleRecomputeQuote(context.Background(), task); err != nil {
		t.Fatalf("handleRecomputeQuote: %v", err)
	}
	if rec.orgID != orgID || rec.quoteID != quoteID || !rec.force {
		t.Fatalf("unexpected call: %+v", rec)
	}
}

func TestHandleRecomputeQuote_BadPayload(t *testing.T) {
	rec := &fakeRecomputer{}
	w := &Worker{recompute: rec, log: logger.New("test")}

	task, err := NewRecomputeQuoteTask(RecomputeQuotePayload{
		QuoteID:        "not-a-uuid",
		OrganizationID: uuid.New().String(),
	})
	if err != nil {
		t.Fatalf("NewRecomputeQuoteTask: %v", err)
	}

	if err := w.handleRecomputeQuote(context.Background(), task); err == nil {
		t.Fatal("expected error for malformed quote id")
	}
}

func TestHandleRecomputeQuote_PropagatesFailure(t *testing.T) {
	wantErr := errors.New("boom")
	rec := &fakeRecomputer{err: wantErr}
	w := &Worker{recompute: rec, log: logger.New("test")}

	task, err := NewRecomputeQuoteTask(RecomputeQuotePayload{
		QuoteID:        uuid.New().String(),
		OrganizationID: uuid.New().String(),
	})
	if err != nil {
		t.Fatalf("NewRecomputeQuoteTask: %v", err)
	}

	if err := w.handleRecomputeQuote(context.Background(), task); !errors.Is(err, wantErr) {
		t.Fatalf("expected failure propagated for retry, got %v", err)
	}
}
