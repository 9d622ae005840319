package service

import (
	"context"
	"testing"
	"time"

	"guardops_backend/internal/payroll/calc"
	"guardops_backend/internal/payroll/transport"
	"guardops_backend/platform/apperr"
	"guardops_backend/platform/logger"
)

type fakeRepo struct {
	snapshots []calc.RuleSnapshot
}

func (f *fakeRepo) Insert(_ context.Context, snapshot calc.RuleSnapshot) (calc.RuleSnapshot, error) {
	snapshot.Version = len(f.snapshots) + 1
	snapshot.PublishedAt = time.Now().UTC()
	f.snapshots = append(f.snapshots, snapshot)
	return snapshot, nil
}

func (f *fakeRepo) Latest(_ context.Context) (calc.RuleSnapshot, error) {
	if len(f.snapshots) == 0 {
		return calc.RuleSnapshot{}, apperr.NotFound("payroll rule snapshot not found")
	}
	return f.snapshots[len(f.snapshots)-1], nil
}

func (f *fakeRepo) ByVersion(_ context.Context, version int) (calc.RuleSnapshot, error) {
	for _, snapshot := range f.snapshots {
		if snapshot.Version == version {
			return snapshot, nil
		}
	}
	return calc.RuleSnapshot{}, apperr.NotFound("payroll rule snapshot not found")
}

func (f *fakeRepo) LatestVersion(_ context.Context) (int, error) {
	return len(f.snapshots), nil
}

func (f *fakeRepo) List(_ context.Context) ([]calc.RuleSnapshot, error) {
	out := make([]calc.RuleSnapshot, 0, len(f.snapshots))
	for i := len(f.snapshots) - 1; i >= 0; i-- {
		out = append(out, f.snapshots[i])
	}
	return out, nil
}

func validRequest() transport.PublishRuleSnapshotRequest {
	return transport.PublishRuleSnapshotRequest{
		AFPRatesPct:           map[string]string{"habitat": "11.27", "modelo": "10.58"},
		FonasaRatePct:         "7",
		IsapreMinPct:          "7",
		AFCEmployeePct:        map[string]string{"indefinite": "0.6", "fixed_term": "0"},
		AFCEmployerPct:        map[string]string{"indefinite": "2.4", "fixed_term": "3.0"},
		AccidentInsurancePct:  "0.93",
		VacationProvisionPct:  "4.17",
		SeveranceProvisionPct: "8.33",
		GratificationPct:      "25",
		GratificationCapCLP:   202127,
		TaxBrackets: []transport.TaxBracketRequest{
			{UpperBoundCLP: 899565, MarginalRate: "0"},
			{UpperBoundCLP: 1999033, MarginalRate: "4"},
			{UpperBoundCLP: 0, MarginalRate: "13.5"},
		},
	}
}

func newService() (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	return New(repo, logger.New("development")), repo
}

func TestPublish_AssignsIncreasingVersions(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	first, err := svc.Publish(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Publish(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Version != 1 || second.Version != 2 {
		t.Errorf("expected versions 1 and 2, got %d and %d", first.Version, second.Version)
	}
}

func TestPublish_RejectsMisorderedBrackets(t *testing.T) {
	svc, _ := newService()

	req := validRequest()
	req.TaxBrackets = []transport.TaxBracketRequest{
		{UpperBoundCLP: 1999033, MarginalRate: "4"},
		{UpperBoundCLP: 899565, MarginalRate: "0"},
	}

	if _, err := svc.Publish(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for misordered brackets, got %v", err)
	}
}

func TestPublish_RejectsUnboundedBracketNotLast(t *testing.T) {
	svc, _ := newService()

	req := validRequest()
	req.TaxBrackets = []transport.TaxBracketRequest{
		{UpperBoundCLP: 0, MarginalRate: "13.5"},
		{UpperBoundCLP: 899565, MarginalRate: "0"},
	}

	if _, err := svc.Publish(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for unbounded bracket not last, got %v", err)
	}
}

func TestPublish_RejectsUnknownContractType(t *testing.T) {
	svc, _ := newService()

	req := validRequest()
	req.AFCEmployeePct = map[string]string{"indefinite": "0.6", "seasonal": "1"}

	if _, err := svc.Publish(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for unknown contract type, got %v", err)
	}
}

func TestPublish_RejectsMalformedPercentage(t *testing.T) {
	svc, _ := newService()

	req := validRequest()
	req.FonasaRatePct = "seven"

	if _, err := svc.Publish(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for malformed percentage, got %v", err)
	}
}

func TestByVersion_MarksSupersededVersionsStale(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Publish(ctx, validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Publish(ctx, validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	old, err := svc.ByVersion(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !old.Stale {
		t.Error("expected version 1 to be marked stale")
	}

	current, err := svc.ByVersion(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Stale {
		t.Error("expected version 2 to not be stale")
	}
}
