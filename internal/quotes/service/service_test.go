package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"guardops_backend/internal/costing/calc"
	"guardops_backend/internal/quotes/repository"
	"guardops_backend/internal/quotes/transport"
	"guardops_backend/platform/apperr"
	"guardops_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	created repository.CreateQuoteParams
	stored  repository.Quote
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateQuoteParams) (repository.Quote, error) {
	f.created = params
	return repository.Quote{
		ID:             uuid.New(),
		OrganizationID: params.OrganizationID,
		Name:           params.Name,
		ClientName:     params.ClientName,
		Status:         repository.StatusDraft,
		Params:         params.Params,
	}, nil
}

func (f *fakeRepo) GetByID(_ context.Context, _, _ uuid.UUID) (repository.Quote, error) {
	return f.stored, nil
}

func TestCreate_DefaultsParameters(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.New("test"))

	resp, err := svc.Create(context.Background(), uuid.New(), transport.CreateQuoteRequest{Name: "Mall Plaza Norte"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Status != repository.StatusDraft {
		t.Fatalf("expected draft status, got %q", resp.Status)
	}
	if !repo.created.Params.AvgStayMonths.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected default avg stay 12, got %s", repo.created.Params.AvgStayMonths)
	}
	if !repo.created.Params.UniformChangesPerYear.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected default uniform changes 2, got %s", repo.created.Params.UniformChangesPerYear)
	}
}

func TestCreate_RejectsBadParams(t *testing.T) {
	svc := New(&fakeRepo{}, logger.New("test"))

	cases := []transport.QuoteParametersRequest{
		{MarginPct: "100"},
		{MarginPct: "not-a-number"},
		{FinancialRatePct: "-2"},
	}
	for _, params := range cases {
		_, err := svc.Create(context.Background(), uuid.New(), transport.CreateQuoteRequest{
			Name:   "q",
			Params: &params,
		})
		if apperr.GetKind(err) != apperr.KindValidation {
			t.Fatalf("params %+v: expected validation error, got %v", params, err)
		}
	}
}

func TestParameters_CarriesCachedSalePrice(t *testing.T) {
	repo := &fakeRepo{stored: repository.Quote{
		Params:              calc.QuoteParameters{MarginPct: decimal.NewFromInt(13)},
		SalePriceMonthlyCLP: 987654,
	}}
	svc := New(repo, logger.New("test"))

	params, err := svc.Parameters(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Parameters: %v", err)
	}
	if params.SalePriceMonthlyCLP != 987654 {
		t.Fatalf("expected cached sale price forwarded, got %d", params.SalePriceMonthlyCLP)
	}
	if !params.MarginPct.Equal(decimal.NewFromInt(13)) {
		t.Fatalf("expected margin 13, got %s", params.MarginPct)
	}
}
