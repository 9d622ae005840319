package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"guardops_backend/internal/catalog/repository"
	"guardops_backend/internal/catalog/transport"
	"guardops_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	items      []repository.CostItem
	total      int
	lastList   repository.ListCostItemsParams
	lastCreate repository.CreateCostItemParams
}

func (f *fakeRepo) CreateCostItem(_ context.Context, params repository.CreateCostItemParams) (repository.CostItem, error) {
	f.lastCreate = params
	return repository.CostItem{
		ID:             uuid.New(),
		OrganizationID: params.OrganizationID,
		Category:       params.Category,
		Name:           params.Name,
		Unit:           params.Unit,
		UnitPriceCLP:   params.UnitPriceCLP,
		Active:         true,
	}, nil
}

func (f *fakeRepo) ListCostItems(_ context.Context, params repository.ListCostItemsParams) ([]repository.CostItem, int, error) {
	f.lastList = params
	return f.items, f.total, nil
}

func TestListCostItems_DefaultsAndClamping(t *testing.T) {
	repo := &fakeRepo{total: 250}
	svc := New(repo, logger.New("test"))
	orgID := uuid.New()

	resp, err := svc.ListCostItems(context.Background(), orgID, transport.ListCostItemsRequest{})
	if err != nil {
		t.Fatalf("ListCostItems: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Fatalf("expected default page 1 size 20, got page=%d size=%d", resp.Page, resp.PageSize)
	}
	if resp.TotalPages != 13 {
		t.Fatalf("expected 13 total pages for 250 items, got %d", resp.TotalPages)
	}

	_, err = svc.ListCostItems(context.Background(), orgID, transport.ListCostItemsRequest{Page: 3, PageSize: 500})
	if err != nil {
		t.Fatalf("ListCostItems: %v", err)
	}
	if repo.lastList.Limit != 100 {
		t.Fatalf("expected page size clamped to 100, got %d", repo.lastList.Limit)
	}
	if repo.lastList.Offset != 200 {
		t.Fatalf("expected offset 200 for page 3, got %d", repo.lastList.Offset)
	}
}

func TestCreateCostItem_CarriesTenant(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.New("test"))
	orgID := uuid.New()

	resp, err := svc.CreateCostItem(context.Background(), orgID, transport.CreateCostItemRequest{
		Category:     transport.CategoryUniform,
		Name:         "Parka institucional",
		Unit:         "unidad",
		UnitPriceCLP: 45000,
	})
	if err != nil {
		t.Fatalf("CreateCostItem: %v", err)
	}
	if repo.lastCreate.OrganizationID != orgID {
		t.Fatalf("expected tenant %s forwarded, got %s", orgID, repo.lastCreate.OrganizationID)
	}
	if resp.UnitPriceCLP != 45000 || resp.Category != transport.CategoryUniform {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
