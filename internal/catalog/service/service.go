package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"guardops_backend/internal/catalog/repository"
	"guardops_backend/internal/catalog/transport"
	"guardops_backend/platform/logger"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service implements catalog business logic.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateCostItem adds a new priced entry to the tenant catalog.
func (s *Service) CreateCostItem(ctx context.Context, orgID uuid.UUID, req transport.CreateCostItemRequest) (transport.CostItemResponse, error) {
	item, err := s.repo.CreateCostItem(ctx, repository.CreateCostItemParams{
		OrganizationID: orgID,
		Category:       req.Category,
		Name:           req.Name,
		Unit:           req.Unit,
		UnitPriceCLP:   req.UnitPriceCLP,
	})
	if err != nil {
		return transport.CostItemResponse{}, fmt.Errorf("create cost item: %w", err)
	}

	s.log.Info("catalog cost item created",
		"itemId", item.ID,
		"organizationId", orgID,
		"category", item.Category,
	)

	return toResponse(item), nil
}

// UpdateCostItem applies a partial update to a cost item.
func (s *Service) UpdateCostItem(ctx context.Context, orgID uuid.UUID, id uuid.UUID, req transport.UpdateCostItemRequest) (transport.CostItemResponse, error) {
	item, err := s.repo.UpdateCostItem(ctx, repository.UpdateCostItemParams{
		ID:             id,
		OrganizationID: orgID,
		Name:           req.Name,
		Unit:           req.Unit,
		UnitPriceCLP:   req.UnitPriceCLP,
		Active:         req.Active,
	})
	if err != nil {
		return transport.CostItemResponse{}, fmt.Errorf("update cost item: %w", err)
	}

	s.log.Info("catalog cost item updated", "itemId", id, "organizationId", orgID)

	return toResponse(item), nil
}

// DeleteCostItem removes a cost item from the tenant catalog.
func (s *Service) DeleteCostItem(ctx context.Context, orgID uuid.UUID, id uuid.UUID) error {
	if err := s.repo.DeleteCostItem(ctx, orgID, id); err != nil {
		return fmt.Errorf("delete cost item: %w", err)
	}

	s.log.Info("catalog cost item deleted", "itemId", id, "organizationId", orgID)

	return nil
}

// GetCostItem fetches a single cost item by ID.
func (s *Service) GetCostItem(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (transport.CostItemResponse, error) {
	item, err := s.repo.GetCostItemByID(ctx, orgID, id)
	if err != nil {
		return transport.CostItemResponse{}, fmt.Errorf("get cost item: %w", err)
	}
	return toResponse(item), nil
}

// ListCostItems returns a filtered, paginated page of the tenant catalog.
func (s *Service) ListCostItems(ctx context.Context, orgID uuid.UUID, req transport.ListCostItemsRequest) (transport.CostItemListResponse, error) {
	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	size := req.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.repo.ListCostItems(ctx, repository.ListCostItemsParams{
		OrganizationID: orgID,
		Category:       req.Category,
		Search:         req.Search,
		Offset:         (page - 1) * size,
		Limit:          size,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		return transport.CostItemListResponse{}, fmt.Errorf("list cost items: %w", err)
	}

	resp := transport.CostItemListResponse{
		Items:      make([]transport.CostItemResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

func toResponse(item repository.CostItem) transport.CostItemResponse {
	return transport.CostItemResponse{
		ID:           item.ID,
		Category:     item.Category,
		Name:         item.Name,
		Unit:         item.Unit,
		UnitPriceCLP: item.UnitPriceCLP,
		Active:       item.Active,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
