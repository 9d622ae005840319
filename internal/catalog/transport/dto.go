package transport

import "github.com/google/uuid"

// Cost item categories. "item" is the generic catch-all for catalog cost
// lines that have no dedicated calculator.
const (
	CategoryUniform        = "uniform"
	CategoryExam           = "exam"
	CategoryMeal           = "meal"
	CategoryVehicle        = "vehicle"
	CategoryInfrastructure = "infrastructure"
	CategoryItem           = "item"
)

// CreateCostItemRequest is the request body for creating a cost item.
type CreateCostItemRequest struct {
	Category     string `json:"category" validate:"required,oneof=uniform exam meal vehicle infrastructure item"`
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Unit         string `json:"unit" validate:"required,min=1,max=50"`
	UnitPriceCLP int64  `json:"unitPriceClp" validate:"gt=0"`
}

// UpdateCostItemRequest is the request body for updating a cost item.
type UpdateCostItemRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Unit         *string `json:"unit" validate:"omitempty,min=1,max=50"`
	UnitPriceCLP *int64  `json:"unitPriceClp" validate:"omitempty,gt=0"`
	Active       *bool   `json:"active"`
}

// ListCostItemsRequest defines query parameters for listing cost items.
type ListCostItemsRequest struct {
	Category  string `form:"category" validate:"omitempty,oneof=uniform exam meal vehicle infrastructure item"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=name category unitPrice createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CostItemResponse is the API representation of a cost item.
type CostItemResponse struct {
	ID           uuid.UUID `json:"id"`
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	UnitPriceCLP int64     `json:"unitPriceClp"`
	Active       bool      `json:"active"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

// CostItemListResponse is a paginated list of cost items.
type CostItemListResponse struct {
	Items      []CostItemResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}
