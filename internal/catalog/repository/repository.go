package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guardops_backend/platform/apperr"
)

const costItemNotFoundMessage = "catalog cost item not found"

// Repo implements the catalog repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const costItemColumns = `id, organization_id, category, name, unit, unit_price_clp, active, created_at::text, updated_at::text`

// CreateCostItem creates a cost item.
func (r *Repo) CreateCostItem(ctx context.Context, params CreateCostItemParams) (CostItem, error) {
	query := `
		INSERT INTO catalog_cost_items (organization_id, category, name, unit, unit_price_clp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + costItemColumns

	row := r.pool.QueryRow(ctx, query,
		params.OrganizationID, params.Category, params.Name, params.Unit, params.UnitPriceCLP)
	item, err := scanCostItem(row)
	if err != nil {
		return CostItem{}, fmt.Errorf("create cost item: %w", err)
	}
	return item, nil
}

// UpdateCostItem updates a cost item.
func (r *Repo) UpdateCostItem(ctx context.Context, params UpdateCostItemParams) (CostItem, error) {
	query := `
		UPDATE catalog_cost_items
		SET name = COALESCE($3, name),
			unit = COALESCE($4, unit),
			unit_price_clp = COALESCE($5, unit_price_clp),
			active = COALESCE($6, active),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + costItemColumns

	row := r.pool.QueryRow(ctx, query,
		params.ID, params.OrganizationID, params.Name, params.Unit, params.UnitPriceCLP, params.Active)
	item, err := scanCostItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CostItem{}, apperr.NotFound(costItemNotFoundMessage)
		}
		return CostItem{}, fmt.Errorf("update cost item: %w", err)
	}
	return item, nil
}

// DeleteCostItem deletes a cost item.
func (r *Repo) DeleteCostItem(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM catalog_cost_items WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete cost item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(costItemNotFoundMessage)
	}
	return nil
}

// GetCostItemByID retrieves a cost item by ID.
func (r *Repo) GetCostItemByID(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) (CostItem, error) {
	query := `SELECT ` + costItemColumns + `
		FROM catalog_cost_items
		WHERE id = $1 AND organization_id = $2`

	item, err := scanCostItem(r.pool.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CostItem{}, apperr.NotFound(costItemNotFoundMessage)
		}
		return CostItem{}, fmt.Errorf("get cost item by id: %w", err)
	}
	return item, nil
}

// GetCostItemsByIDs retrieves multiple cost items by ID.
func (r *Repo) GetCostItemsByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]CostItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + costItemColumns + `
		FROM catalog_cost_items
		WHERE organization_id = $1 AND id = ANY($2)`

	rows, err := r.pool.Query(ctx, query, organizationID, ids)
	if err != nil {
		return nil, fmt.Errorf("get cost items by ids: %w", err)
	}
	defer rows.Close()

	var items []CostItem
	for rows.Next() {
		item, err := scanCostItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cost item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListCostItems lists cost items with filters and pagination.
func (r *Repo) ListCostItems(ctx context.Context, params ListCostItemsParams) ([]CostItem, int, error) {
	whereClauses := []string{"organization_id = $1"}
	args := []interface{}{params.OrganizationID}
	argIdx := 2

	if params.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM catalog_cost_items WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cost items: %w", err)
	}

	sortColumn := "name"
	switch params.SortBy {
	case "category":
		sortColumn = "category"
	case "unitPrice":
		sortColumn = "unit_price_clp"
	case "createdAt":
		sortColumn = "created_at"
	case "updatedAt":
		sortColumn = "updated_at"
	}

	sortOrder := "ASC"
	if params.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM catalog_cost_items
		WHERE %s
		ORDER BY %s %s, name ASC
		LIMIT $%d OFFSET $%d
	`, costItemColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cost items: %w", err)
	}
	defer rows.Close()

	items := make([]CostItem, 0)
	for rows.Next() {
		item, err := scanCostItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan cost item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate cost items: %w", rows.Err())
	}

	return items, total, nil
}

func scanCostItem(row pgx.Row) (CostItem, error) {
	var item CostItem
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&item.ID, &item.OrganizationID, &item.Category, &item.Name,
		&item.Unit, &item.UnitPriceCLP, &item.Active, &createdAt, &updatedAt,
	); err != nil {
		return CostItem{}, err
	}
	item.CreatedAt = createdAt.Format(time.RFC3339)
	item.UpdatedAt = updatedAt.Format(time.RFC3339)
	return item, nil
}
