package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guardops_backend/internal/costing/calc"
	"guardops_backend/platform/apperr"
)

const quoteNotFoundMessage = "quote not found"

const quoteColumns = `id, organization_id, name, client_name, status, params,
	cost_summary, sale_price_monthly_clp, rule_version,
	created_at::text, updated_at::text`

// Repo implements the quotes repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a quotes repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create stores a new quote header in draft status.
func (r *Repo) Create(ctx context.Context, params CreateQuoteParams) (Quote, error) {
	paramsJSON, err := json.Marshal(params.Params)
	if err != nil {
		return Quote{}, fmt.Errorf("marshal quote params: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO quotes (id, organization_id, name, client_name, status, params, sale_price_monthly_clp, rule_version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, 0, NOW(), NOW())
		 RETURNING `+quoteColumns,
		uuid.New(), params.OrganizationID, params.Name, params.ClientName, StatusDraft, paramsJSON,
	)
	return scanQuote(row)
}

// Update applies a partial update to a quote header. Changing the parameters
// resets the cached sale price so the next cost computation back-solves it
// again.
func (r *Repo) Update(ctx context.Context, params UpdateQuoteParams) (Quote, error) {
	var paramsJSON []byte
	if params.Params != nil {
		var err error
		paramsJSON, err = json.Marshal(params.Params)
		if err != nil {
			return Quote{}, fmt.Errorf("marshal quote params: %w", err)
		}
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE quotes SET
			name = COALESCE($3, name),
			client_name = COALESCE($4, client_name),
			status = COALESCE($5, status),
			params = COALESCE($6, params),
			sale_price_monthly_clp = CASE WHEN $6::jsonb IS NULL THEN sale_price_monthly_clp ELSE 0 END,
			updated_at = NOW()
		 WHERE organization_id = $1 AND id = $2
		 RETURNING `+quoteColumns,
		params.OrganizationID, params.ID, params.Name, params.ClientName, params.Status, paramsJSON,
	)
	return scanQuote(row)
}

// Delete removes a quote header. Positions and cost lines cascade at the
// schema level.
func (r *Repo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM quotes WHERE organization_id = $1 AND id = $2`,
		organizationID, id,
	)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMessage)
	}
	return nil
}

// GetByID returns one quote header.
func (r *Repo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (Quote, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE organization_id = $1 AND id = $2`,
		organizationID, id,
	)
	return scanQuote(row)
}

// List returns a filtered page of quotes, newest first.
func (r *Repo) List(ctx context.Context, params ListQuotesParams) ([]Quote, int, error) {
	where := []string{"organization_id = $1"}
	args := []interface{}{params.OrganizationID}

	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR client_name ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM quotes WHERE "+whereClause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM quotes WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
			quoteColumns, whereClause, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, quote)
	}

	return quotes, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (Quote, error) {
	var (
		quote       Quote
		paramsJSON  []byte
		summaryJSON []byte
	)
	err := row.Scan(
		&quote.ID, &quote.OrganizationID, &quote.Name, &quote.ClientName, &quote.Status,
		&paramsJSON, &summaryJSON, &quote.SalePriceMonthlyCLP, &quote.RuleVersion,
		&quote.CreatedAt, &quote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, apperr.NotFound(quoteNotFoundMessage)
		}
		return Quote{}, fmt.Errorf("scan quote: %w", err)
	}

	if err := json.Unmarshal(paramsJSON, &quote.Params); err != nil {
		return Quote{}, fmt.Errorf("unmarshal quote params: %w", err)
	}
	if len(summaryJSON) > 0 {
		var summary calc.Summary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return Quote{}, fmt.Errorf("unmarshal quote summary: %w", err)
		}
		quote.CostSummary = &summary
	}
	return quote, nil
}
