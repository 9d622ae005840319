package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guardops_backend/internal/costing/calc"
	"guardops_backend/platform/apperr"
)

const (
	positionNotFoundMessage = "quote position not found"
	lineNotFoundMessage     = "quote cost line not found"
	quoteNotFoundMessage    = "quote not found"
)

// Repo implements the costing repository on Postgres. Positions and cost
// lines are stored as JSON documents next to their scoping columns; the
// document is the source of truth, the columns exist for filtering.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a costing repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListPositions returns every position on a quote.
func (r *Repo) ListPositions(ctx context.Context, organizationID, quoteID uuid.UUID) ([]calc.Position, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT data FROM quote_positions
		 WHERE organization_id = $1 AND quote_id = $2
		 ORDER BY created_at`,
		organizationID, quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var positions []calc.Position
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		var pos calc.Position
		if err := json.Unmarshal(data, &pos); err != nil {
			return nil, fmt.Errorf("unmarshal position: %w", err)
		}
		positions = append(positions, pos)
	}

	return positions, rows.Err()
}

// GetPosition returns one position by id.
func (r *Repo) GetPosition(ctx context.Context, organizationID, id uuid.UUID) (calc.Position, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM quote_positions WHERE organization_id = $1 AND id = $2`,
		organizationID, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calc.Position{}, apperr.NotFound(positionNotFoundMessage)
		}
		return calc.Position{}, fmt.Errorf("query position: %w", err)
	}

	var pos calc.Position
	if err := json.Unmarshal(data, &pos); err != nil {
		return calc.Position{}, fmt.Errorf("unmarshal position: %w", err)
	}
	return pos, nil
}

// InsertPosition stores a new position.
func (r *Repo) InsertPosition(ctx context.Context, organizationID uuid.UUID, pos calc.Position) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("marshal position: %w", err)
	}

	if _, err := r.pool.Exec(ctx,
		`INSERT INTO quote_positions (id, organization_id, quote_id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		pos.ID, organizationID, pos.QuoteID, data,
	); err != nil {
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// UpdatePosition overwrites an existing position document.
func (r *Repo) UpdatePosition(ctx context.Context, organizationID uuid.UUID, pos calc.Position) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("marshal position: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE quote_positions SET data = $3, updated_at = NOW()
		 WHERE organization_id = $1 AND id = $2`,
		organizationID, pos.ID, data,
	)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(positionNotFoundMessage)
	}
	return nil
}

// DeletePosition removes a position.
func (r *Repo) DeletePosition(ctx context.Context, organizationID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM quote_positions WHERE organization_id = $1 AND id = $2`,
		organizationID, id,
	)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(positionNotFoundMessage)
	}
	return nil
}

// ListCostLines returns every ancillary cost line on a quote across all
// categories.
func (r *Repo) ListCostLines(ctx context.Context, organizationID, quoteID uuid.UUID) ([]calc.CostLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT data FROM quote_cost_lines
		 WHERE organization_id = $1 AND quote_id = $2
		 ORDER BY category, created_at`,
		organizationID, quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cost lines: %w", err)
	}
	defer rows.Close()

	var lines []calc.CostLine
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan cost line: %w", err)
		}
		var line calc.CostLine
		if err := json.Unmarshal(data, &line); err != nil {
			return nil, fmt.Errorf("unmarshal cost line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// GetCostLine returns one cost line by id.
func (r *Repo) GetCostLine(ctx context.Context, organizationID, id uuid.UUID) (calc.CostLine, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM quote_cost_lines WHERE organization_id = $1 AND id = $2`,
		organizationID, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calc.CostLine{}, apperr.NotFound(lineNotFoundMessage)
		}
		return calc.CostLine{}, fmt.Errorf("query cost line: %w", err)
	}

	var line calc.CostLine
	if err := json.Unmarshal(data, &line); err != nil {
		return calc.CostLine{}, fmt.Errorf("unmarshal cost line: %w", err)
	}
	return line, nil
}

// InsertCostLine stores a new cost line.
func (r *Repo) InsertCostLine(ctx context.Context, organizationID uuid.UUID, line calc.CostLine) error {
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal cost line: %w", err)
	}

	if _, err := r.pool.Exec(ctx,
		`INSERT INTO quote_cost_lines (id, organization_id, quote_id, category, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		line.ID, organizationID, line.QuoteID, string(line.Category), data,
	); err != nil {
		return fmt.Errorf("insert cost line: %w", err)
	}
	return nil
}

// UpdateCostLine overwrites an existing cost line document.
func (r *Repo) UpdateCostLine(ctx context.Context, organizationID uuid.UUID, line calc.CostLine) error {
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal cost line: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE quote_cost_lines SET category = $3, data = $4, updated_at = NOW()
		 WHERE organization_id = $1 AND id = $2`,
		organizationID, line.ID, string(line.Category), data,
	)
	if err != nil {
		return fmt.Errorf("update cost line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(lineNotFoundMessage)
	}
	return nil
}

// DeleteCostLine removes a cost line.
func (r *Repo) DeleteCostLine(ctx context.Context, organizationID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM quote_cost_lines WHERE organization_id = $1 AND id = $2`,
		organizationID, id,
	)
	if err != nil {
		return fmt.Errorf("delete cost line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(lineNotFoundMessage)
	}
	return nil
}

// SaveQuoteSummary caches the computed summary and sale price on the quote
// header. The summary stays derivable from positions and lines; this copy
// exists for display.
func (r *Repo) SaveQuoteSummary(ctx context.Context, organizationID, quoteID uuid.UUID, summary calc.Summary, salePriceCLP int64) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE quotes
		 SET cost_summary = $3,
		     sale_price_monthly_clp = $4,
		     rule_version = $5,
		     updated_at = NOW()
		 WHERE organization_id = $1 AND id = $2`,
		organizationID, quoteID, data, salePriceCLP, summary.RuleVersion,
	)
	if err != nil {
		return fmt.Errorf("save quote summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMessage)
	}
	return nil
}
