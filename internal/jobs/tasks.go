// Package jobs defines the background task types and the asynq client and
// worker that move quote recomputations off the request path.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskRecomputeQuote rebuilds one quote's cost summary on the worker.
const TaskRecomputeQuote = "costing.recompute_quote"

// RecomputeQuotePayload identifies the quote to rebuild.
type RecomputeQuotePayload struct {
	QuoteID        string `json:"quoteId"`
	OrganizationID string `json:"organizationId"`
	Force          bool   `json:"force"`
}

// NewRecomputeQuoteTask builds the asynq task for a quote recomputation.
func NewRecomputeQuoteTask(payload RecomputeQuotePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecomputeQuote, data), nil
}

// ParseRecomputeQuotePayload decodes a quote recomputation task.
func ParseRecomputeQuotePayload(task *asynq.Task) (RecomputeQuotePayload, error) {
	var payload RecomputeQuotePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecomputeQuotePayload{}, err
	}
	return payload, nil
}
