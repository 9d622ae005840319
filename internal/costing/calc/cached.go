package calc

import "time"

// Cached wraps a derived value together with the payroll rule version that
// produced it. Staleness is an explicit predicate instead of ad hoc field
// comparisons scattered through update handlers.
type Cached[T any] struct {
	Value       T         `json:"value"`
	RuleVersion int       `json:"ruleVersion"`
	ComputedAt  time.Time `json:"computedAt"`
	Valid       bool      `json:"valid"`
}

// NewCached records a freshly computed value under the given rule version.
func NewCached[T any](value T, ruleVersion int, computedAt time.Time) Cached[T] {
	return Cached[T]{Value: value, RuleVersion: ruleVersion, ComputedAt: computedAt, Valid: true}
}

// StaleFor reports whether the cached value must be recomputed before it can
// be trusted under the given rule version.
func (c Cached[T]) StaleFor(ruleVersion int) bool {
	return !c.Valid || c.RuleVersion != ruleVersion
}
