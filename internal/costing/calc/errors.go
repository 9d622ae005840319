package calc

import "guardops_backend/platform/apperr"

// Shared calculation errors. Compared with errors.Is; never mutated.
var (
	ErrInvalidMarginPercent = apperr.Validation("margin percent must be greater than 0 and less than 100")
	ErrMissingCatalogItem   = apperr.Validation("cost line references a catalog item that does not exist")
	ErrUnknownCalcMode      = apperr.Validation("unknown calculation mode for cost line")
	ErrInvalidPosition      = apperr.Validation("position requires at least one guard")
)
