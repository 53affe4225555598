package leads

import "errors"

var (
	// ErrMissingRequiredFields is returned when email or campaign_id is absent or empty
	ErrMissingRequiredFields = errors.New("missing required fields")

	// ErrLeadNotFound is returned when no lead matches the query
	ErrLeadNotFound = errors.New("lead not found")
)
