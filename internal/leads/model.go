package leads

import (
	"strings"
	"time"
)

// Lead represents a captured visitor submission tied to a marketing campaign
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CampaignID  string    `json:"campaign_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateLeadRequest represents the request body for capturing a lead
type CreateLeadRequest struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CampaignID  string    `json:"campaign_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Validate validates the capture request. Only presence is checked: the
// email shape and the campaign id are deliberately not inspected further.
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrMissingRequiredFields
	}
	if strings.TrimSpace(r.CampaignID) == "" {
		return ErrMissingRequiredFields
	}
	return nil
}

// submittedOrDefault returns the client timestamp, falling back to the
// server receipt time when the form did not send one.
func (r *CreateLeadRequest) submittedOrDefault(now time.Time) time.Time {
	if r.SubmittedAt.IsZero() {
		return now
	}
	return r.SubmittedAt
}
