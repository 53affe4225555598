package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/funnelkit/lead-capture-api/internal/leads"
	"github.com/funnelkit/lead-capture-api/pkg/logging"
)

// Service emails operators when a new lead is captured.
type Service struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewService creates a notification service. Returns nil when there is
// nothing to notify with, so callers can skip wiring entirely.
func NewService(email EmailSender, recipients []string, logger *logging.Logger) *Service {
	if email == nil || len(recipients) == 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		recipients: recipients,
		logger:     logger,
	}
}

// NotifyNewLead sends a "new lead" email to every configured recipient.
// Partial failures are logged and folded into the returned error.
func (s *Service) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if s == nil {
		return nil
	}

	name := lead.Name
	if name == "" {
		name = "A visitor"
	}

	subject := fmt.Sprintf("New lead: %s (%s)", name, lead.CampaignID)
	body := fmt.Sprintf(
		"%s just joined campaign %s.\n\nEmail: %s\nSubmitted: %s\n",
		name,
		lead.CampaignID,
		lead.Email,
		lead.SubmittedAt.Format("January 2, 2006 at 3:04 PM MST"),
	)

	var failed []string
	for _, to := range s.recipients {
		msg := EmailMessage{
			To:      to,
			Subject: subject,
			Body:    body,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("lead notification send failed", "error", err, "to", to, "lead_id", lead.ID)
			failed = append(failed, to)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("notify: failed to reach %s", strings.Join(failed, ", "))
	}

	s.logger.Info("lead notification sent", "lead_id", lead.ID, "recipients", len(s.recipients))
	return nil
}

var _ leads.Notifier = (*Service)(nil)
