package events

import (
	"context"

	"github.com/funnelkit/lead-capture-api/internal/leads"
)

// LeadRecorder adapts the outbox store to the capture handler's
// EventRecorder hook.
type LeadRecorder struct {
	store *OutboxStore
}

func NewLeadRecorder(store *OutboxStore) *LeadRecorder {
	if store == nil {
		return nil
	}
	return &LeadRecorder{store: store}
}

// RecordLeadStored enqueues a lead.stored.v1 event carrying the full lead
// record, the same JSON shape the automation platform receives.
func (r *LeadRecorder) RecordLeadStored(ctx context.Context, lead *leads.Lead) error {
	_, err := r.store.Insert(ctx, lead.CampaignID, TypeLeadStored, lead)
	return err
}

var _ leads.EventRecorder = (*LeadRecorder)(nil)
