package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	List(ctx context.Context) ([]*Lead, error)
	LatestByCampaignEmail(ctx context.Context, campaignID, email string) (*Lead, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Create stores a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lead := &Lead{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Email:       req.Email,
		CampaignID:  req.CampaignID,
		SubmittedAt: req.submittedOrDefault(now),
		CreatedAt:   now,
	}

	r.mu.Lock()
	r.leads = append(r.leads, lead)
	r.mu.Unlock()

	return lead, nil
}

// List returns all stored leads, newest submission first
func (r *InMemoryRepository) List(ctx context.Context) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, len(r.leads))
	copy(out, r.leads)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// LatestByCampaignEmail returns the most recent lead for a campaign/email pair
func (r *InMemoryRepository) LatestByCampaignEmail(ctx context.Context, campaignID, email string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Lead
	for _, lead := range r.leads {
		if lead.CampaignID != campaignID || !strings.EqualFold(lead.Email, email) {
			continue
		}
		if latest == nil || lead.SubmittedAt.After(latest.SubmittedAt) {
			latest = lead
		}
	}
	if latest == nil {
		return nil, ErrLeadNotFound
	}
	return latest, nil
}
