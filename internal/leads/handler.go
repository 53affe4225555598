package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/funnelkit/lead-capture-api/internal/observability/metrics"
	"github.com/funnelkit/lead-capture-api/pkg/logging"
)

// EventRecorder enqueues a stored-lead event for downstream delivery.
type EventRecorder interface {
	RecordLeadStored(ctx context.Context, lead *Lead) error
}

// Subscriber pushes a captured email to the CRM provider.
type Subscriber interface {
	Subscribe(ctx context.Context, email, name string) error
}

// Notifier alerts the operator that a lead arrived.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo       Repository
	logger     *logging.Logger
	recorder   EventRecorder
	subscriber Subscriber
	notifier   Notifier
	metrics    *metrics.LeadMetrics
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// WithEventRecorder enables outbox recording of stored leads.
func (h *Handler) WithEventRecorder(rec EventRecorder) *Handler {
	h.recorder = rec
	return h
}

// WithSubscriber enables the CRM subscribe side effect.
func (h *Handler) WithSubscriber(sub Subscriber) *Handler {
	h.subscriber = sub
	return h
}

// WithNotifier enables operator notifications.
func (h *Handler) WithNotifier(n Notifier) *Handler {
	h.notifier = n
	return h
}

// WithMetrics enables Prometheus instrumentation.
func (h *Handler) WithMetrics(m *metrics.LeadMetrics) *Handler {
	h.metrics = m
	return h
}

// CreateLead handles POST /api/leads requests
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		h.metrics.ObserveCapture("invalid_body", time.Since(start).Seconds())
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMissingRequiredFields) {
			h.metrics.ObserveCapture("validation_failed", time.Since(start).Seconds())
			respondError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		h.logger.Error("failed to store lead", "error", err, "campaign_id", req.CampaignID)
		h.metrics.ObserveCapture("store_failed", time.Since(start).Seconds())
		respondError(w, http.StatusInternalServerError, "Failed to store lead")
		return
	}

	h.logger.Info("lead stored", "id", lead.ID, "campaign_id", lead.CampaignID)
	h.metrics.ObserveCapture("stored", time.Since(start).Seconds())

	if h.recorder != nil {
		if err := h.recorder.RecordLeadStored(r.Context(), lead); err != nil {
			// Delivery is best effort; the lead row is already committed.
			h.logger.Error("failed to enqueue lead event", "error", err, "id", lead.ID)
		}
	}
	h.fanOut(lead)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Lead stored successfully"})
}

// fanOut runs the fire-and-forget side effects on a detached context so
// they survive the request completing.
func (h *Handler) fanOut(lead *Lead) {
	if h.subscriber == nil && h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if h.subscriber != nil {
			if err := h.subscriber.Subscribe(ctx, lead.Email, lead.Name); err != nil {
				h.logger.Error("crm subscribe failed", "error", err, "id", lead.ID)
			}
		}
		if h.notifier != nil {
			if err := h.notifier.NotifyNewLead(ctx, lead); err != nil {
				h.logger.Error("lead notification failed", "error", err, "id", lead.ID)
			}
		}
	}()
}

// ListLeads handles GET /api/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	if leads == nil {
		leads = []*Lead{}
	}

	respondJSON(w, http.StatusOK, leads)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
