package funnel

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/funnelkit/lead-capture-api/internal/leads"
	"github.com/funnelkit/lead-capture-api/pkg/logging"
)

// StatusResponse describes where a visitor stands against their deadline.
type StatusResponse struct {
	CampaignID       string    `json:"campaign_id"`
	Email            string    `json:"email"`
	SubmittedAt      time.Time `json:"submitted_at"`
	Deadline         time.Time `json:"deadline"`
	Expired          bool      `json:"expired"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// Handler serves funnel deadline queries.
type Handler struct {
	repo   leads.Repository
	store  *Store
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a funnel handler.
func NewHandler(repo leads.Repository, store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// GetStatus handles GET /api/funnel/{campaignID}/status?email= requests
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if campaignID == "" || email == "" {
		respondError(w, http.StatusBadRequest, "campaign id and email are required")
		return
	}

	lead, err := h.repo.LatestByCampaignEmail(r.Context(), campaignID, email)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			respondError(w, http.StatusNotFound, "no lead found for campaign")
			return
		}
		h.logger.Error("failed to look up lead", "error", err, "campaign_id", campaignID)
		respondError(w, http.StatusInternalServerError, "failed to look up lead")
		return
	}

	window, err := h.store.WindowFor(r.Context(), campaignID)
	if err != nil {
		h.logger.Error("failed to load funnel config", "error", err, "campaign_id", campaignID)
		respondError(w, http.StatusInternalServerError, "failed to load funnel config")
		return
	}

	now := h.now().UTC()
	resp := StatusResponse{
		CampaignID:       campaignID,
		Email:            lead.Email,
		SubmittedAt:      lead.SubmittedAt,
		Deadline:         Deadline(lead.SubmittedAt, window),
		Expired:          Expired(now, lead.SubmittedAt, window),
		RemainingSeconds: int64(Remaining(now, lead.SubmittedAt, window) / time.Second),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
