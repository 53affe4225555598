package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/funnelkit/lead-capture-api/pkg/logging"
)

func postLead(t *testing.T, handler *Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.CreateLead(w, req)
	return w
}

func TestCreateLead_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := NewHandler(repo, logging.Default())

	w := postLead(t, handler, map[string]string{
		"name":         "John Doe",
		"email":        "john@example.com",
		"campaign_id":  "df_campaign_123",
		"submitted_at": "2025-06-26T11:00:00Z",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["message"] != "Lead stored successfully" {
		t.Errorf("expected confirmation message, got %q", resp["message"])
	}

	stored, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored lead, got %d", len(stored))
	}
	if stored[0].Email != "john@example.com" || stored[0].CampaignID != "df_campaign_123" {
		t.Errorf("stored lead fields mismatch: %+v", stored[0])
	}
	want, _ := time.Parse(time.RFC3339, "2025-06-26T11:00:00Z")
	if !stored[0].SubmittedAt.Equal(want) {
		t.Errorf("expected submitted_at %s, got %s", want, stored[0].SubmittedAt)
	}
}

func TestCreateLead_MissingEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := NewHandler(repo, logging.Default())

	w := postLead(t, handler, map[string]string{
		"name":        "Jane",
		"campaign_id": "df_campaign_123",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] != "Missing required fields" {
		t.Errorf("expected missing-fields error, got %q", resp["error"])
	}

	stored, _ := repo.List(context.Background())
	if len(stored) != 0 {
		t.Errorf("expected no stored leads, got %d", len(stored))
	}
}

func TestCreateLead_MissingCampaignID(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := NewHandler(repo, logging.Default())

	w := postLead(t, handler, map[string]string{"email": "a@b.com"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	stored, _ := repo.List(context.Background())
	if len(stored) != 0 {
		t.Errorf("expected no stored leads, got %d", len(stored))
	}
}

func TestCreateLead_InvalidJSON(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader("{"))
	w := httptest.NewRecorder()

	handler.CreateLead(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

type failingRepository struct{}

func (f failingRepository) Create(context.Context, *CreateLeadRequest) (*Lead, error) {
	return nil, errors.New("connection lost")
}

func (f failingRepository) List(context.Context) ([]*Lead, error) {
	return nil, errors.New("connection lost")
}

func (f failingRepository) LatestByCampaignEmail(context.Context, string, string) (*Lead, error) {
	return nil, ErrLeadNotFound
}

func TestCreateLead_StoreError(t *testing.T) {
	handler := NewHandler(failingRepository{}, logging.Default())

	w := postLead(t, handler, map[string]string{
		"email":       "fail@example.com",
		"campaign_id": "df_campaign_123",
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

type recordingRecorder struct {
	recorded []*Lead
}

func (r *recordingRecorder) RecordLeadStored(ctx context.Context, lead *Lead) error {
	r.recorded = append(r.recorded, lead)
	return nil
}

func TestCreateLead_RecordsEvent(t *testing.T) {
	rec := &recordingRecorder{}
	handler := NewHandler(NewInMemoryRepository(), logging.Default()).WithEventRecorder(rec)

	w := postLead(t, handler, map[string]string{
		"email":       "john@example.com",
		"campaign_id": "df_campaign_123",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, w.Code)
	}
	if len(rec.recorded) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(rec.recorded))
	}
	if rec.recorded[0].Email != "john@example.com" {
		t.Errorf("recorded wrong lead: %+v", rec.recorded[0])
	}
}

func TestListLeads_NewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := NewHandler(repo, logging.Default())

	stamps := []string{
		"2025-06-24T09:00:00Z",
		"2025-06-26T11:00:00Z",
		"2025-06-25T10:00:00Z",
	}
	for i, ts := range stamps {
		w := postLead(t, handler, map[string]string{
			"name":         "Visitor",
			"email":        "visitor@example.com",
			"campaign_id":  "df_campaign_123",
			"submitted_at": ts,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("post %d: expected 200, got %d", i, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	w := httptest.NewRecorder()
	handler.ListLeads(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var listed []*Lead
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 leads, got %d", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i].SubmittedAt.After(listed[i-1].SubmittedAt) {
			t.Errorf("leads out of order at %d: %s before %s", i, listed[i-1].SubmittedAt, listed[i].SubmittedAt)
		}
	}
}

func TestListLeads_StoreError(t *testing.T) {
	handler := NewHandler(failingRepository{}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	w := httptest.NewRecorder()
	handler.ListLeads(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestRepository_LatestByCampaignEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	early, _ := time.Parse(time.RFC3339, "2025-06-24T09:00:00Z")
	late, _ := time.Parse(time.RFC3339, "2025-06-26T11:00:00Z")
	for _, ts := range []time.Time{early, late} {
		if _, err := repo.Create(ctx, &CreateLeadRequest{
			Email:       "John@Example.com",
			CampaignID:  "df_campaign_123",
			SubmittedAt: ts,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	lead, err := repo.LatestByCampaignEmail(ctx, "df_campaign_123", "john@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lead.SubmittedAt.Equal(late) {
		t.Errorf("expected latest submission, got %s", lead.SubmittedAt)
	}

	if _, err := repo.LatestByCampaignEmail(ctx, "other_campaign", "john@example.com"); err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}
