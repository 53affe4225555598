package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/funnelkit/lead-capture-api/internal/leads"
)

func TestOutboxStoreFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewOutboxStore(mock)

	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(pgxmock.AnyArg(), "df_campaign_123", TypeLeadStored, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if _, err := store.Insert(context.Background(), "df_campaign_123", TypeLeadStored, map[string]string{"email": "john@example.com"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "campaign_id", "type", "payload", "created_at"}).
		AddRow(id, "df_campaign_123", TypeLeadStored, []byte(`{"email":"john@example.com"}`), now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10)).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if !ok {
		t.Fatal("expected mark delivered to report success")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLeadRecorder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	rec := NewLeadRecorder(NewOutboxStore(mock))

	lead := &leads.Lead{
		ID:         uuid.NewString(),
		Email:      "john@example.com",
		CampaignID: "df_campaign_123",
	}
	payload, _ := json.Marshal(lead)

	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(pgxmock.AnyArg(), "df_campaign_123", TypeLeadStored, payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := rec.RecordLeadStored(context.Background(), lead); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type captureHandler struct {
	entries []OutboxEntry
}

func (c *captureHandler) Handle(ctx context.Context, entry OutboxEntry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func TestDelivererDrain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewOutboxStore(mock)
	handler := &captureHandler{}
	d := NewDeliverer(store, handler, nil).WithBatchSize(5)

	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "campaign_id", "type", "payload", "created_at"}).
		AddRow(id, "df_campaign_123", TypeLeadStored, []byte(`{}`), time.Now().UTC())
	mock.ExpectQuery("SELECT id").WithArgs(int32(5)).WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	d.drain(context.Background())

	if len(handler.entries) != 1 || handler.entries[0].ID != id {
		t.Fatalf("expected one delivered entry, got %#v", handler.entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
