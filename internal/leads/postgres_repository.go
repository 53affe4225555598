package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	submittedAt := req.submittedOrDefault(time.Now().UTC())
	query := `
		INSERT INTO leads (id, name, email, campaign_id, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.CampaignID,
		submittedAt,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return &Lead{
		ID:          id.String(),
		Name:        req.Name,
		Email:       req.Email,
		CampaignID:  req.CampaignID,
		SubmittedAt: submittedAt,
		CreatedAt:   createdAt,
	}, nil
}

// List returns all stored leads ordered by submission time, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Lead, error) {
	query := `
		SELECT id, name, email, campaign_id, submitted_at, created_at
		FROM leads
		ORDER BY submitted_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	defer rows.Close()

	leads := []*Lead{}
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.Name,
			&lead.Email,
			&lead.CampaignID,
			&lead.SubmittedAt,
			&lead.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		leads = append(leads, &lead)
	}
	return leads, rows.Err()
}

// LatestByCampaignEmail fetches the most recent lead for a campaign/email pair.
func (r *PostgresRepository) LatestByCampaignEmail(ctx context.Context, campaignID, email string) (*Lead, error) {
	query := `
		SELECT id, name, email, campaign_id, submitted_at, created_at
		FROM leads
		WHERE campaign_id = $1 AND lower(email) = lower($2)
		ORDER BY submitted_at DESC
		LIMIT 1
	`
	row := r.pool.QueryRow(ctx, query, campaignID, email)
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.CampaignID,
		&lead.SubmittedAt,
		&lead.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return &lead, nil
}
