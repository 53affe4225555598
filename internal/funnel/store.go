package funnel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CampaignConfig holds the per-campaign countdown settings.
type CampaignConfig struct {
	CampaignID string `json:"campaign_id"`
	// WindowSeconds is the countdown length from submission. Zero means
	// the default window applies.
	WindowSeconds int64 `json:"window_seconds,omitempty"`
}

// Window returns the configured countdown duration, falling back to def.
func (c *CampaignConfig) Window(def time.Duration) time.Duration {
	if c == nil || c.WindowSeconds <= 0 {
		if def > 0 {
			return def
		}
		return DefaultWindow
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// Store keeps campaign funnel config as JSON blobs in Redis.
type Store struct {
	redis         *redis.Client
	defaultWindow time.Duration
}

func NewStore(redisClient *redis.Client, defaultWindow time.Duration) *Store {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindow
	}
	return &Store{redis: redisClient, defaultWindow: defaultWindow}
}

func (s *Store) key(campaignID string) string {
	return fmt.Sprintf("funnel:config:%s", campaignID)
}

// Get retrieves campaign config, returning defaults if not found or when
// no Redis client is wired.
func (s *Store) Get(ctx context.Context, campaignID string) (*CampaignConfig, error) {
	if s.redis == nil {
		return &CampaignConfig{CampaignID: campaignID}, nil
	}
	data, err := s.redis.Get(ctx, s.key(campaignID)).Bytes()
	if err == redis.Nil {
		return &CampaignConfig{CampaignID: campaignID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("funnel: get config: %w", err)
	}

	var cfg CampaignConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("funnel: unmarshal config: %w", err)
	}
	cfg.CampaignID = campaignID
	return &cfg, nil
}

// Set saves campaign config.
func (s *Store) Set(ctx context.Context, cfg *CampaignConfig) error {
	if s.redis == nil {
		return fmt.Errorf("funnel: redis not configured")
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("funnel: marshal config: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(cfg.CampaignID), data, 0).Err(); err != nil {
		return fmt.Errorf("funnel: set config: %w", err)
	}
	return nil
}

// WindowFor resolves the effective countdown window for a campaign.
func (s *Store) WindowFor(ctx context.Context, campaignID string) (time.Duration, error) {
	cfg, err := s.Get(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	return cfg.Window(s.defaultWindow), nil
}
