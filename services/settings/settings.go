package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/samber/mo"

	"alphatron/core"
	"alphatron/models"
)

type SettingsRepository interface {
	GetSettingsDocument(ctx context.Context, id string) (mo.Option[*models.SettingsDocument], error)
	UpsertSettingsDocument(ctx context.Context, id string, data types.JSONText) (*models.SettingsDocument, error)
	NotifySettingsChanged(ctx context.Context, id string) error
}

// SettingsService keeps the settings document in memory. The cached value is
// swapped as a whole, so every reader sees either the old or the new
// settings.
type SettingsService struct {
	settingsRepo SettingsRepository
	documentID   string
	current      atomic.Pointer[models.Settings]
}

func NewSettingsService(repo SettingsRepository, documentID string) *SettingsService {
	return &SettingsService{settingsRepo: repo, documentID: documentID}
}

// Current returns the cached settings, or nil before the first successful load.
func (s *SettingsService) Current() *models.Settings {
	return s.current.Load()
}

// Load reads the settings document and replaces the cached value.
func (s *SettingsService) Load(ctx context.Context) error {
	log.Printf("📋 Starting to load settings document: %s", s.documentID)
	settings, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	s.current.Store(settings)
	log.Printf("📋 Completed successfully - loaded settings document: %s", s.documentID)
	return nil
}

// Refresh is Load for a service that is already serving traffic: on error
// the last known good settings stay in place.
func (s *SettingsService) Refresh(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		log.Printf("❌ Failed to refresh settings, keeping last known good value: %v", err)
		return err
	}
	log.Printf("✅ Settings reloaded because a change was detected")
	return nil
}

// Watch refreshes the settings whenever a notification for this document
// arrives and on every tick of interval. A nil notification means the
// listener reconnected and may have missed changes. Watch returns when ctx
// is done.
func (s *SettingsService) Watch(ctx context.Context, notifications <-chan *pq.Notification, interval time.Duration) {
	log.Printf("👀 Watching settings document %s (refresh interval: %s)", s.documentID, interval)

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 Stopped watching settings document %s", s.documentID)
			return
		case n, ok := <-notifications:
			if !ok {
				log.Printf("⚠️ Settings notification channel closed, falling back to periodic refresh")
				notifications = nil
				continue
			}
			if n != nil && n.Extra != "" && n.Extra != s.documentID {
				continue
			}
			_ = s.Refresh(ctx)
		case <-tick:
			_ = s.Refresh(ctx)
		}
	}
}

// UpsertToken stores a new verification token and notifies every watcher.
func (s *SettingsService) UpsertToken(ctx context.Context, token string) error {
	log.Printf("📋 Starting to upsert settings token for document: %s", s.documentID)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	data, err := json.Marshal(models.Settings{Token: token})
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if _, err := s.settingsRepo.UpsertSettingsDocument(ctx, s.documentID, types.JSONText(data)); err != nil {
		return fmt.Errorf("failed to upsert settings document: %w", err)
	}

	if err := s.settingsRepo.NotifySettingsChanged(ctx, s.documentID); err != nil {
		return fmt.Errorf("failed to notify settings change: %w", err)
	}

	log.Printf("📋 Completed successfully - upserted settings token for document: %s", s.documentID)
	return nil
}

func (s *SettingsService) fetch(ctx context.Context) (*models.Settings, error) {
	maybeDoc, err := s.settingsRepo.GetSettingsDocument(ctx, s.documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings document: %w", err)
	}
	if !maybeDoc.IsPresent() {
		return nil, fmt.Errorf("settings document %s: %w", s.documentID, core.ErrNotFound)
	}

	doc := maybeDoc.MustGet()
	var settings models.Settings
	if err := json.Unmarshal(doc.Data, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings document %s: %w", s.documentID, err)
	}
	if settings.Token == "" {
		return nil, fmt.Errorf("settings document %s has no token", s.documentID)
	}

	settings.DocumentID = doc.ID
	settings.UpdatedAt = doc.UpdatedAt
	return &settings, nil
}
