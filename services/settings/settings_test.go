package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alphatron/core"
	"alphatron/models"
)

const testDocumentID = "doc_test"

func settingsDoc(data string) mo.Option[*models.SettingsDocument] {
	return mo.Some(&models.SettingsDocument{
		ID:        testDocumentID,
		Data:      types.JSONText(data),
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
}

func setupSettingsTest() (*SettingsService, *MockSettingsRepository) {
	repo := &MockSettingsRepository{}
	return NewSettingsService(repo, testDocumentID), repo
}

func TestSettingsService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("caches the decoded document", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(settingsDoc(`{"token":"secret"}`), nil)

		assert.Nil(t, service.Current())
		require.NoError(t, service.Load(ctx))

		current := service.Current()
		require.NotNil(t, current)
		assert.Equal(t, "secret", current.Token)
		assert.Equal(t, testDocumentID, current.DocumentID)
		assert.False(t, current.UpdatedAt.IsZero())
	})

	t.Run("missing document is a not found error", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(mo.None[*models.SettingsDocument](), nil)

		err := service.Load(ctx)

		assert.True(t, core.IsNotFoundError(err))
		assert.Nil(t, service.Current())
	})

	t.Run("document without token is rejected", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(settingsDoc(`{"other":"value"}`), nil)

		err := service.Load(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "has no token")
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(mo.None[*models.SettingsDocument](), errors.New("db down"))

		err := service.Load(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get settings document")
	})
}

func TestSettingsService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces cached value", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(settingsDoc(`{"token":"old"}`), nil).Once()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(settingsDoc(`{"token":"new"}`), nil).Once()

		require.NoError(t, service.Load(ctx))
		before := service.Current()
		require.NoError(t, service.Refresh(ctx))

		assert.Equal(t, "new", service.Current().Token)
		assert.Equal(t, "old", before.Token, "earlier readers keep their snapshot")
	})

	t.Run("keeps last known good value on error", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(settingsDoc(`{"token":"good"}`), nil).Once()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(mo.None[*models.SettingsDocument](), errors.New("db down")).Once()
		repo.On("GetSettingsDocument", ctx, testDocumentID).Return(settingsDoc(`not json`), nil).Once()

		require.NoError(t, service.Load(ctx))
		assert.Error(t, service.Refresh(ctx))
		assert.Equal(t, "good", service.Current().Token)
		assert.Error(t, service.Refresh(ctx))
		assert.Equal(t, "good", service.Current().Token)
	})
}

func TestSettingsService_Watch(t *testing.T) {
	t.Run("refreshes on matching notifications and reconnects", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", mock.Anything, testDocumentID).Return(settingsDoc(`{"token":"v1"}`), nil).Once()
		repo.On("GetSettingsDocument", mock.Anything, testDocumentID).Return(settingsDoc(`{"token":"v2"}`), nil).Once()
		repo.On("GetSettingsDocument", mock.Anything, testDocumentID).Return(settingsDoc(`{"token":"v3"}`), nil).Once()

		ctx, cancel := context.WithCancel(context.Background())
		notifications := make(chan *pq.Notification)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.Watch(ctx, notifications, 0)
		}()

		// Other documents are ignored.
		notifications <- &pq.Notification{Channel: "settings_changed", Extra: "another_doc"}
		notifications <- &pq.Notification{Channel: "settings_changed", Extra: testDocumentID}
		assert.Eventually(t, func() bool {
			current := service.Current()
			return current != nil && current.Token == "v1"
		}, time.Second, 5*time.Millisecond)

		notifications <- nil
		assert.Eventually(t, func() bool { return service.Current().Token == "v2" }, time.Second, 5*time.Millisecond)

		notifications <- &pq.Notification{Channel: "settings_changed"}
		assert.Eventually(t, func() bool { return service.Current().Token == "v3" }, time.Second, 5*time.Millisecond)

		cancel()
		wg.Wait()
		repo.AssertNumberOfCalls(t, "GetSettingsDocument", 3)
	})

	t.Run("refreshes periodically and survives a closed channel", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("GetSettingsDocument", mock.Anything, testDocumentID).Return(settingsDoc(`{"token":"tick"}`), nil)

		ctx, cancel := context.WithCancel(context.Background())
		notifications := make(chan *pq.Notification)
		close(notifications)

		done := make(chan struct{})
		go func() {
			service.Watch(ctx, notifications, 10*time.Millisecond)
			close(done)
		}()

		assert.Eventually(t, func() bool {
			current := service.Current()
			return current != nil && current.Token == "tick"
		}, time.Second, 5*time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Watch did not return after cancellation")
		}
	})
}

func TestSettingsService_UpsertToken(t *testing.T) {
	ctx := context.Background()

	t.Run("writes document and notifies", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("UpsertSettingsDocument", ctx, testDocumentID, types.JSONText(`{"token":"fresh"}`)).
			Return(&models.SettingsDocument{ID: testDocumentID}, nil)
		repo.On("NotifySettingsChanged", ctx, testDocumentID).Return(nil)

		require.NoError(t, service.UpsertToken(ctx, "fresh"))
		repo.AssertExpectations(t)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		service, repo := setupSettingsTest()

		assert.Error(t, service.UpsertToken(ctx, ""))
		repo.AssertNotCalled(t, "UpsertSettingsDocument", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("notify failure is reported", func(t *testing.T) {
		service, repo := setupSettingsTest()
		repo.On("UpsertSettingsDocument", ctx, testDocumentID, mock.Anything).Return(&models.SettingsDocument{ID: testDocumentID}, nil)
		repo.On("NotifySettingsChanged", ctx, testDocumentID).Return(errors.New("db down"))

		err := service.UpsertToken(ctx, "fresh")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to notify settings change")
	})
}
