package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"alphatron/models"
)

// MockSettingsService is a mock implementation of SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Current() *models.Settings {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Settings)
}

// MockFeatureStatesService is a mock implementation of FeatureStatesService.
// A document configured with Run can be written into dest by the test.
type MockFeatureStatesService struct {
	mock.Mock
}

func (m *MockFeatureStatesService) GetDocumentForUpdate(ctx context.Context, feature string, dest any) (bool, error) {
	args := m.Called(ctx, feature, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeatureStatesService) SaveDocument(ctx context.Context, feature string, src any) error {
	args := m.Called(ctx, feature, src)
	return args.Error(0)
}

// MockTransactionManager runs fn inline unless an error is configured
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// InlineSubmitter runs submitted tasks synchronously on the caller's goroutine
type InlineSubmitter struct{}

func (InlineSubmitter) Submit(task func()) {
	task()
}
