package settings

import (
	"context"

	"github.com/jmoiron/sqlx/types"
	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"alphatron/models"
)

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetSettingsDocument(
	ctx context.Context,
	id string,
) (mo.Option[*models.SettingsDocument], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.SettingsDocument]), args.Error(1)
}

func (m *MockSettingsRepository) UpsertSettingsDocument(
	ctx context.Context,
	id string,
	data types.JSONText,
) (*models.SettingsDocument, error) {
	args := m.Called(ctx, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettingsDocument), args.Error(1)
}

func (m *MockSettingsRepository) NotifySettingsChanged(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
