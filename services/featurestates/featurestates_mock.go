package featurestates

import (
	"context"

	"github.com/jmoiron/sqlx/types"
	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"alphatron/models"
)

type MockFeatureStatesRepository struct {
	mock.Mock
}

func (m *MockFeatureStatesRepository) GetFeatureStateForUpdate(
	ctx context.Context,
	feature string,
) (mo.Option[*models.FeatureState], error) {
	args := m.Called(ctx, feature)
	return args.Get(0).(mo.Option[*models.FeatureState]), args.Error(1)
}

func (m *MockFeatureStatesRepository) UpsertFeatureState(
	ctx context.Context,
	feature string,
	data types.JSONText,
) (*models.FeatureState, error) {
	args := m.Called(ctx, feature, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeatureState), args.Error(1)
}
