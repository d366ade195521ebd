package featurestates

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx/types"
	"github.com/samber/mo"

	"alphatron/models"
)

type FeatureStatesRepository interface {
	GetFeatureStateForUpdate(ctx context.Context, feature string) (mo.Option[*models.FeatureState], error)
	UpsertFeatureState(ctx context.Context, feature string, data types.JSONText) (*models.FeatureState, error)
}

type FeatureStatesService struct {
	repo FeatureStatesRepository
}

func NewFeatureStatesService(repo FeatureStatesRepository) *FeatureStatesService {
	return &FeatureStatesService{repo: repo}
}

func (s *FeatureStatesService) GetDocumentForUpdate(ctx context.Context, feature string, dest any) (bool, error) {
	log.Printf("📋 Starting to get feature state for update: %s", feature)
	maybeState, err := s.repo.GetFeatureStateForUpdate(ctx, feature)
	if err != nil {
		return false, fmt.Errorf("failed to get feature state for update: %w", err)
	}

	return s.decode(feature, maybeState, dest)
}

func (s *FeatureStatesService) SaveDocument(ctx context.Context, feature string, src any) error {
	log.Printf("📋 Starting to save feature state: %s", feature)
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode feature state: %w", err)
	}

	if _, err := s.repo.UpsertFeatureState(ctx, feature, types.JSONText(data)); err != nil {
		return fmt.Errorf("failed to save feature state: %w", err)
	}

	log.Printf("📋 Completed successfully - saved feature state: %s", feature)
	return nil
}

func (s *FeatureStatesService) decode(feature string, maybeState mo.Option[*models.FeatureState], dest any) (bool, error) {
	if !maybeState.IsPresent() {
		log.Printf("📋 Completed successfully - feature state not found: %s", feature)
		return false, nil
	}

	state := maybeState.MustGet()
	if err := json.Unmarshal(state.Data, dest); err != nil {
		return false, fmt.Errorf("failed to decode feature state %s: %w", feature, err)
	}

	log.Printf("📋 Completed successfully - retrieved feature state: %s", feature)
	return true, nil
}
