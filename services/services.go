package services

import (
	"context"

	"alphatron/models"
)

// SettingsService exposes the cached settings document
type SettingsService interface {
	Current() *models.Settings
}

// FeatureStatesService stores the JSON documents features keep between events
type FeatureStatesService interface {
	// GetDocumentForUpdate decodes the feature's document into dest and reports
	// whether one existed. The row stays locked until the surrounding transaction ends.
	GetDocumentForUpdate(ctx context.Context, feature string, dest any) (bool, error)
	SaveDocument(ctx context.Context, feature string, src any) error
}

// TransactionManager runs a function inside a database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}

// TaskSubmitter queues work to run asynchronously, e.g. a *workerpool.WorkerPool
type TaskSubmitter interface {
	Submit(task func())
}
