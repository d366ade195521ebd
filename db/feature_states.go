package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/samber/mo"

	dbtx "alphatron/db/tx"
	"alphatron/models"
)

// unsetFeatureData marks a row that only exists so that it can be locked.
const unsetFeatureData = "null"

type PostgresFeatureStatesRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for feature_states table
var featureStatesColumns = []string{
	"feature",
	"data",
	"created_at",
	"updated_at",
}

func NewPostgresFeatureStatesRepository(db *sqlx.DB, schema string) *PostgresFeatureStatesRepository {
	return &PostgresFeatureStatesRepository{db: db, schema: pq.QuoteIdentifier(schema)}
}

// GetFeatureStateForUpdate locks the feature's row until the transaction in
// ctx ends. A missing row is first created with null data so that concurrent
// callers queue on the same lock; such a row reads as None. Outside a
// transaction the lock is released immediately.
func (r *PostgresFeatureStatesRepository) GetFeatureStateForUpdate(
	ctx context.Context,
	feature string,
) (mo.Option[*models.FeatureState], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	seedQuery := fmt.Sprintf(`
		INSERT INTO %s.feature_states (feature, data)
		VALUES ($1, $2)
		ON CONFLICT (feature) DO NOTHING
	`, r.schema)
	if _, err := db.ExecContext(ctx, seedQuery, feature, types.JSONText(unsetFeatureData)); err != nil {
		return mo.None[*models.FeatureState](), fmt.Errorf("failed to seed feature state: %w", err)
	}

	columnsStr := strings.Join(featureStatesColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.feature_states
		WHERE feature = $1
		FOR UPDATE
	`, columnsStr, r.schema)

	var state models.FeatureState
	if err := db.GetContext(ctx, &state, query, feature); err != nil {
		return mo.None[*models.FeatureState](), fmt.Errorf("failed to get feature state: %w", err)
	}

	if strings.TrimSpace(string(state.Data)) == unsetFeatureData {
		return mo.None[*models.FeatureState](), nil
	}

	return mo.Some(&state), nil
}

func (r *PostgresFeatureStatesRepository) UpsertFeatureState(
	ctx context.Context,
	feature string,
	data types.JSONText,
) (*models.FeatureState, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(featureStatesColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.feature_states (feature, data)
		VALUES ($1, $2)
		ON CONFLICT (feature)
		DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = NOW()
		RETURNING %s
	`, r.schema, returningStr)

	var state models.FeatureState
	err := db.QueryRowxContext(ctx, query, feature, data).StructScan(&state)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert feature state: %w", err)
	}

	return &state, nil
}
