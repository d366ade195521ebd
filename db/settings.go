package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/samber/mo"

	dbtx "alphatron/db/tx"
	"alphatron/models"
)

// SettingsChangedChannel is the NOTIFY channel; the payload is the document id.
const SettingsChangedChannel = "settings_changed"

type PostgresSettingsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for settings_documents table
var settingsDocumentColumns = []string{
	"id",
	"data",
	"created_at",
	"updated_at",
}

func NewPostgresSettingsRepository(db *sqlx.DB, schema string) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db, schema: pq.QuoteIdentifier(schema)}
}

func (r *PostgresSettingsRepository) GetSettingsDocument(
	ctx context.Context,
	id string,
) (mo.Option[*models.SettingsDocument], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(settingsDocumentColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.settings_documents
		WHERE id = $1
	`, columnsStr, r.schema)

	var doc models.SettingsDocument
	err := db.GetContext(ctx, &doc, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*models.SettingsDocument](), nil
		}
		return mo.None[*models.SettingsDocument](), fmt.Errorf("failed to get settings document: %w", err)
	}

	return mo.Some(&doc), nil
}

func (r *PostgresSettingsRepository) UpsertSettingsDocument(
	ctx context.Context,
	id string,
	data types.JSONText,
) (*models.SettingsDocument, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(settingsDocumentColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.settings_documents (id, data)
		VALUES ($1, $2)
		ON CONFLICT (id)
		DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = NOW()
		RETURNING %s
	`, r.schema, returningStr)

	var doc models.SettingsDocument
	err := db.QueryRowxContext(ctx, query, id, data).StructScan(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert settings document: %w", err)
	}

	return &doc, nil
}

// NotifySettingsChanged tells every listening process to reload the document.
func (r *PostgresSettingsRepository) NotifySettingsChanged(ctx context.Context, id string) error {
	db := dbtx.GetTransactional(ctx, r.db)

	if _, err := db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, SettingsChangedChannel, id); err != nil {
		return fmt.Errorf("failed to notify settings change: %w", err)
	}

	return nil
}
