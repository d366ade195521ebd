package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// FeatureState is the persisted JSON document owned by a single feature.
type FeatureState struct {
	Feature   string         `json:"feature"    db:"feature"`
	Data      types.JSONText `json:"data"       db:"data"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
