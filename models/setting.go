package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

const DefaultSettingsDocumentID = "qvnmilHDWWmnfuZBK7xt"

// Settings is the decoded settings document shared by every request.
type Settings struct {
	DocumentID string    `json:"-"`
	Token      string    `json:"token"`
	UpdatedAt  time.Time `json:"-"`
}

// SettingsDocument is a row of the settings_documents table.
type SettingsDocument struct {
	ID        string         `json:"id"         db:"id"`
	Data      types.JSONText `json:"data"       db:"data"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
