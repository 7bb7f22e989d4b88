// Package store persists completed candidate profiles. Two backends are
// provided: a JSON file for local single-host use and Postgres for shared
// deployments.
package store

import (
	"context"

	"github.com/talentscout/hiring-assistant/internal/candidate"
)

type Store interface {
	// Save validates and persists one profile. Duplicate submissions for
	// the same session are appended, not deduplicated.
	Save(ctx context.Context, p *candidate.Profile) error

	// LoadAll returns every stored record, oldest first.
	LoadAll(ctx context.Context) ([]candidate.Record, error)
}
