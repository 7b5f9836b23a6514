package store

import "github.com/yourorg/specgen/pkg/types"

// Store persists the outcome of generation runs for the history and
// preview commands.
type Store interface {
	SaveRun(run *types.RunRecord) error
	GetRun(id string) (*types.RunRecord, error)
	ListRuns(limit int) ([]types.RunRecord, error)
	ClearRuns() error

	Close() error
}
