package abstract

import (
	"context"

	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/typeutils"
)

// RowFn receives decoded rows in endpoint order
type RowFn func(ctx context.Context, row types.Row) error

type Config interface {
	Validate() error
}

// StateBackupConfig is implemented by source configs that mirror state.json to S3
type StateBackupConfig interface {
	StateBackupTarget() *utils.S3ArtifactConfig
}

// Window is the inclusive date range a stream is fetched for
type Window struct {
	Start typeutils.Date
	End   typeutils.Date
}

type DriverInterface interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// specific to test & setup
	Setup(ctx context.Context) error
	Check(ctx context.Context) error
	// specific to discover
	GetStreams(ctx context.Context) ([]*types.Stream, error)
	// specific to sync
	SelectStreams(streams []*types.ConfiguredStream) []types.StreamSelection
	ActiveDimension() int
	FloorDate() typeutils.Date
	StreamIncrementalChanges(ctx context.Context, stream *types.ConfiguredStream, window Window, cb RowFn) error
}
