package abstract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/datazip-inc/kwanko/utils/typeutils"
	"github.com/hashicorp/go-multierror"
)

type AbstractDriver struct { //nolint:gosec,revive
	driver      DriverInterface
	state       *types.State
	stateWriter StateWriter
	now         func() time.Time
}

// RunSummary reports what a sync did; stream local failures do not fail the run
type RunSummary struct {
	Synced  []string
	Skipped []string
	Failed  *multierror.Error
	Records int64
}

func (s *RunSummary) Err() error {
	return s.Failed.ErrorOrNil()
}

func NewAbstractDriver(_ context.Context, driver DriverInterface) *AbstractDriver {
	return &AbstractDriver{
		driver:      driver,
		state:       types.NewState(types.StreamType),
		stateWriter: NewStateWriter(nil),
		now:         time.Now,
	}
}

func (a *AbstractDriver) SetupState(state *types.State) {
	if state == nil {
		state = types.NewState(types.StreamType)
	}
	a.state = state
}

func (a *AbstractDriver) SetStateWriter(writer StateWriter) {
	a.stateWriter = writer
}

// SetClock replaces the clock "today" is read from
func (a *AbstractDriver) SetClock(now func() time.Time) {
	a.now = now
}

func (a *AbstractDriver) GetConfigRef() Config {
	return a.driver.GetConfigRef()
}

func (a *AbstractDriver) Spec() any {
	return a.driver.Spec()
}

func (a *AbstractDriver) Type() string {
	return a.driver.Type()
}

func (a *AbstractDriver) Setup(ctx context.Context) error {
	return a.driver.Setup(ctx)
}

func (a *AbstractDriver) Check(ctx context.Context) error {
	return a.driver.Check(ctx)
}

func (a *AbstractDriver) Discover(ctx context.Context) ([]*types.Stream, error) {
	streams, err := a.driver.GetStreams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get streams: %s", err)
	}

	for _, stream := range streams {
		if stream.Namespace == "" {
			stream.Namespace = constants.Namespace
		}
		if err := stream.Validate(); err != nil {
			return nil, fmt.Errorf("invalid stream declaration: %s", err)
		}
		stream.BuildSchema()
	}

	return streams, nil
}

// Read syncs the eligible streams one after another, in catalog order. Remote failures are
// stream local: the stream keeps its bookmark and the run moves on. Anything else (writer or
// state persistence failures, cancellation) stops the run.
func (a *AbstractDriver) Read(ctx context.Context, pool *destination.WriterPool, streams []*types.ConfiguredStream) (*RunSummary, error) {
	summary := &RunSummary{}
	cursors := NewCursorStore(a.state, a.driver.FloorDate(), a.stateWriter)
	today := typeutils.NewDate(a.now())

	for _, selection := range a.driver.SelectStreams(streams) {
		stream := selection.Stream
		if !selection.Eligible {
			logger.Infof("Skipping stream[%s]: %s", stream.ID(), selection.Reason)
			summary.Skipped = append(summary.Skipped, stream.ID())
			continue
		}

		records, err := a.syncStream(ctx, pool, cursors, stream, today)
		summary.Records += records
		if err != nil {
			if errors.Is(err, constants.ErrRemote) && ctx.Err() == nil {
				logger.Warnf("Stream[%s] failed, bookmark left untouched: %s", stream.ID(), err)
				summary.Failed = multierror.Append(summary.Failed, fmt.Errorf("stream[%s]: %w", stream.ID(), err))
				continue
			}
			return summary, fmt.Errorf("failed to sync stream[%s]: %s", stream.ID(), err)
		}
		summary.Synced = append(summary.Synced, stream.ID())
	}

	if err := summary.Err(); err != nil {
		logger.Warnf("Sync finished with %d failed stream(s): %s", len(summary.Failed.Errors), err)
	}
	return summary, nil
}
