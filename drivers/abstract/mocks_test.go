package abstract

import (
	"context"
	"fmt"
	"sync"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils/typeutils"
)

const memoryDestination destination.DestinationType = "MEMORY"

var (
	memoryMutex   sync.Mutex
	memoryRecords = map[string][]types.RawRecord{}
)

func init() {
	destination.Register(memoryDestination, func() destination.Writer {
		return &MemoryWriter{}
	})
}

func resetMemory() {
	memoryMutex.Lock()
	defer memoryMutex.Unlock()
	memoryRecords = map[string][]types.RawRecord{}
}

func writtenRecords(streamID string) []types.RawRecord {
	memoryMutex.Lock()
	defer memoryMutex.Unlock()
	return memoryRecords[streamID]
}

type MemoryConfig struct{}

func (c *MemoryConfig) Validate() error {
	return nil
}

// MemoryWriter keeps records in memory per stream
type MemoryWriter struct {
	config *MemoryConfig
	stream *types.ConfiguredStream
}

func (w *MemoryWriter) GetConfigRef() destination.Config {
	w.config = &MemoryConfig{}
	return w.config
}

func (w *MemoryWriter) Type() string {
	return string(memoryDestination)
}

func (w *MemoryWriter) Check(_ context.Context) error {
	return nil
}

func (w *MemoryWriter) Setup(_ context.Context, stream *types.ConfiguredStream) error {
	w.stream = stream
	return nil
}

func (w *MemoryWriter) Write(_ context.Context, record types.RawRecord) error {
	memoryMutex.Lock()
	defer memoryMutex.Unlock()
	memoryRecords[w.stream.ID()] = append(memoryRecords[w.stream.ID()], record)
	return nil
}

func (w *MemoryWriter) Close(_ context.Context) error {
	return nil
}

type MockConfig struct{}

func (c *MockConfig) Validate() error {
	return nil
}

// MockDriver serves canned rows per stream name and records the windows it was asked for
type MockDriver struct {
	streams   []*types.Stream
	rows      map[string][][]string
	failures  map[string]error
	dimension int
	floor     typeutils.Date
	windows   map[string]Window
}

func newMockDriver(floor typeutils.Date, streams ...*types.Stream) *MockDriver {
	return &MockDriver{
		streams:  streams,
		rows:     map[string][][]string{},
		failures: map[string]error{},
		floor:    floor,
		windows:  map[string]Window{},
	}
}

func (m *MockDriver) GetConfigRef() Config {
	return &MockConfig{}
}

func (m *MockDriver) Spec() any {
	return map[string]any{}
}

func (m *MockDriver) Type() string {
	return "mock"
}

func (m *MockDriver) Setup(_ context.Context) error {
	return nil
}

func (m *MockDriver) Check(_ context.Context) error {
	return nil
}

func (m *MockDriver) GetStreams(_ context.Context) ([]*types.Stream, error) {
	return m.streams, nil
}

// SelectStreams keeps the streams without dimensions and those listed for the mock dimension
func (m *MockDriver) SelectStreams(streams []*types.ConfiguredStream) []types.StreamSelection {
	selections := make([]types.StreamSelection, 0, len(streams))
	for _, stream := range streams {
		dims := stream.GetStream().Dimensions
		eligible := dims.Len() == 0 || dims.Exists(m.dimension)
		selections = append(selections, types.StreamSelection{
			Stream:   stream,
			Eligible: eligible,
			Reason:   fmt.Sprintf("not listed for dimension %d", m.dimension),
		})
	}
	return selections
}

func (m *MockDriver) ActiveDimension() int {
	return m.dimension
}

func (m *MockDriver) FloorDate() typeutils.Date {
	return m.floor
}

func (m *MockDriver) StreamIncrementalChanges(ctx context.Context, stream *types.ConfiguredStream, window Window, cb RowFn) error {
	m.windows[stream.Name()] = window
	for _, values := range m.rows[stream.Name()] {
		if err := cb(ctx, types.Row{Values: values}); err != nil {
			return err
		}
	}
	return m.failures[stream.Name()]
}

// remoteFailure is matched by errors.Is(err, constants.ErrRemote)
func remoteFailure(message string) error {
	return fmt.Errorf("%w: %s", constants.ErrRemote, message)
}

// recordingStateWriter keeps a copy of every state it was asked to persist
type recordingStateWriter struct {
	writes []map[string]string
	err    error
}

func (w *recordingStateWriter) WriteState(_ context.Context, state *types.State) error {
	if w.err != nil {
		return w.err
	}
	snapshot := map[string]string{}
	for name, value := range state.Bookmarks {
		snapshot[name] = value
	}
	w.writes = append(w.writes, snapshot)
	return nil
}
