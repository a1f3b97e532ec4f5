package destination

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
)

type DestinationType string

const (
	STDOUT  DestinationType = "STDOUT"
	PARQUET DestinationType = "PARQUET"
	S3      DestinationType = "S3"
)

type NewFunc func() Writer

// WriterConfig selects a registered destination and carries its raw config
type WriterConfig struct {
	Type         DestinationType `json:"type"`
	WriterConfig any             `json:"writer,omitempty"`
}

// WriterPool hands out one writer per stream and counts what they write
type WriterPool struct {
	recordCount atomic.Int64
	config      any     // respective writer config
	init        NewFunc // To initialize exclusive destination writers
}

var RegisteredWriters = map[DestinationType]NewFunc{}

// Register makes a destination available to --destination configs; called from the writers' init
func Register(typ DestinationType, newFunc NewFunc) {
	RegisteredWriters[DestinationType(strings.ToUpper(string(typ)))] = newFunc
}

// NewWriterPool resolves the destination type and checks it once
func NewWriterPool(ctx context.Context, config *WriterConfig) (*WriterPool, error) {
	if config == nil {
		config = &WriterConfig{Type: STDOUT}
	}

	newfunc, found := RegisteredWriters[DestinationType(strings.ToUpper(string(config.Type)))]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", config.Type)
	}

	adapter := newfunc()
	if err := configure(adapter, config.WriterConfig); err != nil {
		return nil, err
	}

	if err := adapter.Check(ctx); err != nil {
		return nil, fmt.Errorf("failed to test destination: %s", err)
	}

	return &WriterPool{
		config: config.WriterConfig,
		init:   newfunc,
	}, nil
}

func configure(adapter Writer, raw any) error {
	if raw != nil {
		if err := utils.Unmarshal(raw, adapter.GetConfigRef()); err != nil {
			return fmt.Errorf("failed to read %s destination config: %s", adapter.Type(), err)
		}
	}
	if err := adapter.GetConfigRef().Validate(); err != nil {
		return fmt.Errorf("invalid %s destination config: %s", adapter.Type(), err)
	}
	return nil
}

// StreamWriter writes the records of a single stream
type StreamWriter struct {
	pool    *WriterPool
	stream  *types.ConfiguredStream
	writer  Writer
	written int64
}

// NewWriter initializes a destination writer dedicated to stream
func (w *WriterPool) NewWriter(ctx context.Context, stream *types.ConfiguredStream) (*StreamWriter, error) {
	writer := w.init()
	if err := configure(writer, w.config); err != nil {
		return nil, err
	}

	if err := writer.Setup(ctx, stream); err != nil {
		return nil, fmt.Errorf("failed to setup %s writer for stream[%s]: %s", writer.Type(), stream.ID(), err)
	}

	return &StreamWriter{pool: w, stream: stream, writer: writer}, nil
}

func (s *StreamWriter) Push(ctx context.Context, record types.RawRecord) error {
	if err := s.writer.Write(ctx, record); err != nil {
		return fmt.Errorf("failed to write record: %s", err)
	}
	s.written++
	s.pool.recordCount.Add(1)
	return nil
}

func (s *StreamWriter) Close(ctx context.Context) error {
	logger.Debugf("Closing %s writer for stream[%s] after %d record(s)", s.writer.Type(), s.stream.ID(), s.written)
	return s.writer.Close(ctx)
}

// Returns total records written at runtime
func (w *WriterPool) SyncedRecords() int64 {
	return w.recordCount.Load()
}
