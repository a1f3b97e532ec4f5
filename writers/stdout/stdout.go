package stdout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/types"
	"github.com/goccy/go-json"
)

var (
	// Output receives the RECORD lines
	Output io.Writer = os.Stdout
	// serializes lines of writers sharing Output
	outputMutex sync.Mutex
)

type Config struct {
	// Pretty indents every message over several lines
	Pretty bool `json:"pretty,omitempty"`
}

func (c *Config) Validate() error {
	return nil
}

// Stdout emits every record as a RECORD message, one json document per line
type Stdout struct {
	config *Config
	stream *types.ConfiguredStream
	buffer *bufio.Writer
}

func (s *Stdout) GetConfigRef() destination.Config {
	s.config = &Config{}
	return s.config
}

func (s *Stdout) Type() string {
	return string(destination.STDOUT)
}

func (s *Stdout) Check(_ context.Context) error {
	return nil
}

func (s *Stdout) Setup(_ context.Context, stream *types.ConfiguredStream) error {
	s.stream = stream
	s.buffer = bufio.NewWriter(Output)
	return nil
}

func (s *Stdout) Write(_ context.Context, record types.RawRecord) error {
	data := make(types.Record, len(record.Data)+2)
	for key, value := range record.Data {
		data[key] = value
	}
	data[constants.OlakeID] = record.OlakeID
	data[constants.OlakeTimestamp] = record.OlakeTimestamp.UnixMicro()

	message := types.Message{
		Type: types.RecordMessage,
		Record: &types.RecordRow{
			Namespace: s.stream.Namespace(),
			Stream:    s.stream.Name(),
			Data:      data,
			EmittedAt: record.OlakeTimestamp.UnixMilli(),
		},
	}

	var (
		line []byte
		err  error
	)
	if s.config != nil && s.config.Pretty {
		line, err = json.MarshalIndent(message, "", "  ")
	} else {
		line, err = json.Marshal(message)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal record: %s", err)
	}

	outputMutex.Lock()
	defer outputMutex.Unlock()
	if _, err := s.buffer.Write(append(line, '\n')); err != nil {
		return err
	}
	return s.buffer.Flush()
}

func (s *Stdout) Close(_ context.Context) error {
	if s.buffer == nil {
		return nil
	}
	outputMutex.Lock()
	defer outputMutex.Unlock()
	return s.buffer.Flush()
}

func init() {
	destination.Register(destination.STDOUT, func() destination.Writer {
		return new(Stdout)
	})
}
