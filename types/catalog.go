package types

import (
	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/spf13/viper"
)

// Message is a dto for olake output row representation
type Message struct {
	Type             MessageType    `json:"type"`
	Log              *Log           `json:"log,omitempty"`
	ConnectionStatus *StatusRow     `json:"connectionStatus,omitempty"`
	State            *State         `json:"state,omitempty"`
	Catalog          *Catalog       `json:"catalog,omitempty"`
	Record           *RecordRow     `json:"record,omitempty"`
	Spec             map[string]any `json:"spec,omitempty"`
}

// Log is a dto for logs serialization
type Log struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusRow is a dto for connection check result serialization
type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// RecordRow is a dto for a single emitted record
type RecordRow struct {
	Namespace string `json:"namespace,omitempty"`
	Stream    string `json:"stream"`
	Data      Record `json:"data"`
	EmittedAt int64  `json:"emitted_at"`
}

// StreamMetadata marks a stream as selected in a user edited catalog
type StreamMetadata struct {
	StreamName string `json:"stream_name"`
}

// Catalog is a dto for formatted catalog serialization
type Catalog struct {
	SelectedStreams map[string][]StreamMetadata `json:"selected_streams,omitempty"`
	Streams         []*ConfiguredStream         `json:"streams,omitempty"`
}

func GetWrappedCatalog(streams []*Stream) *Catalog {
	catalog := &Catalog{
		Streams:         []*ConfiguredStream{},
		SelectedStreams: make(map[string][]StreamMetadata),
	}

	for _, stream := range streams {
		catalog.Streams = append(catalog.Streams, stream.Wrap())
		catalog.SelectedStreams[stream.Namespace] = append(catalog.SelectedStreams[stream.Namespace], StreamMetadata{
			StreamName: stream.Name,
		})
	}

	return catalog
}

// LogCatalog emits the CATALOG message and saves it at STREAMS_PATH
func LogCatalog(streams []*Stream) {
	message := Message{
		Type:    CatalogMessage,
		Catalog: GetWrappedCatalog(streams),
	}
	logger.LogMessage(message)

	if path := viper.GetString(constants.StreamsPath); path != "" {
		if err := logger.FileLoggerWithPath(message.Catalog, path); err != nil {
			logger.Fatalf("failed to create streams file: %s", err)
		}
	}
}
