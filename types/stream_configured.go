package types

import (
	"fmt"
	"slices"
)

// Input/Processed object for Stream
type ConfiguredStream struct {
	StreamMetadata StreamMetadata `json:"-"`

	Stream *Stream `json:"stream,omitempty"`

	// Field the bookmark of the stream tracks; MUST NOT BE mutated
	CursorField string `json:"cursor_field,omitempty"`
}

func (s *ConfiguredStream) ID() string {
	return s.Stream.ID()
}

func (s *ConfiguredStream) Name() string {
	return s.Stream.Name
}

func (s *ConfiguredStream) Namespace() string {
	return s.Stream.Namespace
}

func (s *ConfiguredStream) GetStream() *Stream {
	return s.Stream
}

func (s *ConfiguredStream) GetSyncMode() SyncMode {
	return s.Stream.SyncMode
}

func (s *ConfiguredStream) Cursor() string {
	return s.CursorField
}

// Validate Configured Stream with Source Stream
func (s *ConfiguredStream) Validate(source *Stream) error {
	if s.Stream.SyncMode != source.SyncMode {
		return fmt.Errorf("invalid sync mode[%s]; stream supports %s", s.Stream.SyncMode, source.SyncMode)
	}

	if len(s.Stream.Fields) == 0 {
		return fmt.Errorf("no fields configured")
	}

	if s.CursorField != "" && !slices.Contains(s.Stream.Fields, s.CursorField) {
		return fmt.Errorf("invalid cursor field [%s]; valid are %v", s.CursorField, s.Stream.Fields)
	}

	return nil
}

// Merge fills what a user edited catalog cannot override from the source declaration
func (s *ConfiguredStream) Merge(source *Stream) {
	s.Stream.Family = source.Family
	s.Stream.Dimensions = source.Dimensions
	s.Stream.Bookmarks = source.Bookmarks
	s.Stream.FanOut = source.FanOut
	if s.Stream.Schema == nil {
		s.Stream.BuildSchema()
	}
}
