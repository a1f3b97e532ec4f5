package types

import (
	"fmt"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/google/jsonschema-go/jsonschema"
)

type SyncMode string

const (
	FULLREFRESH SyncMode = "full_refresh"
	INCREMENTAL SyncMode = "incremental"
)

// ReportFamily groups streams by the endpoint serving them
type ReportFamily string

const (
	SalesFamily   ReportFamily = "sales"
	ListingFamily ReportFamily = "listing"
)

// Stream describes one report exposed by the source
type Stream struct {
	Name      string       `json:"name"`
	Namespace string       `json:"namespace,omitempty"`
	Family    ReportFamily `json:"family"`
	// listing dimensions the stream is served under; empty for sales
	Dimensions *Set[int] `json:"dimensions,omitempty"`
	// ordered field names, records are mapped positionally onto them
	Fields      []string           `json:"fields"`
	Schema      *jsonschema.Schema `json:"json_schema,omitempty"`
	CursorField string             `json:"cursor_field,omitempty"`
	SyncMode    SyncMode           `json:"sync_mode"`
	Bookmarks   []CursorRule       `json:"bookmarks,omitempty"`
	FanOut      *FanOut            `json:"fan_out,omitempty"`
}

func NewStream(name, namespace string, family ReportFamily, fields ...string) *Stream {
	return &Stream{
		Name:       name,
		Namespace:  namespace,
		Family:     family,
		Dimensions: NewSet[int](),
		Fields:     fields,
		SyncMode:   INCREMENTAL,
	}
}

func (s *Stream) ID() string {
	return fmt.Sprintf("%s.%s", s.Namespace, s.Name)
}

func (s *Stream) WithDimensions(dims ...int) *Stream {
	if s.Dimensions == nil {
		s.Dimensions = NewSet[int]()
	}
	s.Dimensions.Insert(dims...)
	return s
}

func (s *Stream) WithBookmarks(rules ...CursorRule) *Stream {
	s.Bookmarks = append(s.Bookmarks, rules...)
	return s
}

// FullTable reports whether the stream is re-listed entirely on each run
func (s *Stream) FullTable() bool {
	return s.SyncMode == FULLREFRESH
}

// CursorRule returns the rule for the active dimension, falling back to the dimension independent rule
func (s *Stream) CursorRule(dim int) (CursorRule, bool) {
	fallback := -1
	for idx, rule := range s.Bookmarks {
		if rule.Dimension == dim && dim != 0 {
			return rule, true
		}
		if rule.Dimension == 0 && fallback < 0 {
			fallback = idx
		}
	}
	if fallback < 0 {
		return CursorRule{}, false
	}
	return s.Bookmarks[fallback], true
}

// Columns are the fields of a record produced by the stream, including fan-out columns
func (s *Stream) Columns() []string {
	columns := make([]string, 0, len(s.Fields)+2)
	if s.FanOut != nil {
		columns = append(columns, s.FanOut.IDField, s.FanOut.NameField)
	}
	for _, field := range s.Fields {
		if s.FanOut != nil && (field == s.FanOut.IDField || field == s.FanOut.NameField) {
			continue
		}
		columns = append(columns, field)
	}
	return columns
}

// BuildSchema fills the json schema from the declared fields. All values are nullable strings.
func (s *Stream) BuildSchema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema)
	for _, column := range s.Columns() {
		properties[column] = &jsonschema.Schema{Types: []string{"null", "string"}}
	}
	properties[constants.OlakeID] = &jsonschema.Schema{Type: "string"}
	properties[constants.OlakeTimestamp] = &jsonschema.Schema{Type: "integer"}

	s.Schema = &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
	}
	return s.Schema
}

// Validate checks the declaration is usable by the orchestrator
func (s *Stream) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("stream name is empty")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("stream[%s] declares no fields", s.Name)
	}
	switch s.Family {
	case SalesFamily, ListingFamily:
	default:
		return fmt.Errorf("stream[%s] has unknown family[%s]", s.Name, s.Family)
	}
	for _, rule := range s.Bookmarks {
		if err := rule.Format.Validate(); err != nil {
			return fmt.Errorf("stream[%s]: %s", s.Name, err)
		}
		if rule.Bookmark == "" {
			return fmt.Errorf("stream[%s] has a cursor rule without bookmark", s.Name)
		}
		if rule.Format != CursorToday && (rule.FieldIndex < 0 || rule.FieldIndex >= len(s.Fields)) {
			return fmt.Errorf("stream[%s] cursor field index %d out of range", s.Name, rule.FieldIndex)
		}
	}
	return nil
}

// Wrap returns a configured stream selected with the stream defaults
func (s *Stream) Wrap() *ConfiguredStream {
	return &ConfiguredStream{
		Stream:      s,
		CursorField: s.CursorField,
	}
}

func StreamsToMap(streams ...*Stream) map[string]*Stream {
	output := make(map[string]*Stream)
	for _, stream := range streams {
		output[stream.ID()] = stream
	}

	return output
}
