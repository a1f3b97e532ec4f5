package types

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

// State holds one bookmark per stream (and dimension), keyed by bookmark name
type State struct {
	*sync.RWMutex `json:"-"`

	Type      StateType         `json:"type"`
	Bookmarks map[string]string `json:"bookmarks"`
}

func NewState(typ StateType) *State {
	return &State{
		RWMutex:   &sync.RWMutex{},
		Type:      typ,
		Bookmarks: make(map[string]string),
	}
}

func (s *State) init() {
	if s.RWMutex == nil {
		s.RWMutex = &sync.RWMutex{}
	}
	if s.Bookmarks == nil {
		s.Bookmarks = make(map[string]string)
	}
}

func (s *State) IsZero() bool {
	if s == nil {
		return true
	}
	s.init()
	s.RLock()
	defer s.RUnlock()

	return len(s.Bookmarks) == 0
}

func (s *State) GetBookmark(name string) (string, bool) {
	if s == nil || name == "" {
		return "", false
	}
	s.init()
	s.RLock()
	defer s.RUnlock()

	value, found := s.Bookmarks[name]
	return value, found
}

func (s *State) SetBookmark(name, value string) {
	if name == "" {
		return
	}
	s.init()
	s.Lock()
	defer s.Unlock()

	s.Bookmarks[name] = value
}

func (s *State) MarshalJSON() ([]byte, error) {
	if s.RWMutex != nil {
		s.RLock()
		defer s.RUnlock()
	}

	type Alias State
	return json.Marshal(&struct {
		*Alias
		Type StateType `json:"type"`
	}{
		Alias: (*Alias)(s),
		Type:  StreamType,
	})
}

// UnmarshalJSON accepts the flat bookmark map as well as bookmarks nested one level deep
// (e.g. {"bookmarks":{"properties":{"date_sale":"..."}}}), which are flattened.
func (s *State) UnmarshalJSON(data []byte) error {
	aux := struct {
		Type      StateType                  `json:"type"`
		Bookmarks map[string]json.RawMessage `json:"bookmarks"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to parse state: %s", err)
	}

	s.RWMutex = &sync.RWMutex{}
	s.Type = aux.Type
	if s.Type == "" {
		s.Type = StreamType
	}
	s.Bookmarks = make(map[string]string)

	for key, raw := range aux.Bookmarks {
		var value string
		if err := json.Unmarshal(raw, &value); err == nil {
			s.Bookmarks[key] = value
			continue
		}

		var nested map[string]any
		if err := json.Unmarshal(raw, &nested); err == nil {
			for nestedKey, nestedValue := range nested {
				if nestedValue != nil {
					s.Bookmarks[nestedKey] = fmt.Sprint(nestedValue)
				}
			}
			continue
		}

		// numbers and other scalars are kept in their textual form, null is dropped
		if string(raw) != "null" {
			s.Bookmarks[key] = string(raw)
		}
	}

	return nil
}
