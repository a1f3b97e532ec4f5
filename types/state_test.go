package types

import (
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState() *State {
	return &State{RWMutex: &sync.RWMutex{}, Type: StreamType, Bookmarks: map[string]string{}}
}

func TestState_IsZeroAndSetBookmark(t *testing.T) {
	s := newState()
	assert.True(t, s.IsZero(), "new state without bookmarks should be zero")

	// empty name should be ignored
	s.SetBookmark("", "2023-01-01")
	assert.True(t, s.IsZero())

	s.SetBookmark("date_sale", "2023-08-15 10:00:00")
	require.False(t, s.IsZero())

	value, found := s.GetBookmark("date_sale")
	require.True(t, found)
	assert.Equal(t, "2023-08-15 10:00:00", value)

	_, found = s.GetBookmark("date_lisann_dim_3")
	assert.False(t, found)
}

func TestState_NilSafe(t *testing.T) {
	var s *State
	assert.True(t, s.IsZero())
	_, found := s.GetBookmark("date_sale")
	assert.False(t, found)

	// zero value initializes lazily
	zero := &State{}
	zero.SetBookmark("date_sale", "2023-01-01")
	value, _ := zero.GetBookmark("date_sale")
	assert.Equal(t, "2023-01-01", value)
}

func TestState_MarshalJSON(t *testing.T) {
	s := newState()
	s.SetBookmark("date_sale", "2023-08-15 10:00:00")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"STREAM","bookmarks":{"date_sale":"2023-08-15 10:00:00"}}`, string(data))
}

func TestState_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
		wantErr  bool
	}{
		{
			name:     "flat bookmarks",
			input:    `{"type":"STREAM","bookmarks":{"date_sale":"2023-08-15 10:00:00","date_lisann_dim_4":"2023-08-01"}}`,
			expected: map[string]string{"date_sale": "2023-08-15 10:00:00", "date_lisann_dim_4": "2023-08-01"},
		},
		{
			name:     "nested bookmarks are flattened",
			input:    `{"bookmarks":{"properties":{"date_lisann_dim_3":"2023-08-15"}}}`,
			expected: map[string]string{"date_lisann_dim_3": "2023-08-15"},
		},
		{
			name:     "null values dropped",
			input:    `{"bookmarks":{"date_sale":null}}`,
			expected: map[string]string{},
		},
		{
			name:     "empty document",
			input:    `{}`,
			expected: map[string]string{},
		},
		{
			name:    "not json",
			input:   `bookmarks`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &State{}
			err := json.Unmarshal([]byte(tc.input), s)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StreamType, s.Type)
			assert.Equal(t, tc.expected, s.Bookmarks)
			assert.NotNil(t, s.RWMutex)
		})
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := newState()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetBookmark("date_sale", "2023-01-01")
			_, _ = s.GetBookmark("date_sale")
			_, _ = json.Marshal(s)
		}()
	}
	wg.Wait()

	value, _ := s.GetBookmark("date_sale")
	assert.Equal(t, "2023-01-01", value)
}
