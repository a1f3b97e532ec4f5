package types

import (
	"testing"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyStream() *Stream {
	return NewStream("stats_lisann_dim_3_4", "kwanko", ListingFamily, "date", "affichages", "clics").
		WithDimensions(3, 4).
		WithBookmarks(
			CursorRule{Dimension: 3, Bookmark: "date_lisann_dim_3", FieldIndex: 0, Format: CursorCompactDate},
			CursorRule{Dimension: 4, Bookmark: "date_lisann_dim_4", FieldIndex: 0, Format: CursorMonthStart},
		)
}

func TestStream_NewStream(t *testing.T) {
	stream := NewStream("sale", "kwanko", SalesFamily, "idcamp", "nomcamp")

	assert.Equal(t, "sale", stream.Name)
	assert.Equal(t, "kwanko.sale", stream.ID())
	assert.Equal(t, INCREMENTAL, stream.SyncMode)
	assert.NotNil(t, stream.Dimensions, "Dimensions should be initialized")
	assert.Equal(t, 0, stream.Dimensions.Len())
	assert.False(t, stream.FullTable())
}

func TestStream_CursorRule(t *testing.T) {
	tests := []struct {
		name     string
		stream   *Stream
		dim      int
		found    bool
		bookmark string
	}{
		{name: "day rule", stream: dailyStream(), dim: 3, found: true, bookmark: "date_lisann_dim_3"},
		{name: "month rule", stream: dailyStream(), dim: 4, found: true, bookmark: "date_lisann_dim_4"},
		{name: "no rule for dimension", stream: dailyStream(), dim: 1, found: false},
		{
			name: "dimension independent rule",
			stream: NewStream("sale", "kwanko", SalesFamily, "date").
				WithBookmarks(CursorRule{Bookmark: "date_sale", FieldIndex: 0, Format: CursorVerbatim}),
			dim:      2,
			found:    true,
			bookmark: "date_sale",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, found := tc.stream.CursorRule(tc.dim)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.bookmark, rule.Bookmark)
		})
	}
}

func TestStream_Columns(t *testing.T) {
	stream := NewStream("stats_by_campaign", "kwanko", ListingFamily, "date", "clics")
	assert.Equal(t, []string{"date", "clics"}, stream.Columns())

	stream.FanOut = &FanOut{IDField: "idcamp", NameField: "nomcamp"}
	assert.Equal(t, []string{"idcamp", "nomcamp", "date", "clics"}, stream.Columns())
}

func TestStream_BuildSchema(t *testing.T) {
	stream := NewStream("stats_by_site", "kwanko", ListingFamily, "date", "clics")
	stream.FanOut = &FanOut{IDField: "idsite", NameField: "nomsite"}

	schema := stream.BuildSchema()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)
	for _, column := range []string{"idsite", "nomsite", "date", "clics", constants.OlakeID, constants.OlakeTimestamp} {
		assert.Contains(t, schema.Properties, column)
	}
	assert.Equal(t, []string{"null", "string"}, schema.Properties["date"].Types)

	data, err := json.Marshal(stream)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"json_schema"`)
}

func TestStream_Validate(t *testing.T) {
	tests := []struct {
		name    string
		stream  *Stream
		wantErr bool
	}{
		{name: "valid", stream: dailyStream()},
		{name: "no fields", stream: NewStream("x", "kwanko", ListingFamily), wantErr: true},
		{name: "unknown family", stream: NewStream("x", "kwanko", "other", "a"), wantErr: true},
		{
			name: "field index out of range",
			stream: NewStream("x", "kwanko", SalesFamily, "a").
				WithBookmarks(CursorRule{Bookmark: "date_x", FieldIndex: 3, Format: CursorVerbatim}),
			wantErr: true,
		},
		{
			name: "today rule ignores field index",
			stream: NewStream("x", "kwanko", ListingFamily, "a").
				WithBookmarks(CursorRule{Bookmark: "date_x", FieldIndex: 9, Format: CursorToday}),
		},
		{
			name: "unknown format",
			stream: NewStream("x", "kwanko", SalesFamily, "a").
				WithBookmarks(CursorRule{Bookmark: "date_x", Format: "weekly"}),
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.stream.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSet_OrderAndJSON(t *testing.T) {
	set := NewSet(4, 3, 4, 1)
	assert.Equal(t, []int{4, 3, 1}, set.Array())
	assert.True(t, set.Exists(3))
	assert.False(t, set.Exists(2))

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t, "[4,3,1]", string(data))

	decoded := &Set[int]{}
	require.NoError(t, json.Unmarshal([]byte("[3,4,3]"), decoded))
	assert.Equal(t, []int{3, 4}, decoded.Array())

	var nilSet *Set[int]
	assert.False(t, nilSet.Exists(1))
	assert.Equal(t, 0, nilSet.Len())
}
