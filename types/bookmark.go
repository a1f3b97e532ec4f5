package types

import "fmt"

// CursorFormat describes how a bookmark value is derived from the last fetched row
type CursorFormat string

const (
	// CursorVerbatim stores the field value as returned by the endpoint
	CursorVerbatim CursorFormat = "verbatim"
	// CursorCompactDate turns YYYYMMDD into YYYY-MM-DD
	CursorCompactDate CursorFormat = "compact_date"
	// CursorMonthStart turns YYYYMM or YYYYMMDD into the first day of that month
	CursorMonthStart CursorFormat = "month_start"
	// CursorToday ignores the rows and stores the run date
	CursorToday CursorFormat = "today"
)

func (f CursorFormat) Validate() error {
	switch f {
	case CursorVerbatim, CursorCompactDate, CursorMonthStart, CursorToday:
		return nil
	default:
		return fmt.Errorf("unknown cursor format[%s]", f)
	}
}

// CursorRule tells which bookmark a stream advances and how, for one listing dimension.
// Dimension 0 means the rule applies whatever the active dimension is.
type CursorRule struct {
	Dimension  int          `json:"dimension,omitempty"`
	Bookmark   string       `json:"bookmark"`
	FieldIndex int          `json:"field_index"`
	Format     CursorFormat `json:"format"`
}

// FanOut declares a stream that is fetched once per id found in a parent listing
type FanOut struct {
	ListingDimension int    `json:"listing_dimension"`
	DetailDimension  int    `json:"detail_dimension"`
	FilterParam      string `json:"filter_param"`
	IDField          string `json:"id_field"`
	NameField        string `json:"name_field"`
	IDIndex          int    `json:"id_index"`
	NameIndex        int    `json:"name_index"`
}

// IDName is one distinct entity collected from the parent listing of a fan-out
type IDName struct {
	ID   string
	Name string
}
