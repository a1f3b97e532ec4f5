package types

import (
	"time"
)

// Record is one mapped row, field name to raw string value
type Record map[string]any

// Row is a decoded response line plus the columns merged into it by a fan-out
type Row struct {
	Values []string
	Extra  Record
}

// RawRecord is what destinations receive
type RawRecord struct {
	OlakeID        string    `json:"_olake_id"`
	OlakeTimestamp time.Time `json:"_olake_timestamp"`
	Data           Record    `json:"data"`
}

func CreateRawRecord(olakeID string, data Record, timestamp time.Time) RawRecord {
	return RawRecord{
		OlakeID:        olakeID,
		OlakeTimestamp: timestamp,
		Data:           data,
	}
}
