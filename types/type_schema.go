package types

import (
	"github.com/datazip-inc/kwanko/constants"
	"github.com/parquet-go/parquet-go"
)

// ToParquet returns the parquet schema of the stream records: every column is an optional string
// next to the olake id and the emission timestamp in unix microseconds.
func (s *Stream) ToParquet() *parquet.Schema {
	groupNode := parquet.Group{
		constants.OlakeID:        parquet.String(),
		constants.OlakeTimestamp: parquet.Int(64),
	}
	for _, column := range s.Columns() {
		groupNode[column] = parquet.Optional(parquet.String())
	}

	return parquet.NewSchema("olake_schema", groupNode)
}
