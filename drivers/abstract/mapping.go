package abstract

import "github.com/datazip-inc/kwanko/types"

// MapRow zips declared field names with decoded values by position. When the lengths differ the
// record is truncated to the shorter of the two and truncated is reported.
func MapRow(fields, values []string) (record types.Record, truncated bool) {
	size := min(len(fields), len(values))
	record = make(types.Record, size)
	for idx := 0; idx < size; idx++ {
		record[fields[idx]] = values[idx]
	}

	return record, len(fields) != len(values)
}
