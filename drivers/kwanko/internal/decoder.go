package driver

import (
	"strings"

	"github.com/datazip-inc/kwanko/constants"
)

// DecodeResponse splits a report body into rows. The first line is a status line that must
// contain OK; it also carries the row count, which is not used. Every following non empty line
// is one row of ';' separated values.
func DecodeResponse(body []byte) ([][]string, error) {
	lines := strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n")
	status := strings.TrimSpace(lines[0])
	if status == "" {
		return nil, &RemoteError{Message: "empty response"}
	}

	if !strings.Contains(status, constants.StatusOK) {
		return nil, &RemoteError{Message: status}
	}

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		rows = append(rows, strings.Split(line, constants.FieldDelimiter))
	}
	return rows, nil
}
