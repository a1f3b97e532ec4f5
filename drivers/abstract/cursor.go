package abstract

import (
	"context"
	"fmt"

	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/datazip-inc/kwanko/utils/typeutils"
	"github.com/goccy/go-json"
)

const stateArtifactName = "state.json"

// StateWriter persists the whole state after every bookmark update
type StateWriter interface {
	WriteState(ctx context.Context, state *types.State) error
}

type loggerStateWriter struct {
	persister *utils.ArtifactPersister
}

// NewStateWriter writes state.json at the configured state path and, with a persister,
// mirrors it to object storage
func NewStateWriter(persister *utils.ArtifactPersister) StateWriter {
	return &loggerStateWriter{persister: persister}
}

func (w *loggerStateWriter) WriteState(ctx context.Context, state *types.State) error {
	if err := logger.LogState(state); err != nil {
		return err
	}
	if w.persister == nil {
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %s", err)
	}
	return w.persister.Upload(ctx, stateArtifactName, data)
}

// CursorStore reads and advances per stream bookmarks. Reads never fail: a missing or unreadable
// bookmark resolves to the floor date.
type CursorStore struct {
	state  *types.State
	floor  typeutils.Date
	writer StateWriter
}

func NewCursorStore(state *types.State, floor typeutils.Date, writer StateWriter) *CursorStore {
	if state == nil {
		state = types.NewState(types.StreamType)
	}
	return &CursorStore{
		state:  state,
		floor:  floor,
		writer: writer,
	}
}

func (c *CursorStore) Floor() typeutils.Date {
	return c.floor
}

// Peek returns the stored bookmark as is
func (c *CursorStore) Peek(bookmark string) (string, bool) {
	return c.state.GetBookmark(bookmark)
}

// Get returns the stored bookmark, or the floor when it is absent, empty or not date prefixed
func (c *CursorStore) Get(bookmark string) string {
	value, found := c.state.GetBookmark(bookmark)
	if !found || value == "" {
		return c.floor.String()
	}

	if _, err := typeutils.ParseDatePrefix(value); err != nil {
		logger.Debugf("ignoring malformed bookmark[%s]: %s", bookmark, err)
		return c.floor.String()
	}
	return value
}

// ResumeFrom returns the start date of the next fetch: the date part of the bookmark,
// never earlier than the floor
func (c *CursorStore) ResumeFrom(bookmark string) typeutils.Date {
	cursor, err := typeutils.ParseDatePrefix(c.Get(bookmark))
	if err != nil {
		return c.floor
	}
	return typeutils.MaxDate(cursor, c.floor)
}

// Set overwrites the bookmark and persists the state before returning
func (c *CursorStore) Set(ctx context.Context, bookmark, value string) error {
	c.state.SetBookmark(bookmark, value)
	if c.writer == nil {
		return nil
	}

	if err := c.writer.WriteState(ctx, c.state); err != nil {
		return fmt.Errorf("failed to persist bookmark[%s]: %s", bookmark, err)
	}
	return nil
}

// DeriveCursor computes the new bookmark value from the last fetched row
func DeriveCursor(rule types.CursorRule, lastRow []string, today typeutils.Date) (string, error) {
	if rule.Format == types.CursorToday {
		return today.String(), nil
	}

	if rule.FieldIndex < 0 || rule.FieldIndex >= len(lastRow) {
		return "", fmt.Errorf("cursor field index %d missing from row of %d values", rule.FieldIndex, len(lastRow))
	}
	value := lastRow[rule.FieldIndex]

	switch rule.Format {
	case types.CursorVerbatim:
		return value, nil
	case types.CursorCompactDate:
		date, err := typeutils.CompactToDate(value)
		return date.String(), err
	case types.CursorMonthStart:
		date, err := typeutils.MonthStart(value)
		return date.String(), err
	default:
		return "", fmt.Errorf("unknown cursor format[%s]", rule.Format)
	}
}
