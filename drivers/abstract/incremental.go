package abstract

import (
	"context"
	"fmt"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/datazip-inc/kwanko/utils/typeutils"
)

// syncStream fetches one stream and advances its bookmark once every row has been written
func (a *AbstractDriver) syncStream(ctx context.Context, pool *destination.WriterPool, cursors *CursorStore, stream *types.ConfiguredStream, today typeutils.Date) (int64, error) {
	rule, hasRule := stream.GetStream().CursorRule(a.driver.ActiveDimension())
	window := Window{Start: cursors.Floor(), End: today}

	if hasRule {
		if stream.GetStream().FullTable() {
			// full table streams are listed at most once a day
			if rule.Format == types.CursorToday {
				if listed, found := cursors.Peek(rule.Bookmark); found && listed == today.String() {
					logger.Infof("Stream[%s] already listed on %s, skipping", stream.ID(), today)
					return 0, nil
				}
			}
		} else {
			window.Start = cursors.ResumeFrom(rule.Bookmark)
		}
	}

	logger.Infof("Starting sync for stream[%s] from %s to %s", stream.ID(), window.Start, window.End)

	writer, err := pool.NewWriter(ctx, stream)
	if err != nil {
		return 0, fmt.Errorf("failed to create writer: %s", err)
	}

	var (
		lastRow          []string
		records          int64
		truncationLogged bool
	)
	fields := stream.GetStream().Fields
	streamErr := a.driver.StreamIncrementalChanges(ctx, stream, window, func(ctx context.Context, row types.Row) error {
		record, truncated := MapRow(fields, row.Values)
		if truncated && !truncationLogged {
			logger.Warnf("Stream[%s]: %d declared fields but %d values received, mapping truncated", stream.ID(), len(fields), len(row.Values))
			truncationLogged = true
		}
		for column, value := range row.Extra {
			record[column] = value
		}

		lastRow = row.Values
		records++
		return writer.Push(ctx, types.CreateRawRecord(utils.GetKeysHash(record), record, a.now().UTC()))
	})

	if err := writer.Close(ctx); err != nil {
		return records, fmt.Errorf("failed to close writer: %s", err)
	}
	if streamErr != nil {
		return records, streamErr
	}

	logger.Infof("Stream[%s]: %d record(s) synced", stream.ID(), records)
	if records == 0 || !hasRule {
		return records, nil
	}

	value, err := DeriveCursor(rule, lastRow, today)
	if err != nil {
		return records, fmt.Errorf("%w: failed to derive bookmark[%s]: %s", constants.ErrRemote, rule.Bookmark, err)
	}

	if err := cursors.Set(ctx, rule.Bookmark, value); err != nil {
		return records, err
	}
	logger.Infof("Stream[%s]: bookmark[%s] set to %s", stream.ID(), rule.Bookmark, value)
	return records, nil
}
