package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/drivers/abstract"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/hashicorp/go-multierror"
)

// fanOut lists the distinct ids of the parent dimension for the window, then fetches the daily
// detail of each id in turn and merges id and name into its rows. A failed id is logged and
// skipped; the stream still reports a RemoteError at the end so its bookmark is not advanced.
func (k *Kwanko) fanOut(ctx context.Context, stream *types.ConfiguredStream, window abstract.Window, cb abstract.RowFn) error {
	descriptor := stream.GetStream()
	fan := descriptor.FanOut

	endpoint, query := k.buildQuery(descriptor, window, fan.ListingDimension, nil)
	query.Set("champs", strings.Join([]string{fan.IDField, fan.NameField}, ","))
	listing, err := k.client.Fetch(ctx, endpoint, query)
	if err != nil {
		return fmt.Errorf("failed to list %s ids: %w", fan.FilterParam, err)
	}

	entities := collectEntities(listing, fan)
	logger.Infof("Stream[%s]: fetching detail of %d %s id(s)", stream.ID(), len(entities), fan.FilterParam)

	var failures *multierror.Error
	for _, entity := range entities {
		endpoint, query := k.buildQuery(descriptor, window, fan.DetailDimension, map[string]string{fan.FilterParam: entity.ID})
		rows, err := k.client.Fetch(ctx, endpoint, query)
		if err != nil {
			if ctx.Err() != nil || !errors.Is(err, constants.ErrRemote) {
				return err
			}
			logger.Warnf("Stream[%s]: skipping %s[%s]: %s", stream.ID(), fan.FilterParam, entity.ID, err)
			failures = multierror.Append(failures, fmt.Errorf("%s[%s]: %w", fan.FilterParam, entity.ID, err))
			continue
		}

		extra := types.Record{fan.IDField: entity.ID, fan.NameField: entity.Name}
		for _, values := range rows {
			if err := cb(ctx, types.Row{Values: values, Extra: extra}); err != nil {
				return err
			}
		}
	}

	if failures != nil {
		return &RemoteError{
			Message: fmt.Sprintf("%d of %d %s detail fetch(es) failed", len(failures.Errors), len(entities), fan.FilterParam),
			Err:     failures.ErrorOrNil(),
		}
	}
	return nil
}

// collectEntities returns the distinct (id, name) pairs of a listing in first seen order
func collectEntities(rows [][]string, fan *types.FanOut) []types.IDName {
	seen := types.NewSet[string]()
	entities := []types.IDName{}
	for _, row := range rows {
		if fan.IDIndex >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[fan.IDIndex])
		if id == "" || seen.Exists(id) {
			continue
		}
		seen.Insert(id)

		name := ""
		if fan.NameIndex < len(row) {
			name = row[fan.NameIndex]
		}
		entities = append(entities, types.IDName{ID: id, Name: name})
	}
	return entities
}
