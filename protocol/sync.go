package protocol

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/drivers/abstract"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/spf13/cobra"
)

// syncCmd fetches the selected streams and advances their bookmarks
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Kwanko sync command",
	Long:  `Sync command fetches every selected stream from the reporting API, writes the records to the destination and advances the bookmarks`,
	Example: `
// Base command:
kwanko sync --config path/to/config

// With catalog, destination and state:
kwanko sync --config path/to/config --catalog path/to/streams.json --destination path/to/destination.json --state path/to/state.json
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		sourceConfig, err := loadSourceConfig()
		if err != nil {
			return err
		}
		syncSourceConfig = sourceConfig

		if destinationConfigPath != "not-set" {
			destinationConfig = &destination.WriterConfig{}
			if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
				return err
			}
		}

		if streamsPath != "" {
			if _, err := os.Stat(streamsPath); err == nil {
				catalog = &types.Catalog{}
				if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
					return err
				}
			} else {
				logger.Warnf("Catalog[%s] not found, syncing the discovered streams", streamsPath)
			}
		}

		state, err = loadState()
		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		syncID := strings.ToLower(utils.ULID())
		startTime := time.Now()
		logger.Infof("Starting sync[%s]", syncID)

		if err := connector.Setup(cmd.Context()); err != nil {
			return err
		}

		streams, err := connector.Discover(cmd.Context())
		if err != nil {
			return err
		}
		if catalog == nil {
			catalog = types.GetWrappedCatalog(streams)
		}

		selected, err := types.IdentifySelectedStreams(catalog, streams)
		if err != nil {
			return err
		}

		pool, err := destination.NewWriterPool(cmd.Context(), destinationConfig)
		if err != nil {
			return err
		}

		writer, err := newStateWriter(syncSourceConfig)
		if err != nil {
			return err
		}
		connector.SetupState(state)
		connector.SetStateWriter(writer)

		summary, err := connector.Read(cmd.Context(), pool, selected)
		if err != nil {
			return fmt.Errorf("sync[%s] stopped: %s", syncID, err)
		}

		logger.Infof("Sync[%s] finished in %s: %d record(s), synced[%s], skipped[%s]", syncID, time.Since(startTime).Round(time.Millisecond),
			pool.SyncedRecords(), strings.Join(summary.Synced, ", "), strings.Join(summary.Skipped, ", "))
		if failed := summary.Err(); failed != nil {
			logger.Warnf("Sync[%s] streams left at their previous bookmark: %s", syncID, failed)
		}
		return nil
	},
}

// newStateWriter mirrors state.json to S3 when the source config carries a state_backup target
func newStateWriter(sourceConfig abstract.Config) (abstract.StateWriter, error) {
	backup, ok := sourceConfig.(abstract.StateBackupConfig)
	if !ok || backup.StateBackupTarget() == nil {
		return abstract.NewStateWriter(nil), nil
	}

	persister, err := utils.NewArtifactPersister(*backup.StateBackupTarget())
	if err != nil {
		return nil, fmt.Errorf("failed to set up state backup: %s", err)
	}
	logger.Infof("Mirroring state to %s", persister.Key("state.json"))
	return abstract.NewStateWriter(persister), nil
}
