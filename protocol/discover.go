package protocol

import (
	"errors"

	"github.com/datazip-inc/kwanko/types"
	"github.com/spf13/cobra"
)

// discoverCmd prints the catalog of declared streams and saves it at the streams path
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "discover command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		_, err := loadSourceConfig()
		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := connector.Setup(cmd.Context()); err != nil {
			return err
		}

		streams, err := connector.Discover(cmd.Context())
		if err != nil {
			return err
		}

		if len(streams) == 0 {
			return errors.New("no streams found in connector")
		}

		types.LogCatalog(streams)
		return nil
	},
}
