package protocol

import (
	"fmt"

	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/spf13/cobra"
)

// specCmd prints the json schema of the source config
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		spec := map[string]any{}
		if err := utils.Unmarshal(connector.Spec(), &spec); err != nil {
			return fmt.Errorf("failed to render spec: %s", err)
		}

		logger.LogMessage(types.Message{
			Type: types.SpecMessage,
			Spec: spec,
		})
		return nil
	},
}
