package protocol

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/drivers/abstract"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath            string
	destinationConfigPath string
	statePath             string
	streamsPath           string
	noSave                bool
	encryptionKey         string
	timeout               int64 // timeout in seconds
	catalog               *types.Catalog
	state                 *types.State
	destinationConfig     *destination.WriterConfig
	syncSourceConfig      abstract.Config

	commands  = []*cobra.Command{}
	connector *abstract.AbstractDriver
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "kwanko",
	Short: "Kwanko reporting connector",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		viper.SetEnvPrefix(constants.EnvPrefix)
		viper.AutomaticEnv()

		viper.SetDefault(constants.ConfigFolder, os.TempDir())
		viper.SetDefault(constants.StatePath, filepath.Join(os.TempDir(), "state.json"))
		viper.SetDefault(constants.StreamsPath, filepath.Join(os.TempDir(), "streams.json"))
		if !noSave {
			configFolder := utils.Ternary(configPath == "not-set", os.TempDir(), filepath.Dir(configPath)).(string)
			streamsPathEnv := utils.Ternary(streamsPath == "", filepath.Join(configFolder, "streams.json"), streamsPath).(string)
			statePathEnv := utils.Ternary(statePath == "", filepath.Join(configFolder, "state.json"), statePath).(string)
			viper.Set(constants.ConfigFolder, configFolder)
			viper.Set(constants.StatePath, statePathEnv)
			viper.Set(constants.StreamsPath, streamsPathEnv)
		} else {
			viper.Set(constants.StatePath, os.DevNull)
		}

		if encryptionKey != "" {
			viper.Set(constants.EncryptionKey, encryptionKey)
		}
		if timeout > 0 {
			viper.Set(constants.RequestTimeout, timeout)
		}

		// logger uses CONFIG_FOLDER
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'kwanko --help' to display usage guide", args[0])
		}

		return nil
	},
}

func CreateRootCommand(_ bool, driver any) *cobra.Command {
	RootCmd.AddCommand(commands...)
	connector = abstract.NewAbstractDriver(RootCmd.Context(), driver.(abstract.DriverInterface))

	return RootCmd
}

// loadSourceConfig reads --config into the driver config, decrypting it when a key is set
func loadSourceConfig() (abstract.Config, error) {
	if configPath == "not-set" {
		return nil, fmt.Errorf("--config not passed")
	}

	config := connector.GetConfigRef()
	if err := utils.UnmarshalFile(configPath, config, true); err != nil {
		return nil, err
	}
	return config, nil
}

// loadState reads --state; a missing flag starts from an empty state
func loadState() (*types.State, error) {
	loaded := types.NewState(types.StreamType)
	if statePath == "" {
		return loaded, nil
	}

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		logger.Warnf("State file[%s] not found, starting from an empty state", statePath)
		return loaded, nil
	}
	if err := utils.UnmarshalFile(statePath, loaded, false); err != nil {
		return nil, err
	}
	return loaded, nil
}

func init() {
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "not-set", "(Required) Config for connector")
	RootCmd.PersistentFlags().StringVarP(&destinationConfigPath, "destination", "", "not-set", "(Optional) Destination config, records are written to stdout by default")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "catalog", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "streams", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Optional) State for connector")
	RootCmd.PersistentFlags().BoolVarP(&noSave, "no-save", "", false, "(Optional) Flag to skip logging artifacts in file")
	RootCmd.PersistentFlags().StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key. Provide the ARN of a KMS key or a custom passphrase.")
	RootCmd.PersistentFlags().Int64VarP(&timeout, "timeout", "", -1, "(Optional) Timeout to override the request timeout (in seconds)")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
