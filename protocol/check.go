/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"fmt"

	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	schemavalidator "github.com/datazip-inc/kwanko/utils/jsonschema"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == "not-set" {
			return fmt.Errorf("--config not passed")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		err := func() error {
			if err := validateAgainstSpec(configPath); err != nil {
				return err
			}

			if _, err := loadSourceConfig(); err != nil {
				return err
			}

			if err := connector.Setup(cmd.Context()); err != nil {
				return err
			}

			return connector.Check(cmd.Context())
		}()

		// log success
		message := types.Message{
			Type: types.ConnectionStatusMessage,
			ConnectionStatus: &types.StatusRow{
				Status: types.ConnectionSucceed,
			},
		}
		if err != nil {
			message.ConnectionStatus.Message = err.Error()
			message.ConnectionStatus.Status = types.ConnectionFailed
		}
		logger.LogMessage(message)
	},
}

// validateAgainstSpec checks the raw config file against the schema published by spec
func validateAgainstSpec(path string) error {
	schema, ok := connector.Spec().(*jsonschema.Schema)
	if !ok {
		return nil
	}

	document := map[string]any{}
	if err := utils.UnmarshalFile(path, &document, true); err != nil {
		return err
	}

	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %s", err)
	}
	return schemavalidator.Validate(schema, raw)
}
