// Copyright 2021 AI Redefined Inc. <dev+cogment@ai-r.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/helper"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new episode and print its initial observation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadEnvConfig()
		helper.CheckError(err)

		seed, err := optionalInt64(cmd.Flags(), "seed")
		helper.CheckError(err)

		asJSON, err := cmd.Flags().GetBool("json")
		helper.CheckError(err)

		err = runResetCmd(cmd.Context(), config, nil, seed, asJSON, os.Stdout)
		helper.CheckError(err)
	},
}

func runResetCmd(ctx context.Context, config *api.EnvConfig, httpClient *http.Client, seed *int64, asJSON bool, out io.Writer) error {
	adapter, err := createAdapter(config, httpClient)
	if err != nil {
		return err
	}
	defer adapter.Close()

	obs, _, err := adapter.Reset(ctx, seed)
	if err != nil {
		return err
	}
	return printObservation(out, obs, asJSON)
}

func init() {
	resetCmd.Flags().Int64("seed", 0, "seed forwarded to the environment, the remote simulator ignores it")
	resetCmd.Flags().Bool("json", false, "print the observation as a JSON array")
	rootCmd.AddCommand(resetCmd)
}
