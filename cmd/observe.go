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

// observeCmd represents the observe command
var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Fetch the current simulator state and print it as an observation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadEnvConfig()
		helper.CheckError(err)

		asJSON, err := cmd.Flags().GetBool("json")
		helper.CheckError(err)

		err = runObserveCmd(cmd.Context(), config, nil, asJSON, os.Stdout)
		helper.CheckError(err)
	},
}

func runObserveCmd(ctx context.Context, config *api.EnvConfig, httpClient *http.Client, asJSON bool, out io.Writer) error {
	adapter, err := createAdapter(config, httpClient)
	if err != nil {
		return err
	}
	defer adapter.Close()

	obs, err := adapter.Observe(ctx)
	if err != nil {
		return err
	}
	return printObservation(out, obs, asJSON)
}

func init() {
	observeCmd.Flags().Bool("json", false, "print the observation as a JSON array")
	rootCmd.AddCommand(observeCmd)
}
