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

	"github.com/spf13/cobra"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/helper"
	"github.com/cogment/cogment-bevy-env/stubsim"
)

// stubCmd represents the stub command
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a stub simulator serving the simulator API, for local development",
	Long: `Run a stub simulator serving the simulator API, for local development.

The stub ant is sized after the configured observation and action sizes and
serves the configured endpoint paths.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadEnvConfig()
		helper.CheckError(err)

		addr, err := cmd.Flags().GetString("addr")
		helper.CheckError(err)

		episodeLength, err := cmd.Flags().GetInt("episode-length")
		helper.CheckError(err)

		err = runStubCmd(cmd.Context(), config, addr, episodeLength)
		helper.CheckError(err)
	},
}

func createStubAnt(config *api.EnvConfig, episodeLength int) (*stubsim.Ant, error) {
	layout, err := stubsim.LayoutFor(config.ObservationSize, config.ActionSize)
	if err != nil {
		return nil, err
	}
	return stubsim.NewAnt(layout, episodeLength), nil
}

func runStubCmd(ctx context.Context, config *api.EnvConfig, addr string, episodeLength int) error {
	ant, err := createStubAnt(config, episodeLength)
	if err != nil {
		return err
	}
	handler, err := stubsim.CreateRouter(ant, config.Endpoints)
	if err != nil {
		return err
	}

	layout := ant.Layout()
	logger.Infow("stub ant created", "bodies", layout.Bodies, "joints", layout.Joints, "episode_length", episodeLength)
	return stubsim.Serve(ctx, addr, handler)
}

func init() {
	stubCmd.Flags().String("addr", ":7878", "address the stub simulator listens on")
	stubCmd.Flags().Int("episode-length", 1000, "steps after which the stub ant episode terminates, 0 never terminates")
	rootCmd.AddCommand(stubCmd)
}
