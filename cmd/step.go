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
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/env"
	"github.com/cogment/cogment-bevy-env/helper"
)

// stepCmd represents the step command
var stepCmd = &cobra.Command{
	Use:   "step [value...]",
	Short: "Apply one action and print its outcome",
	Long: `Apply one action and print its outcome.

Missing action values are zero, "bevy-env step" alone sends a zero action.`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadEnvConfig()
		helper.CheckError(err)

		action, err := parseAction(args, config.ActionSize)
		helper.CheckError(err)

		err = runStepCmd(cmd.Context(), config, nil, action, os.Stdout)
		helper.CheckError(err)
	},
}

func parseAction(args []string, size int) (api.Action, error) {
	if len(args) > size {
		return nil, fmt.Errorf("too many action values, expected at most %d, got %d", size, len(args))
	}
	action := make(api.Action, size)
	for i, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid action value #%d %q: %w", i, arg, err)
		}
		action[i] = value
	}
	return action, nil
}

func runStepCmd(ctx context.Context, config *api.EnvConfig, httpClient *http.Client, action api.Action, out io.Writer) error {
	adapter, err := createAdapter(config, httpClient)
	if err != nil {
		return err
	}
	defer adapter.Close()

	result, err := env.Wrap(adapter, config).Step(ctx, action)
	if err != nil {
		return err
	}

	var output []string
	output = append(output, strings.Join([]string{"REWARD", "TERMINATED", "TRUNCATED"}, "|"))
	output = append(output, strings.Join([]string{
		strconv.FormatFloat(result.Reward, 'g', -1, 64),
		strconv.FormatBool(result.Terminated),
		strconv.FormatBool(result.Truncated),
	}, "|"))
	fmt.Fprintln(out, columnize.SimpleFormat(output))
	fmt.Fprintf(out, "observation: %s\n", formatVector(result.Observation))
	return nil
}

func init() {
	rootCmd.AddCommand(stepCmd)
}
