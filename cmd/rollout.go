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
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/backend"
	"github.com/cogment/cogment-bevy-env/env"
	"github.com/cogment/cogment-bevy-env/helper"
	"github.com/cogment/cogment-bevy-env/rollout"
)

type rolloutParams struct {
	config     *api.EnvConfig
	simulators []string
	episodes   int
	policy     string
	seed       *int64
	maxStored  int
	output     io.Writer
	fields     []backend.TransitionField
	chart      io.Writer
	httpClient *http.Client
}

// rolloutCmd represents the rollout command
var rolloutCmd = &cobra.Command{
	Use:   "rollout",
	Short: "Play episodes with a baseline policy and record their transitions",
	Long: `Play episodes with a baseline policy and record their transitions.

Several simulators can be driven at once by repeating --simulator, every one of
them must share the configured spaces.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadEnvConfig()
		helper.CheckError(err)

		flags := cmd.Flags()
		params := rolloutParams{config: config}

		params.episodes, err = flags.GetInt("episodes")
		helper.CheckError(err)
		params.policy, err = flags.GetString("policy")
		helper.CheckError(err)
		params.simulators, err = flags.GetStringSlice("simulator")
		helper.CheckError(err)
		params.maxStored, err = flags.GetInt("max-stored-transitions")
		helper.CheckError(err)

		maxSteps, err := flags.GetInt("max-steps")
		helper.CheckError(err)
		if maxSteps > 0 {
			config.MaxEpisodeSteps = maxSteps
		}

		params.seed, err = optionalInt64(flags, "seed")
		helper.CheckError(err)

		fieldNames, err := flags.GetStringSlice("fields")
		helper.CheckError(err)
		params.fields, err = backend.ParseTransitionFields(fieldNames)
		helper.CheckError(err)

		outputFile, err := flags.GetString("output")
		helper.CheckError(err)
		chartFile, err := flags.GetString("chart")
		helper.CheckError(err)

		err = runRolloutToFiles(cmd.Context(), params, outputFile, chartFile, os.Stdout)
		helper.CheckError(err)

		if outputFile != "" {
			fmt.Printf("Episodes exported to %s\n", outputFile)
		}
	},
}

func createVectorEnv(config *api.EnvConfig, simulators []string, httpClient *http.Client) (*env.VectorEnv, error) {
	envs := make([]env.Environment, 0, len(simulators))
	for _, simulator := range simulators {
		adapter, err := createAdapter(config.WithBaseURL(simulator), httpClient)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env.Wrap(adapter, config))
	}
	return env.NewVectorEnv(envs...)
}

// runRolloutToFiles runs a rollout exporting to `outputFile` and rendering to
// `chartFile` when they are not empty, the files are closed before returning.
func runRolloutToFiles(ctx context.Context, params rolloutParams, outputFile string, chartFile string, out io.Writer) error {
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("unable to create %q: %w", outputFile, err)
		}
		defer f.Close()
		params.output = f
	}
	if chartFile != "" {
		f, err := os.Create(chartFile)
		if err != nil {
			return fmt.Errorf("unable to create %q: %w", chartFile, err)
		}
		defer f.Close()
		params.chart = f
	}

	_, err := runRolloutCmd(ctx, params, out)
	return err
}

func runRolloutCmd(ctx context.Context, params rolloutParams, out io.Writer) ([]rollout.EpisodeStats, error) {
	simulators := params.simulators
	if len(simulators) == 0 {
		simulators = []string{params.config.BaseURL}
	}

	vectorEnv, err := createVectorEnv(params.config, simulators, params.httpClient)
	if err != nil {
		return nil, err
	}
	defer vectorEnv.Close()

	b, err := backend.CreateMemoryBackend(params.maxStored)
	if err != nil {
		return nil, err
	}
	defer b.Destroy()

	policySeed := time.Now().UnixNano()
	if params.seed != nil {
		policySeed = *params.seed
	}
	policy, err := rollout.NewPolicy(params.policy, vectorEnv.ActionSpace(), policySeed)
	if err != nil {
		return nil, err
	}

	runner := &rollout.Runner{
		Env:        vectorEnv,
		Policy:     policy,
		Backend:    b,
		Episodes:   params.episodes,
		Simulators: simulators,
		Seed:       params.seed,
		OnEpisodeEnd: func(stats rollout.EpisodeStats) {
			logger.Infow("episode ended", "episode_id", stats.EpisodeID, "steps", stats.Steps, "return", stats.Return, "status", stats.Status)
		},
		Logger: helper.GetSugarLogger([]string{"rollout"}),
	}

	stats, err := runner.Run(ctx)
	if err != nil {
		return stats, err
	}

	printRolloutSummary(out, stats)

	if params.output != nil {
		if err := rollout.Export(ctx, params.output, b, backend.TransitionFilter{Fields: params.fields}); err != nil {
			return stats, fmt.Errorf("unable to export the episodes: %w", err)
		}
	}
	if params.chart != nil {
		if err := rollout.RenderReturnsChart(params.chart, stats); err != nil {
			return stats, fmt.Errorf("unable to render the returns chart: %w", err)
		}
	}
	return stats, nil
}

func printRolloutSummary(out io.Writer, stats []rollout.EpisodeStats) {
	terminated := color.New(color.FgGreen).SprintFunc()
	truncated := color.New(color.FgYellow).SprintFunc()

	var output []string
	row := []string{"EPISODE", "ENV", "STEPS", "RETURN", "DURATION", "STATUS"}
	output = append(output, strings.Join(row, "|"))

	transitions := 0
	total := 0.0
	for _, s := range stats {
		status := string(s.Status)
		if s.Status == backend.EpisodeTerminated {
			status = terminated(status)
		} else {
			status = truncated(status)
		}

		row := []string{
			s.EpisodeID,
			fmt.Sprintf("%d", s.EnvIndex),
			humanize.Comma(int64(s.Steps)),
			humanize.FormatFloat("#,###.###", s.Return),
			s.Duration.Round(time.Millisecond).String(),
			status,
		}
		output = append(output, strings.Join(row, "|"))

		transitions += s.Steps
		total += s.Return
	}
	fmt.Fprintln(out, columnize.SimpleFormat(output))

	mean := 0.0
	if len(stats) > 0 {
		mean = total / float64(len(stats))
	}
	fmt.Fprintf(out, "%s episodes, %s transitions, mean return %s\n",
		humanize.Comma(int64(len(stats))),
		humanize.Comma(int64(transitions)),
		humanize.FormatFloat("#,###.###", mean),
	)
}

func init() {
	rolloutCmd.Flags().Int("episodes", 1, "number of episodes to play")
	rolloutCmd.Flags().String("policy", "random", fmt.Sprintf("policy playing the episodes, one of %s", strings.Join(rollout.PolicyNames(), ", ")))
	rolloutCmd.Flags().Int("max-steps", 0, "truncate episodes after this many steps, overrides max_episode_steps")
	rolloutCmd.Flags().Int64("seed", 0, "seed of the policy and the environments")
	rolloutCmd.Flags().StringSlice("simulator", nil, "base URL of a simulator, repeat to play on several simulators at once (default is the configured one)")
	rolloutCmd.Flags().StringP("output", "o", "", "export the recorded episodes as YAML to this file")
	rolloutCmd.Flags().String("chart", "", "render an HTML chart of the episode returns to this file")
	rolloutCmd.Flags().StringSlice("fields", nil, fmt.Sprintf("transition fields to export, among %s (default is every field)", strings.Join(backend.TransitionFieldNames(), ", ")))
	rolloutCmd.Flags().Int("max-stored-transitions", backend.DefaultMaxStoredTransitions, "transitions kept in memory, the oldest finished episodes are evicted first")
	rootCmd.AddCommand(rolloutCmd)
}
