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

package env

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/cogment/cogment-bevy-env/api"
)

// FinalObservationInfoKey holds, in the info of an automatically reset environment,
// the last observation of the finished episode
const FinalObservationInfoKey = "final_observation"

// FinalInfoInfoKey holds the info of the last step of the finished episode
const FinalInfoInfoKey = "final_info"

// VectorEnv steps several environments in lockstep, concurrently.
//
// Environments whose episode ends are reset automatically as part of the same step.
type VectorEnv struct {
	envs []Environment
}

// VectorStepResult gathers the outcome of a step of every environment, in order
type VectorStepResult struct {
	Observations []api.Observation
	Rewards      []float64
	Terminated   []bool
	Truncated    []bool
	Infos        []api.Info
}

// NewVectorEnv creates a vectorized environment, all environments must share the same spaces
func NewVectorEnv(envs ...Environment) (*VectorEnv, error) {
	if len(envs) == 0 {
		return nil, errors.New("a vector environment requires at least one environment")
	}
	obsShape, actShape := envs[0].ObservationSpace().Shape(), envs[0].ActionSpace().Shape()
	for idx, env := range envs[1:] {
		if env.ObservationSpace().Shape() != obsShape || env.ActionSpace().Shape() != actShape {
			return nil, fmt.Errorf("environment #%d spaces don't match the ones of environment #0", idx+1)
		}
	}
	return &VectorEnv{envs: envs}, nil
}

// NumEnvs is the number of environments
func (v *VectorEnv) NumEnvs() int {
	return len(v.envs)
}

// Env returns the environment at the given index
func (v *VectorEnv) Env(idx int) Environment {
	return v.envs[idx]
}

func (v *VectorEnv) ObservationSpace() *api.Box {
	return v.envs[0].ObservationSpace()
}

func (v *VectorEnv) ActionSpace() *api.Box {
	return v.envs[0].ActionSpace()
}

// Reset resets every environment, environment i gets seed+i when a seed is provided
func (v *VectorEnv) Reset(ctx context.Context, seed *int64) ([]api.Observation, []api.Info, error) {
	observations := make([]api.Observation, len(v.envs))
	infos := make([]api.Info, len(v.envs))

	g, ctx := errgroup.WithContext(ctx)
	for idx, env := range v.envs {
		idx, env := idx, env
		var envSeed *int64
		if seed != nil {
			s := *seed + int64(idx)
			envSeed = &s
		}
		g.Go(func() error {
			obs, info, err := env.Reset(ctx, envSeed)
			if err != nil {
				return fmt.Errorf("unable to reset environment #%d: %w", idx, err)
			}
			observations[idx] = obs
			infos[idx] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return observations, infos, nil
}

// Step applies actions[i] to environment i
func (v *VectorEnv) Step(ctx context.Context, actions []api.Action) (*VectorStepResult, error) {
	if len(actions) != len(v.envs) {
		return nil, fmt.Errorf("expected %d actions, got %d", len(v.envs), len(actions))
	}

	result := &VectorStepResult{
		Observations: make([]api.Observation, len(v.envs)),
		Rewards:      make([]float64, len(v.envs)),
		Terminated:   make([]bool, len(v.envs)),
		Truncated:    make([]bool, len(v.envs)),
		Infos:        make([]api.Info, len(v.envs)),
	}

	g, ctx := errgroup.WithContext(ctx)
	for idx, env := range v.envs {
		idx, env := idx, env
		g.Go(func() error {
			step, err := env.Step(ctx, actions[idx])
			if err != nil {
				return fmt.Errorf("unable to step environment #%d: %w", idx, err)
			}
			result.Rewards[idx] = step.Reward
			result.Terminated[idx] = step.Terminated
			result.Truncated[idx] = step.Truncated

			if !step.Done() {
				result.Observations[idx] = step.Observation
				result.Infos[idx] = step.Info
				return nil
			}

			obs, resetInfo, err := env.Reset(ctx, nil)
			if err != nil {
				return fmt.Errorf("unable to reset environment #%d: %w", idx, err)
			}
			info := api.Info{}
			for key, value := range resetInfo {
				info[key] = value
			}
			info[FinalObservationInfoKey] = step.Observation
			info[FinalInfoInfoKey] = step.Info
			result.Observations[idx] = obs
			result.Infos[idx] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Render renders every environment
func (v *VectorEnv) Render() error {
	var err error
	for _, env := range v.envs {
		err = multierr.Append(err, env.Render())
	}
	return err
}

// Close closes every environment, even when some fail to
func (v *VectorEnv) Close() error {
	var err error
	for _, env := range v.envs {
		err = multierr.Append(err, env.Close())
	}
	return err
}
