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

package rollout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/backend"
	"github.com/cogment/cogment-bevy-env/env"
	"github.com/cogment/cogment-bevy-env/helper"
)

// EpisodeStats summarizes a finished episode
type EpisodeStats struct {
	EpisodeID string
	EnvIndex  int
	Steps     int
	Return    float64
	Status    backend.EpisodeStatus
	Duration  time.Duration
}

type runningEpisode struct {
	id        string
	steps     int
	ret       float64
	startedAt time.Time
}

// Runner plays episodes on every environment of a VectorEnv and records their transitions
type Runner struct {
	Env      *env.VectorEnv
	Policy   Policy
	Backend  backend.Backend
	Episodes int
	// Simulators labels the environments in the recorded episodes, optional
	Simulators []string
	Seed       *int64
	// OnEpisodeEnd is called, from the Run goroutine, every time an episode finishes
	OnEpisodeEnd func(stats EpisodeStats)
	Logger       *zap.SugaredLogger
}

func (r *Runner) simulator(envIdx int) string {
	if envIdx < len(r.Simulators) {
		return r.Simulators[envIdx]
	}
	return ""
}

func (r *Runner) startEpisode(ctx context.Context, envIdx int) (*runningEpisode, error) {
	episode := &runningEpisode{id: uuid.New().String(), startedAt: time.Now()}
	_, err := r.Backend.StartEpisode(ctx, &backend.EpisodeParams{
		EpisodeID: episode.id,
		EnvIndex:  envIdx,
		Simulator: r.simulator(envIdx),
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Debugw("episode started", "episode_id", episode.id, "env", envIdx)
	return episode, nil
}

// interrupt ends every running episode, it is called when a run stops early.
func (r *Runner) interrupt(episodes []*runningEpisode) error {
	var err error
	for _, episode := range episodes {
		if episode == nil {
			continue
		}
		// The run context might be done already
		_, endErr := r.Backend.EndEpisode(context.Background(), episode.id, backend.EpisodeInterrupted)
		err = multierr.Append(err, endErr)
	}
	return err
}

// Run plays exactly `Episodes` episodes and returns their stats, in the order they finished.
//
// New episodes are only started while fewer than `Episodes` were started, environments
// without an episode keep being stepped but their transitions are not recorded. When
// the run fails or the context is done, running episodes are ended as interrupted.
func (r *Runner) Run(ctx context.Context) ([]EpisodeStats, error) {
	if r.Env == nil || r.Policy == nil || r.Backend == nil {
		return nil, errors.New("a rollout requires an environment, a policy and a backend")
	}
	if r.Episodes <= 0 {
		return nil, fmt.Errorf("the number of episodes must be positive, got %d", r.Episodes)
	}
	if r.Logger == nil {
		r.Logger = helper.GetSugarLogger([]string{"rollout"})
	}

	observations, _, err := r.Env.Reset(ctx, r.Seed)
	if err != nil {
		return nil, err
	}

	numEnvs := r.Env.NumEnvs()
	episodes := make([]*runningEpisode, numEnvs)
	started := 0
	for envIdx := 0; envIdx < numEnvs && started < r.Episodes; envIdx++ {
		if episodes[envIdx], err = r.startEpisode(ctx, envIdx); err != nil {
			return nil, multierr.Append(err, r.interrupt(episodes))
		}
		started++
	}

	stats := make([]EpisodeStats, 0, r.Episodes)
	for len(stats) < r.Episodes {
		if err := ctx.Err(); err != nil {
			return stats, multierr.Append(err, r.interrupt(episodes))
		}

		actions := make([]api.Action, numEnvs)
		for envIdx := range actions {
			actions[envIdx] = r.Policy.Act(observations[envIdx])
		}

		result, err := r.Env.Step(ctx, actions)
		if err != nil {
			return stats, multierr.Append(err, r.interrupt(episodes))
		}

		transitions := make([]*backend.Transition, 0, numEnvs)
		for envIdx, episode := range episodes {
			if episode == nil {
				continue
			}
			transitions = append(transitions, &backend.Transition{
				EpisodeID:   episode.id,
				Step:        episode.steps,
				Observation: observations[envIdx],
				Action:      actions[envIdx],
				Reward:      result.Rewards[envIdx],
				Terminated:  result.Terminated[envIdx],
				Truncated:   result.Truncated[envIdx],
			})
			episode.steps++
			episode.ret += result.Rewards[envIdx]
		}
		if err := r.Backend.AddTransitions(ctx, transitions); err != nil {
			return stats, multierr.Append(err, r.interrupt(episodes))
		}

		for envIdx, episode := range episodes {
			if episode == nil || !(result.Terminated[envIdx] || result.Truncated[envIdx]) {
				continue
			}
			status := backend.EpisodeTerminated
			if !result.Terminated[envIdx] {
				status = backend.EpisodeTruncated
			}
			if _, err := r.Backend.EndEpisode(ctx, episode.id, status); err != nil {
				return stats, multierr.Append(err, r.interrupt(episodes))
			}
			episodeStats := EpisodeStats{
				EpisodeID: episode.id,
				EnvIndex:  envIdx,
				Steps:     episode.steps,
				Return:    episode.ret,
				Status:    status,
				Duration:  time.Since(episode.startedAt),
			}
			stats = append(stats, episodeStats)
			r.Logger.Debugw("episode ended", "episode_id", episode.id, "env", envIdx, "steps", episode.steps, "return", episode.ret, "status", status)
			if r.OnEpisodeEnd != nil {
				r.OnEpisodeEnd(episodeStats)
			}

			episodes[envIdx] = nil
			if started < r.Episodes {
				if episodes[envIdx], err = r.startEpisode(ctx, envIdx); err != nil {
					return stats, multierr.Append(err, r.interrupt(episodes))
				}
				started++
			}
		}

		observations = result.Observations
	}

	return stats, nil
}
