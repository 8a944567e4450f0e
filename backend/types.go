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

package backend

import (
	"fmt"
	"time"

	"github.com/cogment/cogment-bevy-env/api"
)

// EpisodeStatus is the lifecycle state of a recorded episode
type EpisodeStatus string

const (
	EpisodeRunning     EpisodeStatus = "running"
	EpisodeTerminated  EpisodeStatus = "terminated"
	EpisodeTruncated   EpisodeStatus = "truncated"
	EpisodeInterrupted EpisodeStatus = "interrupted"
)

// EpisodeParams describes where an episode is played
type EpisodeParams struct {
	EpisodeID string
	EnvIndex  int
	Simulator string
}

// EpisodeInfo represents the storage status of the transitions of an episode.
type EpisodeInfo struct {
	EpisodeID              string        `yaml:"episode_id"`
	EnvIndex               int           `yaml:"env_index"`
	Simulator              string        `yaml:"simulator"`
	Status                 EpisodeStatus `yaml:"status"`
	StartedAt              time.Time     `yaml:"started_at"`
	EndedAt                time.Time     `yaml:"ended_at,omitempty"`
	TransitionsCount       int           `yaml:"transitions_count"`
	StoredTransitionsCount int           `yaml:"stored_transitions_count"`
	TotalReward            float64       `yaml:"total_reward"`
}

type EpisodesInfoResult struct {
	EpisodeInfos   []*EpisodeInfo
	NextEpisodeIdx int
}

// Transition is a single recorded environment step
type Transition struct {
	EpisodeID   string          `yaml:"-"`
	Step        int             `yaml:"step"`
	Observation api.Observation `yaml:"observation,flow,omitempty"`
	Action      api.Action      `yaml:"action,flow,omitempty"`
	Reward      float64         `yaml:"reward"`
	Terminated  bool            `yaml:"terminated"`
	Truncated   bool            `yaml:"truncated"`
}

// UnknownEpisodeError is raised when trying to operate on an unknown episode
type UnknownEpisodeError struct {
	EpisodeID string
}

func (e *UnknownEpisodeError) Error() string {
	return fmt.Sprintf("no episode %q found", e.EpisodeID)
}

// EpisodeAlreadyExistsError is raised when starting an episode that already exists
type EpisodeAlreadyExistsError struct {
	EpisodeID string
}

func (e *EpisodeAlreadyExistsError) Error() string {
	return fmt.Sprintf("episode %q already exists", e.EpisodeID)
}

// EpisodeEndedError is raised when trying to record into an episode that already ended
type EpisodeEndedError struct {
	EpisodeID string
	Status    EpisodeStatus
}

func (e *EpisodeEndedError) Error() string {
	return fmt.Sprintf("episode %q already ended as %q", e.EpisodeID, e.Status)
}
