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

// Package env adapts a remote simulator to the reset/step lifecycle expected by
// a single agent reinforcement learning training loop.
package env

import (
	"context"

	"github.com/cogment/cogment-bevy-env/api"
)

// Environment is the contract between a training loop and a simulated task
type Environment interface {
	// Reset restarts the episode and returns the initial observation, the seed may be ignored
	Reset(ctx context.Context, seed *int64) (api.Observation, api.Info, error)
	// Step applies an action and returns its outcome
	Step(ctx context.Context, action api.Action) (*api.StepResult, error)
	// Render displays the environment, if the environment knows how to
	Render() error
	// Close releases the resources held by the environment
	Close() error
	ObservationSpace() *api.Box
	ActionSpace() *api.Box
}
