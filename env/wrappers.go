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

	"github.com/cogment/cogment-bevy-env/api"
)

// TruncatedInfoKey is set in the step info when a TimeLimit cut the episode short
const TruncatedInfoKey = "TimeLimit.truncated"

// TimeLimit truncates episodes that reach a maximum number of steps without terminating
type TimeLimit struct {
	Environment
	maxSteps int
	elapsed  int
}

// NewTimeLimit wraps env, a non positive maxSteps disables the limit
func NewTimeLimit(env Environment, maxSteps int) *TimeLimit {
	return &TimeLimit{Environment: env, maxSteps: maxSteps}
}

// ElapsedSteps is the number of steps since the last reset
func (w *TimeLimit) ElapsedSteps() int {
	return w.elapsed
}

func (w *TimeLimit) Reset(ctx context.Context, seed *int64) (api.Observation, api.Info, error) {
	w.elapsed = 0
	return w.Environment.Reset(ctx, seed)
}

func (w *TimeLimit) Step(ctx context.Context, action api.Action) (*api.StepResult, error) {
	result, err := w.Environment.Step(ctx, action)
	if err != nil {
		return nil, err
	}
	w.elapsed++
	if w.maxSteps > 0 && w.elapsed >= w.maxSteps && !result.Terminated {
		result.Truncated = true
		if result.Info == nil {
			result.Info = api.Info{}
		}
		result.Info[TruncatedInfoKey] = true
	}
	return result, nil
}

// ClipAction clamps actions to the action space before forwarding them
type ClipAction struct {
	Environment
}

func NewClipAction(env Environment) *ClipAction {
	return &ClipAction{Environment: env}
}

func (w *ClipAction) Step(ctx context.Context, action api.Action) (*api.StepResult, error) {
	return w.Environment.Step(ctx, w.ActionSpace().Clip(action))
}

// Wrap applies the wrappers requested by the configuration
func Wrap(env Environment, config *api.EnvConfig) Environment {
	if config.ClipActions {
		env = NewClipAction(env)
	}
	if config.MaxEpisodeSteps > 0 {
		env = NewTimeLimit(env, config.MaxEpisodeSteps)
	}
	return env
}
