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
	"sync"

	"github.com/cogment/cogment-bevy-env/api"
)

// fakeEnv is an in process Environment whose episodes terminate after a fixed number of steps
type fakeEnv struct {
	mu          sync.Mutex
	obsSize     int
	actSize     int
	episodeLen  int
	steps       int
	resets      int
	seeds       []*int64
	lastAction  api.Action
	stepErr     error
	resetErr    error
	closeErr    error
	renderCalls int
}

func newFakeEnv(obsSize int, actSize int, episodeLen int) *fakeEnv {
	return &fakeEnv{obsSize: obsSize, actSize: actSize, episodeLen: episodeLen}
}

func (e *fakeEnv) observation() api.Observation {
	obs := make(api.Observation, e.obsSize)
	for i := range obs {
		obs[i] = float64(e.steps)
	}
	return obs
}

func (e *fakeEnv) Reset(ctx context.Context, seed *int64) (api.Observation, api.Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resetErr != nil {
		return nil, nil, e.resetErr
	}
	e.resets++
	e.steps = 0
	e.seeds = append(e.seeds, seed)
	return e.observation(), api.Info{"resets": e.resets}, nil
}

func (e *fakeEnv) Step(ctx context.Context, action api.Action) (*api.StepResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stepErr != nil {
		return nil, e.stepErr
	}
	e.lastAction = action
	e.steps++
	return &api.StepResult{
		Observation: e.observation(),
		Reward:      1,
		Terminated:  e.episodeLen > 0 && e.steps >= e.episodeLen,
		Info:        api.Info{"step": e.steps},
	}, nil
}

func (e *fakeEnv) Render() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCalls++
	return nil
}

func (e *fakeEnv) Close() error {
	return e.closeErr
}

func (e *fakeEnv) ObservationSpace() *api.Box {
	return api.NewUnboundedBox(e.obsSize)
}

func (e *fakeEnv) ActionSpace() *api.Box {
	return api.NewSymmetricBox(e.actSize, 1)
}
