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
	"fmt"
	"math/rand"
	"sync"

	"github.com/cogment/cogment-bevy-env/api"
)

// Policy picks the action to apply given an observation
type Policy interface {
	Act(obs api.Observation) api.Action
}

// RandomPolicy samples actions uniformly in the action space
type RandomPolicy struct {
	mu    sync.Mutex
	space *api.Box
	rng   *rand.Rand
}

func NewRandomPolicy(space *api.Box, seed int64) *RandomPolicy {
	return &RandomPolicy{
		space: space,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (p *RandomPolicy) Act(obs api.Observation) api.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.space.Sample(p.rng)
}

// ZeroPolicy always applies the zero action
type ZeroPolicy struct {
	space *api.Box
}

func NewZeroPolicy(space *api.Box) *ZeroPolicy {
	return &ZeroPolicy{space: space}
}

func (p *ZeroPolicy) Act(obs api.Observation) api.Action {
	return p.space.Zero()
}

// ConstantPolicy always applies the same action
type ConstantPolicy struct {
	Action api.Action
}

func (p *ConstantPolicy) Act(obs api.Observation) api.Action {
	action := make(api.Action, len(p.Action))
	copy(action, p.Action)
	return action
}

// PolicyNames lists the policies NewPolicy can create
func PolicyNames() []string {
	return []string{"random", "zero"}
}

// NewPolicy creates a policy from its name
func NewPolicy(name string, space *api.Box, seed int64) (Policy, error) {
	switch name {
	case "random":
		return NewRandomPolicy(space, seed), nil
	case "zero":
		return NewZeroPolicy(space), nil
	default:
		return nil, fmt.Errorf("unknown policy %q, expected one of %v", name, PolicyNames())
	}
}
