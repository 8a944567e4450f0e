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

package stubsim

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cogment/cogment-bevy-env/api"
)

// TransformSize is the number of values describing a body: position (x, y, z) then rotation quaternion (w, x, y, z)
const TransformSize = 7

const (
	dt            = 0.05
	controlCost   = 0.005
	forwardGain   = 0.1
	healthyMinZ   = 0.2
	healthyMaxZ   = 1.0
	restingHeight = 0.55
)

// Layout is the shape of the stub ant state.
//
// Only the first ActuatedJoints joints are driven by the action, the others stay at rest.
type Layout struct {
	Bodies         int
	Joints         int
	ActuatedJoints int
}

// LayoutFor creates the layout whose state assembles into an observation of `observationSize`
// values and is driven by actions of `actionSize` values.
func LayoutFor(observationSize int, actionSize int) (Layout, error) {
	if actionSize <= 0 || observationSize < actionSize {
		return Layout{}, fmt.Errorf("unable to lay out a stub ant with %d observation values and %d action values", observationSize, actionSize)
	}
	bodies := (observationSize - actionSize) / TransformSize
	return Layout{
		Bodies:         bodies,
		Joints:         observationSize - bodies*TransformSize,
		ActuatedJoints: actionSize,
	}, nil
}

// ObservationSize is the length of the observation assembled from the ant state
func (l Layout) ObservationSize() int {
	return l.Bodies*TransformSize + l.Joints
}

// StepOutcome is the result of a single ant step, as answered by the step endpoint
type StepOutcome struct {
	Reward     float64 `json:"reward"`
	Terminated bool    `json:"is_terminated"`
	Step       int     `json:"step"`
}

// Ant is a toy articulated body: a root moving forward when its legs move, with
// one hinge per joint. It stays unspawned, answering an empty state, until its first reset.
type Ant struct {
	mu            sync.Mutex
	layout        Layout
	episodeLength int
	spawned       bool
	steps         int
	episodes      int
	position      [3]float64
	jointAngles   []float64
}

// NewAnt creates an unspawned ant, a positive episodeLength terminates episodes after that many steps
func NewAnt(layout Layout, episodeLength int) *Ant {
	return &Ant{
		layout:        layout,
		episodeLength: episodeLength,
		jointAngles:   make([]float64, layout.Joints),
	}
}

func (a *Ant) Layout() Layout {
	return a.layout
}

// Episodes is the number of resets so far
func (a *Ant) Episodes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.episodes
}

// Reset spawns the ant at its initial pose
func (a *Ant) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spawned = true
	a.steps = 0
	a.episodes++
	a.position = [3]float64{0, 0, restingHeight}
	for i := range a.jointAngles {
		a.jointAngles[i] = 0
	}
}

// State returns the current transforms and joint angles, both absent when the ant isn't spawned
func (a *Ant) State() *api.StateResponse {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.spawned {
		return &api.StateResponse{}
	}

	transforms := make([][]float64, a.layout.Bodies)
	for body := range transforms {
		// Bodies are laid out along the x axis, each rotated around z by the angle of its joint
		angle := 0.0
		if body > 0 && body-1 < len(a.jointAngles) {
			angle = a.jointAngles[body-1]
		}
		transforms[body] = []float64{
			a.position[0] + float64(body)*0.25,
			a.position[1],
			a.position[2],
			math.Cos(angle / 2), 0, 0, math.Sin(angle / 2),
		}
	}
	jointAngles := make([]float64, len(a.jointAngles))
	copy(jointAngles, a.jointAngles)

	return &api.StateResponse{Transforms: &transforms, JointAngles: &jointAngles}
}

// Step drives the actuated joints with the action
func (a *Ant) Step(action api.Action) (*StepOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.spawned {
		return nil, errors.New("the ant isn't spawned yet")
	}
	if len(action) != a.layout.ActuatedJoints {
		return nil, fmt.Errorf("expected an action of %d values, got %d", a.layout.ActuatedJoints, len(action))
	}

	for i, torque := range action {
		if math.IsNaN(torque) || math.IsInf(torque, 0) {
			return nil, fmt.Errorf("action value #%d is not finite", i)
		}
	}

	previousX := a.position[0]
	cost := 0.0
	push := 0.0
	for i, torque := range action {
		cost += torque * torque
		if i < len(a.jointAngles) {
			a.jointAngles[i] = math.Remainder(a.jointAngles[i]+torque*dt, 2*math.Pi)
		}
		// Legs on alternate sides push in opposite directions
		if i%2 == 0 {
			push += torque
		} else {
			push -= torque
		}
	}
	a.position[0] += forwardGain * push * dt
	a.position[2] = restingHeight + 0.1*math.Sin(float64(a.steps)*dt*math.Pi)
	a.steps++

	reward := (a.position[0]-previousX)/dt - controlCost*cost
	healthy := a.position[2] >= healthyMinZ && a.position[2] <= healthyMaxZ
	return &StepOutcome{
		Reward:     reward,
		Terminated: !healthy || (a.episodeLength > 0 && a.steps >= a.episodeLength),
		Step:       a.steps,
	}, nil
}
