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

package api

// Observation is the numeric snapshot of the simulator state handed to the training loop
type Observation []float64

// Action is the numeric control vector sent to the simulator
type Action []float64

// Info carries auxiliary diagnostic data alongside a reset or a step
type Info map[string]interface{}

// StepResult is what a training loop gets back from a single environment step
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info
}

// Done returns whether the episode is over, either naturally or artificially
func (r *StepResult) Done() bool {
	return r.Terminated || r.Truncated
}

// StateResponse is the body returned by the simulator state endpoint.
//
// Fields are pointers so that absent (or null) keys can be told apart from empty ones.
type StateResponse struct {
	Transforms  *[][]float64 `json:"transforms"`
	JointAngles *[]float64   `json:"joint_angles"`
}

// MissingFields lists the keys absent from the state
func (s *StateResponse) MissingFields() []string {
	missing := []string{}
	if s.Transforms == nil {
		missing = append(missing, "transforms")
	}
	if s.JointAngles == nil {
		missing = append(missing, "joint_angles")
	}
	return missing
}

// StepResponse is one element of the list returned by the simulator step endpoint
type StepResponse struct {
	Reward       *float64 `json:"reward"`
	IsTerminated *bool    `json:"is_terminated"`
}
