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
	"github.com/cogment/cogment-bevy-env/api"
)

// AssembleObservation concatenates the state transforms, in order, followed by the joint angles.
//
// An incomplete state yields a zero observation of the given size, or a
// MissingStateError when the policy is "raise". The result always has
// exactly `size` values, an ObservationSizeError is returned otherwise.
func AssembleObservation(state *api.StateResponse, size int, onMissing api.MissingStatePolicy) (api.Observation, error) {
	if missing := state.MissingFields(); len(missing) > 0 {
		if onMissing == api.RaiseOnMissingState {
			return nil, &MissingStateError{Missing: missing}
		}
		return make(api.Observation, size), nil
	}

	obs := make(api.Observation, 0, size)
	for _, transform := range *state.Transforms {
		obs = append(obs, transform...)
	}
	obs = append(obs, *state.JointAngles...)

	if len(obs) != size {
		return nil, &ObservationSizeError{Expected: size, Actual: len(obs)}
	}
	return obs, nil
}
