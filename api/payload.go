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

import (
	"encoding/json"
	"fmt"
)

// PayloadQueryParam is the query parameter carrying the action on the step endpoint
const PayloadQueryParam = "payload"

type actionPayload struct {
	Action string `json:"action"`
}

// EncodeActionPayload builds the step payload for an action.
//
// The action is JSON encoded, wrapped in a single element list under the
// "action" key, and the whole thing is JSON encoded again:
//	[{"action": "[0.5,-1,2]"}]
func EncodeActionPayload(action Action) (string, error) {
	values := action
	if values == nil {
		values = Action{}
	}
	inner, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("unable to encode action: %w", err)
	}
	outer, err := json.MarshalIndent([]actionPayload{{Action: string(inner)}}, "", "    ")
	if err != nil {
		return "", fmt.Errorf("unable to encode action payload: %w", err)
	}
	return string(outer), nil
}

// DecodeActionPayload is the inverse of EncodeActionPayload
func DecodeActionPayload(payload string) (Action, error) {
	wrapped := []actionPayload{}
	if err := json.Unmarshal([]byte(payload), &wrapped); err != nil {
		return nil, fmt.Errorf("invalid action payload: %w", err)
	}
	if len(wrapped) != 1 {
		return nil, fmt.Errorf("invalid action payload: expected 1 element, got %d", len(wrapped))
	}
	action := Action{}
	if err := json.Unmarshal([]byte(wrapped[0].Action), &action); err != nil {
		return nil, fmt.Errorf("invalid action in payload: %w", err)
	}
	return action, nil
}
