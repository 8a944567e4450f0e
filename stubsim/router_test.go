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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cogment/cogment-bevy-env/api"
)

var testEndpoints = api.Endpoints{State: "/state", Step: "/step", Reset: "/reset"}

func recordResponse(t *testing.T, handler http.Handler, route string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodGet, route, nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	return rr
}

func stepRoute(t *testing.T, action api.Action) string {
	payload, err := api.EncodeActionPayload(action)
	assert.NoError(t, err)
	return "/step?" + url.Values{api.PayloadQueryParam: []string{payload}}.Encode()
}

func createTestRouter(t *testing.T) http.Handler {
	handler, err := CreateRouter(NewAnt(Layout{Bodies: 2, Joints: 3, ActuatedJoints: 3}, 2), testEndpoints)
	assert.NoError(t, err)
	return handler
}

func TestStateBeforeReset(t *testing.T) {
	handler := createTestRouter(t)

	rr := recordResponse(t, handler, "/state")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"transforms": null, "joint_angles": null}`, rr.Body.String())
}

func TestResetThenState(t *testing.T) {
	handler := createTestRouter(t)

	rr := recordResponse(t, handler, "/reset")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "episode 1 started"}`, rr.Body.String())

	rr = recordResponse(t, handler, "/state")
	assert.Equal(t, http.StatusOK, rr.Code)
	state := api.StateResponse{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Len(t, *state.Transforms, 2)
	assert.Len(t, *state.JointAngles, 3)
}

func TestStep(t *testing.T) {
	handler := createTestRouter(t)
	recordResponse(t, handler, "/reset")

	rr := recordResponse(t, handler, stepRoute(t, api.Action{0.5, 0.5, 0}))
	assert.Equal(t, http.StatusOK, rr.Code)
	responses := []map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &responses))
	assert.Len(t, responses, 1)
	assert.Contains(t, responses[0], "reward")
	assert.Equal(t, false, responses[0]["is_terminated"])
	assert.Equal(t, 1.0, responses[0]["step"])

	rr = recordResponse(t, handler, stepRoute(t, api.Action{0, 0, 0}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &responses))
	assert.Equal(t, true, responses[0]["is_terminated"])
}

func TestStepErrors(t *testing.T) {
	handler := createTestRouter(t)

	rr := recordResponse(t, handler, stepRoute(t, api.Action{0, 0, 0}))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	recordResponse(t, handler, "/reset")

	var tests = []struct {
		name  string
		route string
	}{
		{"missing payload", "/step"},
		{"not json", "/step?payload=nope"},
		{"action not double encoded", "/step?" + url.Values{"payload": []string{`[{"action": [1, 2, 3]}]`}}.Encode()},
		{"wrong size", stepRoute(t, api.Action{1, 2})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := recordResponse(t, handler, tt.route)
			assert.GreaterOrEqual(t, rr.Code, http.StatusBadRequest)
			assert.Less(t, rr.Code, http.StatusInternalServerError)
			httpErr := HTTPError{}
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &httpErr))
			assert.Equal(t, rr.Code, httpErr.Status)
		})
	}
}

func TestNotFound(t *testing.T) {
	handler := createTestRouter(t)

	rr := recordResponse(t, handler, "/foo")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"status": 404, "message": "Unknown route \"/foo\""}`, rr.Body.String())
}

func TestCustomEndpoints(t *testing.T) {
	handler, err := CreateRouter(NewAnt(Layout{Joints: 1, ActuatedJoints: 1}, 0), api.Endpoints{
		State: "http://127.0.0.1:7878/bevy/state",
		Step:  "/bevy/step",
		Reset: "/bevy/reset",
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, recordResponse(t, handler, "/bevy/reset").Code)
	assert.Equal(t, http.StatusOK, recordResponse(t, handler, "/bevy/state").Code)
	assert.Equal(t, http.StatusNotFound, recordResponse(t, handler, "/state").Code)
}
