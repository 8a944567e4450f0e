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

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/bradleyjkemp/cupaloy/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/env"
)

const (
	stateURL = "http://127.0.0.1:7878/state"
	stepURL  = "http://127.0.0.1:7878/step"
	resetURL = "http://127.0.0.1:7878/reset"
)

var snapshotter = cupaloy.New(cupaloy.SnapshotSubdirectory("testdata/snapshots"))

var exampleState = map[string]interface{}{
	"transforms":   [][]float64{{1, 2, 3}, {4, 5, 6}},
	"joint_angles": []float64{0.1, 0.2},
}

func createTestConfig() *api.EnvConfig {
	config := api.CreateDefaultEnvConfig()
	config.ObservationSize = 8
	config.ActionSize = 3
	config.Retry.Count = 0
	return config
}

func createMockedClient(t *testing.T) *http.Client {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("GET", stateURL, func(req *http.Request) (*http.Response, error) {
		return httpmock.NewJsonResponse(http.StatusOK, exampleState)
	})
	return httpClient
}

func TestObserveCommand(t *testing.T) {
	var tests = []struct {
		asJSON   bool
		expected string
	}{
		{false, "1 2 3 4 5 6 0.1 0.2\n"},
		{true, "[1,2,3,4,5,6,0.1,0.2]\n"},
	}

	for _, tt := range tests {
		httpClient := createMockedClient(t)

		var out bytes.Buffer
		err := runObserveCmd(context.Background(), createTestConfig(), httpClient, tt.asJSON, &out)

		assert.NoError(t, err)
		assert.Equal(t, tt.expected, out.String())
		assert.Equal(t, 1, httpmock.GetTotalCallCount())
		httpmock.DeactivateAndReset()
	}
}

func TestObserveCommandWithStatusCode(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", stateURL, httpmock.NewStringResponder(http.StatusServiceUnavailable, "loading"))

	var out bytes.Buffer
	err := runObserveCmd(context.Background(), createTestConfig(), httpClient, false, &out)

	var statusErr *env.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Empty(t, out.String())
}

func TestResetCommand(t *testing.T) {
	httpClient := createMockedClient(t)
	resets := 0
	httpmock.RegisterResponder("GET", resetURL, func(req *http.Request) (*http.Response, error) {
		resets++
		return httpmock.NewStringResponse(http.StatusOK, "{}"), nil
	})

	seed := int64(12)
	var out bytes.Buffer
	err := runResetCmd(context.Background(), createTestConfig(), httpClient, &seed, true, &out)

	assert.NoError(t, err)
	assert.Equal(t, 1, resets)
	assert.Equal(t, "[1,2,3,4,5,6,0.1,0.2]\n", out.String())
}

func TestParseAction(t *testing.T) {
	action, err := parseAction([]string{"0.5", "-1"}, 3)
	assert.NoError(t, err)
	assert.Equal(t, api.Action{0.5, -1, 0}, action)

	action, err = parseAction(nil, 2)
	assert.NoError(t, err)
	assert.Equal(t, api.Action{0, 0}, action)

	_, err = parseAction([]string{"1", "2", "3"}, 2)
	assert.Error(t, err)

	_, err = parseAction([]string{"forward"}, 2)
	assert.Error(t, err)
}

func TestStepCommand(t *testing.T) {
	httpClient := createMockedClient(t)
	var sent api.Action
	httpmock.RegisterResponder("GET", stepURL, func(req *http.Request) (*http.Response, error) {
		action, err := api.DecodeActionPayload(req.URL.Query().Get(api.PayloadQueryParam))
		if err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		sent = action
		return httpmock.NewJsonResponse(http.StatusOK, []map[string]interface{}{
			{"reward": 1.5, "is_terminated": true},
		})
	})

	action, err := parseAction([]string{"0.5", "-1"}, 3)
	assert.NoError(t, err)

	var out bytes.Buffer
	err = runStepCmd(context.Background(), createTestConfig(), httpClient, action, &out)

	assert.NoError(t, err)
	assert.Equal(t, api.Action{0.5, -1, 0}, sent)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
	snapshotter.SnapshotT(t, out.String())
}

func TestStepCommandClipsActions(t *testing.T) {
	httpClient := createMockedClient(t)
	var sent api.Action
	httpmock.RegisterResponder("GET", stepURL, func(req *http.Request) (*http.Response, error) {
		sent, _ = api.DecodeActionPayload(req.URL.Query().Get(api.PayloadQueryParam))
		return httpmock.NewJsonResponse(http.StatusOK, []map[string]interface{}{
			{"reward": 0, "is_terminated": false},
		})
	})

	config := createTestConfig()
	config.ClipActions = true

	var out bytes.Buffer
	err := runStepCmd(context.Background(), config, httpClient, api.Action{25, -0.5, -12}, &out)

	assert.NoError(t, err)
	assert.Equal(t, api.Action{10, -0.5, -10}, sent)
}

func TestSpacesCommand(t *testing.T) {
	var out bytes.Buffer
	runSpacesCmd(api.CreateDefaultEnvConfig(), &out)

	snapshotter.SnapshotT(t, out.String())
}
