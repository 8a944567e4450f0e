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

package remote

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cogment/cogment-bevy-env/api"
)

func testConfig() *api.EnvConfig {
	config := api.CreateDefaultEnvConfig()
	config.Retry.WaitTime = time.Millisecond
	config.Retry.MaxWaitTime = 2 * time.Millisecond
	return config
}

func TestSimulatorClientRetriesServerErrors(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "http://127.0.0.1:7878/state",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "warming up"))

	client := SimulatorClient(httpClient, testConfig(), true, nil)
	resp, err := client.R().Get("/state")

	assert.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
	// 1 attempt + 2 retries
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestSimulatorClientDoesNotRetryClientErrors(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "http://127.0.0.1:7878/state",
		httpmock.NewStringResponder(http.StatusNotFound, "nope"))

	client := SimulatorClient(httpClient, testConfig(), true, nil)
	resp, err := client.R().Get("/state")

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSimulatorClientWithoutRetry(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "http://127.0.0.1:7878/step",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	client := SimulatorClient(httpClient, testConfig(), false, nil)
	resp, err := client.R().Get("/step")

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSimulatorClientNegativeRetryCount(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "http://127.0.0.1:7878/state",
		httpmock.NewStringResponder(http.StatusBadGateway, ""))

	config := testConfig()
	config.Retry.Count = -1
	client := SimulatorClient(httpClient, config, true, nil)
	_, err := client.R().Get("/state")

	assert.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSimulatorClientHeaders(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "http://127.0.0.1:7878/reset",
		func(req *http.Request) (*http.Response, error) {
			assert.True(t, strings.HasPrefix(req.Header.Get("User-Agent"), "bevy-env/"))
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	client := SimulatorClient(httpClient, testConfig(), true, nil)
	_, err := client.R().Get("/reset")
	assert.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSimulatorClientTimeout(t *testing.T) {
	testCases := []struct {
		name     string
		timeout  time.Duration
		expected time.Duration
	}{
		{name: "unset", timeout: 0, expected: api.DefaultTimeout},
		{name: "configured", timeout: 250 * time.Millisecond, expected: 250 * time.Millisecond},
		{name: "disabled", timeout: -1, expected: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			config := &api.EnvConfig{BaseURL: "http://127.0.0.1:7878", Timeout: testCase.timeout}
			client := SimulatorClient(&http.Client{}, config, true, nil)
			assert.Equal(t, testCase.expected, client.GetClient().Timeout)
		})
	}
}

func TestSimulatorClientLogsFailuresAsWarnings(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core, zap.AddStacktrace(zapcore.WarnLevel)).Sugar()

	// No responder, every attempt fails at the transport level
	client := SimulatorClient(httpClient, testConfig(), true, logger)
	_, err := client.R().Get("/state")
	assert.Error(t, err)

	// 3 attempts then the final failure
	entries := logs.All()
	assert.Len(t, entries, 4)
	for _, entry := range entries {
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Empty(t, entry.Stack)
	}
}

func TestRetryOnServerError(t *testing.T) {
	assert.True(t, RetryOnServerError(nil, errors.New("connection refused")))
	assert.False(t, RetryOnServerError(nil, nil))
	assert.False(t, RetryOnServerError(&resty.Response{}, nil))
}

func TestUserAgent(t *testing.T) {
	assert.True(t, strings.HasPrefix(UserAgent(), "bevy-env/"))
}
