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
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/helper"
	"github.com/cogment/cogment-bevy-env/remote"
)

// Adapter is an Environment backed by a remote simulator reached over HTTP.
//
// It holds no episode state of its own, every observation is fetched from the
// simulator when requested.
type Adapter struct {
	config     *api.EnvConfig
	client     *resty.Client
	stepClient *resty.Client
	obsSpace   *api.Box
	actSpace   *api.Box
	logger     *zap.SugaredLogger
}

type adapterParams struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger
	debug      bool
}

// AdapterOption configures the creation of an Adapter
type AdapterOption func(*adapterParams)

// WithHTTPClient makes the adapter issue its requests through the given client
func WithHTTPClient(httpClient *http.Client) AdapterOption {
	return func(p *adapterParams) {
		p.httpClient = httpClient
	}
}

// WithLogger overrides the adapter logger
func WithLogger(logger *zap.SugaredLogger) AdapterOption {
	return func(p *adapterParams) {
		p.logger = logger
	}
}

// WithDebug dumps every request and response
func WithDebug(debug bool) AdapterOption {
	return func(p *adapterParams) {
		p.debug = debug
	}
}

// NewAdapter creates an adapter for the simulator described by the given configuration
func NewAdapter(config *api.EnvConfig, opts ...AdapterOption) (*Adapter, error) {
	if config == nil {
		return nil, &api.ConfigError{Field: "config", Reason: "is required"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	params := &adapterParams{}
	for _, opt := range opts {
		opt(params)
	}
	if params.httpClient == nil {
		params.httpClient = &http.Client{}
	}
	if params.logger == nil {
		params.logger = helper.GetSugarLogger([]string{"env"})
	}

	client := remote.SimulatorClient(params.httpClient, config, true, params.logger)
	stepClient := client
	if !config.Retry.Step {
		stepClient = remote.SimulatorClient(params.httpClient, config, false, params.logger)
	}
	client.SetDebug(params.debug)
	stepClient.SetDebug(params.debug)

	return &Adapter{
		config:     config,
		client:     client,
		stepClient: stepClient,
		obsSpace:   config.ObservationSpace(),
		actSpace:   config.ActionSpace(),
		logger:     params.logger.With("simulator", config.BaseURL),
	}, nil
}

// Config returns the configuration the adapter was built with
func (a *Adapter) Config() *api.EnvConfig {
	return a.config
}

func (a *Adapter) ObservationSpace() *api.Box {
	return a.obsSpace
}

func (a *Adapter) ActionSpace() *api.Box {
	return a.actSpace
}

func (a *Adapter) get(ctx context.Context, client *resty.Client, endpoint string, payload string) ([]byte, error) {
	req := client.R().SetContext(ctx)
	if payload != "" {
		req.SetQueryParam(api.PayloadQueryParam, payload)
	}

	start := time.Now()
	resp, err := req.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request to simulator endpoint %q failed: %w", endpoint, err)
	}
	a.logger.Debugw("simulator request", "endpoint", endpoint, "status", resp.StatusCode(), "duration", time.Since(start))

	if !resp.IsSuccess() {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return resp.Body(), nil
}

// Observe fetches the current simulator state and assembles it into an observation
func (a *Adapter) Observe(ctx context.Context) (api.Observation, error) {
	endpoint := a.config.Endpoints.State
	body, err := a.get(ctx, a.client, endpoint, "")
	if err != nil {
		return nil, err
	}

	state := api.StateResponse{}
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Cause: err}
	}

	obs, err := AssembleObservation(&state, a.config.ObservationSize, a.config.OnMissingState)
	if err != nil {
		return nil, err
	}
	if missing := state.MissingFields(); len(missing) > 0 {
		a.logger.Debugw("incomplete simulator state, observation zero filled", "missing", missing)
	}
	return obs, nil
}

// ApplyAction sends an action to the simulator and returns its raw step response
func (a *Adapter) ApplyAction(ctx context.Context, action api.Action) (*api.StepResponse, error) {
	if err := a.checkAction(action); err != nil {
		return nil, err
	}

	payload, err := api.EncodeActionPayload(action)
	if err != nil {
		return nil, err
	}

	endpoint := a.config.Endpoints.Step
	body, err := a.get(ctx, a.stepClient, endpoint, payload)
	if err != nil {
		return nil, err
	}

	responses := []api.StepResponse{}
	if err := json.Unmarshal(body, &responses); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Cause: err}
	}
	if len(responses) == 0 {
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: "empty response list"}
	}
	response := responses[0]
	if response.Reward == nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: `missing "reward"`}
	}
	if response.IsTerminated == nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: `missing "is_terminated"`}
	}
	return &response, nil
}

// Step applies an action and returns the resulting step.
//
// With the "pre_action" observation timing the observation is fetched before
// the action is sent, it therefore doesn't reflect the action's effect.
// Truncated is always false and Info always empty.
func (a *Adapter) Step(ctx context.Context, action api.Action) (*api.StepResult, error) {
	if err := a.checkAction(action); err != nil {
		return nil, err
	}

	var obs api.Observation
	var response *api.StepResponse
	var err error
	switch a.config.ObservationTiming {
	case api.PostActionObservation:
		if response, err = a.ApplyAction(ctx, action); err != nil {
			return nil, err
		}
		if obs, err = a.Observe(ctx); err != nil {
			return nil, err
		}
	default:
		if obs, err = a.Observe(ctx); err != nil {
			return nil, err
		}
		if response, err = a.ApplyAction(ctx, action); err != nil {
			return nil, err
		}
	}

	return &api.StepResult{
		Observation: obs,
		Reward:      *response.Reward,
		Terminated:  *response.IsTerminated,
		Truncated:   false,
		Info:        api.Info{},
	}, nil
}

// Reset restarts the remote episode and returns the initial observation.
//
// The simulator offers no determinism, the seed is ignored.
func (a *Adapter) Reset(ctx context.Context, seed *int64) (api.Observation, api.Info, error) {
	if seed != nil {
		a.logger.Debugw("ignoring reset seed", "seed", *seed)
	}
	if _, err := a.get(ctx, a.client, a.config.Endpoints.Reset, ""); err != nil {
		return nil, nil, err
	}

	obs, err := a.Observe(ctx)
	if err != nil {
		return nil, nil, err
	}
	return obs, api.Info{}, nil
}

// Render does nothing, the simulator renders out of process
func (a *Adapter) Render() error {
	return nil
}

// Close releases idle connections to the simulator
func (a *Adapter) Close() error {
	a.client.GetClient().CloseIdleConnections()
	return nil
}

func (a *Adapter) checkAction(action api.Action) error {
	if len(action) != a.config.ActionSize {
		return &ActionSizeError{Expected: a.config.ActionSize, Actual: len(action)}
	}
	return nil
}
