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
	_ "embed"
	"fmt"
	"io/ioutil"
	"net/url"
	"strings"
	"time"

	"github.com/imdario/mergo"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v2"
)

// MissingStatePolicy decides what happens when the simulator state lacks transforms or joint angles
type MissingStatePolicy string

const (
	// ZeroFillOnMissingState substitutes a zero observation
	ZeroFillOnMissingState MissingStatePolicy = "zero_fill"
	// RaiseOnMissingState fails the call
	RaiseOnMissingState MissingStatePolicy = "raise"
)

// ObservationTiming decides when a step fetches its observation relative to sending the action
type ObservationTiming string

const (
	// PreActionObservation fetches the state before the action is applied, the returned
	// observation does not reflect the action's effect
	PreActionObservation ObservationTiming = "pre_action"
	// PostActionObservation fetches the state after the action is applied
	PostActionObservation ObservationTiming = "post_action"
)

// DefaultTimeout bounds requests when the configuration leaves the timeout unset
const DefaultTimeout = 10 * time.Second

//go:embed default_env.yaml
var defaultEnvConfigYaml []byte

// EnvConfig describes how to reach a simulator and the shape of its spaces, as loaded from a `bevy-env.yaml` file.
type EnvConfig struct {
	Name              string
	BaseURL           string             `yaml:"base_url"`
	Endpoints         Endpoints
	ObservationSize   int                `yaml:"observation_size"`
	ActionSize        int                `yaml:"action_size"`
	ActionBound       float64            `yaml:"action_bound"`
	OnMissingState    MissingStatePolicy `yaml:"on_missing_state"`
	ObservationTiming ObservationTiming  `yaml:"observation_timing"`
	// Timeout bounds every request, zero means DefaultTimeout and a negative value disables it
	Timeout         time.Duration
	Retry           RetryConfig
	MaxEpisodeSteps int  `yaml:"max_episode_steps"`
	ClipActions     bool `yaml:"clip_actions"`
}

// Endpoints are the simulator routes, either relative to the base URL or absolute
type Endpoints struct {
	State string
	Step  string
	Reset string
}

// RetryConfig is the retry policy applied to failed requests
// Count is the number of retries, a negative value disables them
// WaitTime and MaxWaitTime bound the exponential backoff
// Step enables retries on the step endpoint, which is not idempotent
type RetryConfig struct {
	Count       int
	WaitTime    time.Duration `yaml:"wait_time"`
	MaxWaitTime time.Duration `yaml:"max_wait_time"`
	Step        bool
}

// ConfigError is raised when an environment configuration is invalid
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid environment configuration, %q %s", e.Field, e.Reason)
}

var presets = map[string]EnvConfig{
	"ant-10": {ActionSize: 10, ActionBound: 10},
	"ant-16": {ActionSize: 16, ActionBound: 5},
}

// PresetNames lists the known deployment presets
func PresetNames() []string {
	return []string{"ant-10", "ant-16"}
}

func createEnvConfigFromYamlContent(yamlContent []byte) (*EnvConfig, error) {
	config := EnvConfig{}
	err := yaml.Unmarshal(yamlContent, &config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// CreateDefaultEnvConfig creates a configuration with the defaults defined in "default_env.yaml"
func CreateDefaultEnvConfig() *EnvConfig {
	defaultConfig, err := createEnvConfigFromYamlContent(defaultEnvConfigYaml)
	if err != nil {
		// The embedded defaults are part of the build, failing to parse them is a programming error
		panic(err)
	}
	return defaultConfig
}

// ExtendDefaultEnvConfig extends the default configuration with the given config
//
// the given config is left untouched.
func ExtendDefaultEnvConfig(config *EnvConfig) *EnvConfig {
	defaultConfig := CreateDefaultEnvConfig()
	extendedConfig := EnvConfig{}
	if config != nil {
		copier.Copy(&extendedConfig, config)
	}
	mergo.Merge(&extendedConfig, defaultConfig)
	return &extendedConfig
}

// CreateEnvConfigFromYaml creates a new instance of EnvConfig from a given yaml file
func CreateEnvConfigFromYaml(filename string) (*EnvConfig, error) {
	yamlContent, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	loadedConfig, err := createEnvConfigFromYamlContent(yamlContent)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %q: %w", filename, err)
	}
	return ExtendDefaultEnvConfig(loadedConfig), nil
}

// ApplyPreset overrides the action space of the configuration with a named deployment preset
func (c *EnvConfig) ApplyPreset(name string) error {
	preset, ok := presets[name]
	if !ok {
		return &ConfigError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q, expected one of %s", name, strings.Join(PresetNames(), ", "))}
	}
	return mergo.Merge(c, preset, mergo.WithOverride)
}

// Validate checks that the configuration can be used to build an environment
func (c *EnvConfig) Validate() error {
	if c.ObservationSize <= 0 {
		return &ConfigError{Field: "observation_size", Reason: "must be positive"}
	}
	if c.ActionSize <= 0 {
		return &ConfigError{Field: "action_size", Reason: "must be positive"}
	}
	if c.ActionBound <= 0 {
		return &ConfigError{Field: "action_bound", Reason: "must be positive"}
	}
	switch c.OnMissingState {
	case ZeroFillOnMissingState, RaiseOnMissingState:
	default:
		return &ConfigError{Field: "on_missing_state", Reason: fmt.Sprintf("must be %q or %q", ZeroFillOnMissingState, RaiseOnMissingState)}
	}
	switch c.ObservationTiming {
	case PreActionObservation, PostActionObservation:
	default:
		return &ConfigError{Field: "observation_timing", Reason: fmt.Sprintf("must be %q or %q", PreActionObservation, PostActionObservation)}
	}
	if c.MaxEpisodeSteps < 0 {
		return &ConfigError{Field: "max_episode_steps", Reason: "must not be negative"}
	}

	for field, endpoint := range map[string]string{"endpoints.state": c.Endpoints.State, "endpoints.step": c.Endpoints.Step, "endpoints.reset": c.Endpoints.Reset} {
		if endpoint == "" {
			return &ConfigError{Field: field, Reason: "must not be empty"}
		}
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return &ConfigError{Field: field, Reason: err.Error()}
		}
		if !parsed.IsAbs() && c.BaseURL == "" {
			return &ConfigError{Field: "base_url", Reason: fmt.Sprintf("is required by the relative endpoint %q", endpoint)}
		}
	}
	return nil
}

// ObservationSpace is the declared observation space, unbounded
func (c *EnvConfig) ObservationSpace() *Box {
	return NewUnboundedBox(c.ObservationSize)
}

// ActionSpace is the declared action space, symmetric around zero
func (c *EnvConfig) ActionSpace() *Box {
	return NewSymmetricBox(c.ActionSize, c.ActionBound)
}

// WithBaseURL returns a copy of the configuration targeting another simulator
func (c *EnvConfig) WithBaseURL(baseURL string) *EnvConfig {
	clone := EnvConfig{}
	copier.Copy(&clone, c)
	clone.BaseURL = baseURL
	return &clone
}
