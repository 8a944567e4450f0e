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
	"fmt"
	"net/http"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/env"
	"github.com/cogment/cogment-bevy-env/helper"
)

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// optionalInt64 returns nil when the flag wasn't set
func optionalInt64(flags *pflag.FlagSet, name string) (*int64, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	value, err := flags.GetInt64(name)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// loadEnvConfig builds the environment configuration from, by increasing priority,
// the built-in defaults, the --env-config file, the current profile and the flags.
func loadEnvConfig() (*api.EnvConfig, error) {
	config := api.CreateDefaultEnvConfig()
	if filename := viper.GetString("env_config"); filename != "" {
		loaded, err := api.CreateEnvConfigFromYaml(filename)
		if err != nil {
			return nil, fmt.Errorf("unable to load the environment configuration: %w", err)
		}
		config = loaded
	}

	if preset := firstNonEmpty(viper.GetString("preset"), helper.CurrentConfig("preset")); preset != "" {
		if err := config.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	if url := firstNonEmpty(viper.GetString("url"), helper.CurrentConfig("url")); url != "" {
		config.BaseURL = url
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func createAdapter(config *api.EnvConfig, httpClient *http.Client) (*env.Adapter, error) {
	return env.NewAdapter(
		config,
		env.WithHTTPClient(httpClient),
		env.WithLogger(helper.GetSugarLogger([]string{"env"})),
		env.WithDebug(viper.GetBool("debug_http")),
	)
}
