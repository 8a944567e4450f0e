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
	"fmt"
	"net/http"
	"runtime"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/helper"
)

// SimulatorClient creates a REST client for the simulator described by the given configuration.
//
// Every client created from the same http.Client shares its connection pool and
// timeout. A zero timeout falls back to api.DefaultTimeout. Retries on
// transport errors and server errors are only enabled when `retry` is true and
// the configured retry count is positive.
func SimulatorClient(httpClient *http.Client, config *api.EnvConfig, retry bool, logger *zap.SugaredLogger) *resty.Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client := resty.NewWithClient(httpClient)
	client.SetBaseURL(config.BaseURL)
	client.SetHeader("User-Agent", UserAgent())
	client.SetHeader("Accept", "application/json")
	if logger != nil {
		client.SetLogger(newRestyLogger(logger))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = api.DefaultTimeout
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	if retry && config.Retry.Count > 0 {
		client.SetRetryCount(config.Retry.Count)
		if config.Retry.WaitTime > 0 {
			client.SetRetryWaitTime(config.Retry.WaitTime)
		}
		if config.Retry.MaxWaitTime > 0 {
			client.SetRetryMaxWaitTime(config.Retry.MaxWaitTime)
		}
		client.AddRetryCondition(RetryOnServerError)
	}

	return client
}

// restyLogger reports failed attempts as warnings without stack traces,
// the error itself is returned to the caller
type restyLogger struct {
	logger *zap.SugaredLogger
}

func newRestyLogger(logger *zap.SugaredLogger) *restyLogger {
	return &restyLogger{logger: logger.Desugar().WithOptions(zap.AddStacktrace(zapcore.FatalLevel)).Sugar()}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Warnf(format, v...)
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warnf(format, v...)
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debugf(format, v...)
}

// RetryOnServerError retries transport failures and 5xx responses, client errors are final
func RetryOnServerError(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
}

// UserAgent identifies the adapter to the simulator
func UserAgent() string {
	version, err := helper.SanitizeVersion(helper.Version)
	if err != nil {
		version = "dev"
	}
	return fmt.Sprintf("bevy-env/%s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}
