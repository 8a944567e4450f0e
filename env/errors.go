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
	"fmt"
	"strings"
)

// StatusError is raised when the simulator answers with a non 2xx status
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("simulator endpoint %q answered with status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("simulator endpoint %q answered with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// DecodeError is raised when a simulator response is not the expected JSON document
type DecodeError struct {
	Endpoint string
	Cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode the response of simulator endpoint %q: %v", e.Endpoint, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// MissingStateError is raised when the simulator state is incomplete and zero filling is disabled
type MissingStateError struct {
	Missing []string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("simulator state is missing %s", strings.Join(e.Missing, ", "))
}

// ObservationSizeError is raised when the assembled observation doesn't have the configured size
type ObservationSizeError struct {
	Expected int
	Actual   int
}

func (e *ObservationSizeError) Error() string {
	return fmt.Sprintf("observation has %d values, expected %d", e.Actual, e.Expected)
}

// ActionSizeError is raised when an action doesn't have the configured size
type ActionSizeError struct {
	Expected int
	Actual   int
}

func (e *ActionSizeError) Error() string {
	return fmt.Sprintf("action has %d values, expected %d", e.Actual, e.Expected)
}

// MalformedResponseError is raised when a simulator step response lacks required fields
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from simulator endpoint %q: %s", e.Endpoint, e.Reason)
}
