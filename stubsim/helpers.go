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
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// HTTPError represents an http error that can be returned by the stub simulator
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// NewHTTPError creates a structured error encapsulating an http error
func NewHTTPError(status int, message string, cause error) *HTTPError {
	return &HTTPError{
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %s", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

func errorHandler(logger *zap.SugaredLogger, handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err != nil {
			httpErr := &HTTPError{}
			if !errors.As(err, &httpErr) {
				httpErr = NewHTTPError(http.StatusInternalServerError, "Unexpected Error", err)
			}
			if httpErr.Status >= 500 {
				logger.Errorw("internal error", "path", r.URL.Path, "error", err)
			} else {
				logger.Debugw("rejected request", "path", r.URL.Path, "error", err)
			}
			if err := encodeJSONResponse(w, httpErr.Status, &httpErr); err != nil {
				// This one can't really be recovered from
				logger.Error(err)
			}
		}
	}
}

func encodeJSONResponse(w http.ResponseWriter, status int, src interface{}) error {
	body, err := json.Marshal(src)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "unable to encode response to JSON", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
