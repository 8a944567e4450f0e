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
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/helper"
)

type message struct {
	Message string `json:"message,omitempty"`
}

func endpointPath(endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if parsed.Path == "" {
		return "/", nil
	}
	return parsed.Path, nil
}

// CreateRouter creates an http handler serving the simulator API on the paths of the given endpoints
func CreateRouter(ant *Ant, endpoints api.Endpoints) (http.Handler, error) {
	statePath, err := endpointPath(endpoints.State)
	if err != nil {
		return nil, err
	}
	stepPath, err := endpointPath(endpoints.Step)
	if err != nil {
		return nil, err
	}
	resetPath, err := endpointPath(endpoints.Reset)
	if err != nil {
		return nil, err
	}

	logger := helper.GetSugarLogger([]string{"stubsim"})
	router := mux.NewRouter()

	router.Path(statePath).Methods(http.MethodGet).HandlerFunc(getState(ant, logger))
	router.Path(stepPath).Methods(http.MethodGet).HandlerFunc(step(ant, logger))
	router.Path(resetPath).Methods(http.MethodGet).HandlerFunc(reset(ant, logger))

	router.NotFoundHandler = notFound(logger)

	return router, nil
}

func getState(ant *Ant, logger *zap.SugaredLogger) http.HandlerFunc {
	return errorHandler(logger, func(w http.ResponseWriter, r *http.Request) error {
		return encodeJSONResponse(w, http.StatusOK, ant.State())
	})
}

func step(ant *Ant, logger *zap.SugaredLogger) http.HandlerFunc {
	return errorHandler(logger, func(w http.ResponseWriter, r *http.Request) error {
		// The payload is multi-line JSON, mux query matchers can't be used
		query := r.URL.Query()
		if _, found := query[api.PayloadQueryParam]; !found {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Missing %q query parameter", api.PayloadQueryParam), nil)
		}
		action, err := api.DecodeActionPayload(query.Get(api.PayloadQueryParam))
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, "Invalid action payload", err)
		}

		outcome, err := ant.Step(action)
		if err != nil {
			return NewHTTPError(http.StatusUnprocessableEntity, "Unable to apply the action", err)
		}

		return encodeJSONResponse(w, http.StatusOK, []*StepOutcome{outcome})
	})
}

func reset(ant *Ant, logger *zap.SugaredLogger) http.HandlerFunc {
	return errorHandler(logger, func(w http.ResponseWriter, r *http.Request) error {
		ant.Reset()
		return encodeJSONResponse(w, http.StatusOK, message{fmt.Sprintf("episode %d started", ant.Episodes())})
	})
}

func notFound(logger *zap.SugaredLogger) http.HandlerFunc {
	return errorHandler(logger, func(w http.ResponseWriter, r *http.Request) error {
		return NewHTTPError(http.StatusNotFound, fmt.Sprintf("Unknown route %q", r.URL.Path), nil)
	})
}
