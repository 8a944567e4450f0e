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

package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cogment/cogment-bevy-env/api"
	"github.com/cogment/cogment-bevy-env/backend"
)

// GenerateTransitions creates `count` transitions for the given episode, the last one terminating it if `terminated`
func GenerateTransitions(episodeID string, from int, count int, terminated bool) []*backend.Transition {
	transitions := make([]*backend.Transition, count)
	for i := 0; i < count; i++ {
		step := from + i
		transitions[i] = &backend.Transition{
			EpisodeID:   episodeID,
			Step:        step,
			Observation: api.Observation{float64(step), float64(step) / 2},
			Action:      api.Action{0.5},
			Reward:      1,
			Terminated:  terminated && i == count-1,
		}
	}
	return transitions
}

func startEpisodes(t *testing.T, b backend.Backend, episodeIDs ...string) {
	for idx, episodeID := range episodeIDs {
		_, err := b.StartEpisode(context.Background(), &backend.EpisodeParams{
			EpisodeID: episodeID,
			EnvIndex:  idx,
			Simulator: fmt.Sprintf("http://127.0.0.1:%d", 7878+idx),
		})
		assert.NoError(t, err)
	}
}

// RunSuite runs the full backend test suite
func RunSuite(t *testing.T, createBackend func() backend.Backend) {
	cases := []struct {
		name string
		test func(t *testing.T)
	}{
		{
			name: "TestCreateAndDestroyBackend",
			test: func(t *testing.T) {
				b := createBackend()
				assert.NotNil(t, b)
				b.Destroy()
			},
		},
		{
			name: "TestStartEpisode",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				info, err := b.StartEpisode(context.Background(), &backend.EpisodeParams{EpisodeID: "foo", EnvIndex: 3, Simulator: "http://sim:7878"})
				assert.NoError(t, err)
				assert.Equal(t, "foo", info.EpisodeID)
				assert.Equal(t, 3, info.EnvIndex)
				assert.Equal(t, "http://sim:7878", info.Simulator)
				assert.Equal(t, backend.EpisodeRunning, info.Status)
				assert.Equal(t, 0, info.TransitionsCount)
				assert.False(t, info.StartedAt.IsZero())

				// Starting a duplicate should fail
				_, err = b.StartEpisode(context.Background(), &backend.EpisodeParams{EpisodeID: "foo"})
				expectedErr := &backend.EpisodeAlreadyExistsError{}
				assert.ErrorAs(t, err, &expectedErr)
				assert.Equal(t, "foo", expectedErr.EpisodeID)
				assert.EqualError(t, err, "episode \"foo\" already exists")
			},
		},
		{
			name: "TestAddTransitions",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				startEpisodes(t, b, "foo", "bar")

				err := b.AddTransitions(context.Background(), append(GenerateTransitions("foo", 0, 3, false), GenerateTransitions("bar", 0, 2, false)...))
				assert.NoError(t, err)

				// Unknown episodes make the whole batch fail
				err = b.AddTransitions(context.Background(), append(GenerateTransitions("foo", 3, 1, false), GenerateTransitions("baz", 0, 1, false)...))
				{
					concreteErr := &backend.UnknownEpisodeError{}
					assert.ErrorAs(t, err, &concreteErr)
					assert.Equal(t, "baz", concreteErr.EpisodeID)
				}
				assert.EqualError(t, err, "no episode \"baz\" found")

				result, err := b.RetrieveEpisodes(context.Background(), []string{"foo", "bar"}, 0, -1)
				assert.NoError(t, err)
				assert.Len(t, result.EpisodeInfos, 2)
				assert.Equal(t, 3, result.EpisodeInfos[0].TransitionsCount)
				assert.Equal(t, 3, result.EpisodeInfos[0].StoredTransitionsCount)
				assert.Equal(t, 3.0, result.EpisodeInfos[0].TotalReward)
				assert.Equal(t, 2, result.EpisodeInfos[1].TransitionsCount)
			},
		},
		{
			name: "TestEndEpisode",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				startEpisodes(t, b, "foo")
				err := b.AddTransitions(context.Background(), GenerateTransitions("foo", 0, 4, true))
				assert.NoError(t, err)

				info, err := b.EndEpisode(context.Background(), "foo", backend.EpisodeTerminated)
				assert.NoError(t, err)
				assert.Equal(t, backend.EpisodeTerminated, info.Status)
				assert.Equal(t, 4, info.TransitionsCount)
				assert.False(t, info.EndedAt.Before(info.StartedAt))

				_, err = b.EndEpisode(context.Background(), "foo", backend.EpisodeTruncated)
				{
					concreteErr := &backend.EpisodeEndedError{}
					assert.ErrorAs(t, err, &concreteErr)
					assert.Equal(t, backend.EpisodeTerminated, concreteErr.Status)
				}

				err = b.AddTransitions(context.Background(), GenerateTransitions("foo", 4, 1, false))
				{
					concreteErr := &backend.EpisodeEndedError{}
					assert.ErrorAs(t, err, &concreteErr)
					assert.Equal(t, "foo", concreteErr.EpisodeID)
				}

				_, err = b.EndEpisode(context.Background(), "bar", backend.EpisodeTerminated)
				{
					concreteErr := &backend.UnknownEpisodeError{}
					assert.ErrorAs(t, err, &concreteErr)
				}
			},
		},
		{
			name: "TestEndEpisodeAsRunning",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				startEpisodes(t, b, "foo")
				info, err := b.EndEpisode(context.Background(), "foo", backend.EpisodeRunning)
				assert.NoError(t, err)
				assert.Equal(t, backend.EpisodeInterrupted, info.Status)
			},
		},
		{
			name: "TestRetrieveEpisodes",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				result, err := b.RetrieveEpisodes(context.Background(), []string{}, 0, -1)
				assert.NoError(t, err)
				assert.Len(t, result.EpisodeInfos, 0)

				startEpisodes(t, b, "a", "b", "c", "d", "e")

				result, err = b.RetrieveEpisodes(context.Background(), []string{}, 0, -1)
				assert.NoError(t, err)
				assert.Len(t, result.EpisodeInfos, 5)
				assert.Equal(t, 5, result.NextEpisodeIdx)

				result, err = b.RetrieveEpisodes(context.Background(), []string{}, 1, 2)
				assert.NoError(t, err)
				assert.Len(t, result.EpisodeInfos, 2)
				assert.Equal(t, "b", result.EpisodeInfos[0].EpisodeID)
				assert.Equal(t, "c", result.EpisodeInfos[1].EpisodeID)
				assert.Equal(t, 3, result.NextEpisodeIdx)

				result, err = b.RetrieveEpisodes(context.Background(), []string{"e", "a", "z"}, 0, -1)
				assert.NoError(t, err)
				assert.Len(t, result.EpisodeInfos, 2)
				assert.Equal(t, "a", result.EpisodeInfos[0].EpisodeID)
				assert.Equal(t, "e", result.EpisodeInfos[1].EpisodeID)

				result, err = b.RetrieveEpisodes(context.Background(), []string{}, 10, -1)
				assert.NoError(t, err)
				assert.Len(t, result.EpisodeInfos, 0)
			},
		},
		{
			name: "TestDeleteEpisodes",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				startEpisodes(t, b, "foo", "bar", "baz")
				err := b.AddTransitions(context.Background(), GenerateTransitions("bar", 0, 3, false))
				assert.NoError(t, err)

				err = b.DeleteEpisodes(context.Background(), []string{"bar", "unknown"})
				assert.NoError(t, err)

				result, err := b.RetrieveEpisodes(context.Background(), []string{}, 0, -1)
				assert.NoError(t, err)
				assert.Len(t, result.EpisodeInfos, 2)
				assert.Equal(t, "foo", result.EpisodeInfos[0].EpisodeID)
				assert.Equal(t, "baz", result.EpisodeInfos[1].EpisodeID)

				err = b.AddTransitions(context.Background(), GenerateTransitions("bar", 3, 1, false))
				{
					concreteErr := &backend.UnknownEpisodeError{}
					assert.ErrorAs(t, err, &concreteErr)
				}
			},
		},
		{
			name: "TestObserveEndedTransitions",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				startEpisodes(t, b, "foo", "bar")
				err := b.AddTransitions(context.Background(), GenerateTransitions("foo", 0, 3, true))
				assert.NoError(t, err)
				err = b.AddTransitions(context.Background(), GenerateTransitions("bar", 0, 2, false))
				assert.NoError(t, err)
				_, err = b.EndEpisode(context.Background(), "foo", backend.EpisodeTerminated)
				assert.NoError(t, err)
				_, err = b.EndEpisode(context.Background(), "bar", backend.EpisodeTruncated)
				assert.NoError(t, err)

				out := make(chan *backend.Transition, 10)
				err = b.ObserveTransitions(context.Background(), []string{"bar", "foo"}, out)
				assert.NoError(t, err)
				close(out)

				received := []string{}
				for transition := range out {
					received = append(received, fmt.Sprintf("%s-%d", transition.EpisodeID, transition.Step))
				}
				assert.Equal(t, []string{"bar-0", "bar-1", "foo-0", "foo-1", "foo-2"}, received)

				err = b.ObserveTransitions(context.Background(), []string{"unknown"}, make(chan *backend.Transition))
				{
					concreteErr := &backend.UnknownEpisodeError{}
					assert.ErrorAs(t, err, &concreteErr)
				}
			},
		},
		{
			name: "TestObserveRunningTransitions",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				startEpisodes(t, b, "foo")

				out := make(chan *backend.Transition)
				done := make(chan error)
				go func() {
					done <- b.ObserveTransitions(context.Background(), []string{"foo"}, out)
				}()

				for i := 0; i < 5; i++ {
					err := b.AddTransitions(context.Background(), GenerateTransitions("foo", i, 1, i == 4))
					assert.NoError(t, err)
					transition := <-out
					assert.Equal(t, i, transition.Step)
				}
				_, err := b.EndEpisode(context.Background(), "foo", backend.EpisodeTerminated)
				assert.NoError(t, err)

				select {
				case err := <-done:
					assert.NoError(t, err)
				case <-time.After(5 * time.Second):
					assert.Fail(t, "observation didn't complete once the episode ended")
				}
			},
		},
		{
			name: "TestObserveCanceled",
			test: func(t *testing.T) {
				b := createBackend()
				defer b.Destroy()

				startEpisodes(t, b, "foo")

				ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
				defer cancel()
				err := b.ObserveTransitions(ctx, []string{"foo"}, make(chan *backend.Transition))
				assert.ErrorIs(t, err, context.DeadlineExceeded)
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, c.test)
	}
}
