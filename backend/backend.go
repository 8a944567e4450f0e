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

package backend

import (
	"context"
)

// Backend defines the interface for an episode trajectory backend
type Backend interface {
	Destroy()

	StartEpisode(ctx context.Context, params *EpisodeParams) (*EpisodeInfo, error)
	AddTransitions(ctx context.Context, transitions []*Transition) error
	EndEpisode(ctx context.Context, episodeID string, status EpisodeStatus) (*EpisodeInfo, error)

	RetrieveEpisodes(ctx context.Context, filter []string, fromEpisodeIdx int, count int) (EpisodesInfoResult, error)
	// ObserveTransitions streams the transitions of the given episodes, one episode after the other.
	// It only returns once every episode ended.
	ObserveTransitions(ctx context.Context, episodeIDs []string, out chan<- *Transition) error
	DeleteEpisodes(ctx context.Context, episodeIDs []string) error
}
