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

package rollout

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/cogment/cogment-bevy-env/backend"
)

// ExportedEpisode is the YAML rendition of a recorded episode
type ExportedEpisode struct {
	backend.EpisodeInfo `yaml:",inline"`
	Transitions         []*backend.Transition `yaml:"transitions"`
}

type exportDocument struct {
	Episodes []*ExportedEpisode `yaml:"episodes"`
}

func collectTransitions(ctx context.Context, b backend.Backend, episodeID string) ([]*backend.Transition, error) {
	transitions := []*backend.Transition{}
	out := make(chan *backend.Transition)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(out)
		return b.ObserveTransitions(ctx, []string{episodeID}, out)
	})
	g.Go(func() error {
		for transition := range out {
			transitions = append(transitions, transition)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return transitions, nil
}

// Export writes the finished episodes selected by the filter as a YAML document.
//
// Running episodes are skipped, evicted ones are exported without transitions.
func Export(ctx context.Context, w io.Writer, b backend.Backend, filter backend.TransitionFilter) error {
	result, err := b.RetrieveEpisodes(ctx, filter.EpisodeIDs, 0, -1)
	if err != nil {
		return err
	}

	appliedFilter := backend.NewAppliedTransitionFilter(filter)
	document := exportDocument{Episodes: []*ExportedEpisode{}}
	for _, info := range result.EpisodeInfos {
		if info.Status == backend.EpisodeRunning || !appliedFilter.SelectsEpisode(info) {
			continue
		}
		transitions, err := collectTransitions(ctx, b, info.EpisodeID)
		if err != nil {
			return err
		}
		for i, transition := range transitions {
			transitions[i] = appliedFilter.Filter(transition)
		}
		document.Episodes = append(document.Episodes, &ExportedEpisode{
			EpisodeInfo: *info,
			Transitions: transitions,
		})
	}

	encoder := yaml.NewEncoder(w)
	if err := encoder.Encode(&document); err != nil {
		return err
	}
	return encoder.Close()
}
