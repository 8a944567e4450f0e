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
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/cogment/cogment-bevy-env/utils"
)

type episodeData struct {
	params           *EpisodeParams
	status           EpisodeStatus
	startedAt        time.Time
	endedAt          time.Time
	transitions      *utils.ObservableList[*Transition]
	transitionsCount int
	totalReward      float64
	evListElement    *list.Element // Element corresponding to this episode in the eviction list, only finished episodes are evictable
	evicted          bool
	deleted          bool
}

func createEpisodeInfo(data *episodeData) *EpisodeInfo {
	info := &EpisodeInfo{
		EpisodeID:              data.params.EpisodeID,
		EnvIndex:               data.params.EnvIndex,
		Simulator:              data.params.Simulator,
		Status:                 data.status,
		StartedAt:              data.startedAt,
		EndedAt:                data.endedAt,
		TransitionsCount:       data.transitionsCount,
		StoredTransitionsCount: 0,
		TotalReward:            data.totalReward,
	}
	if !data.evicted {
		info.StoredTransitionsCount = data.transitions.Len()
	}
	return info
}

type memoryBackend struct {
	episodes             map[string]*episodeData
	episodesEvList       *list.List // finished episodes eviction list, front is recently used, back is least recently used
	episodesMutex        sync.Mutex
	episodeIDs           *utils.ObservableList[string]
	storedTransitions    int
	maxStoredTransitions int
}

// DefaultMaxStoredTransitions is the default capacity of the memory backend
const DefaultMaxStoredTransitions = 1000000

// CreateMemoryBackend creates a Backend that will store at most "maxStoredTransitions" transitions.
//
// Transitions of running episodes are never evicted, a non positive maximum disables eviction.
func CreateMemoryBackend(maxStoredTransitions int) (Backend, error) {
	backend := &memoryBackend{
		episodes:             make(map[string]*episodeData),
		episodesEvList:       list.New(),
		episodeIDs:           utils.NewObservableList[string](),
		storedTransitions:    0,
		maxStoredTransitions: maxStoredTransitions,
	}

	return backend, nil
}

// Destroy terminates the underlying storage
func (b *memoryBackend) Destroy() {
	b.episodesMutex.Lock()
	defer b.episodesMutex.Unlock()
	for _, data := range b.episodes {
		data.transitions.End()
	}
	b.episodeIDs.End()
}

// retrieveEpisodeData must be called with the lock held
func (b *memoryBackend) retrieveEpisodeData(episodeID string) (*episodeData, error) {
	data, exists := b.episodes[episodeID]
	if !exists || data.deleted {
		return nil, &UnknownEpisodeError{EpisodeID: episodeID}
	}
	if data.evListElement != nil {
		b.episodesEvList.MoveToFront(data.evListElement)
	}
	return data, nil
}

func (b *memoryBackend) StartEpisode(ctx context.Context, params *EpisodeParams) (*EpisodeInfo, error) {
	b.episodesMutex.Lock()
	defer b.episodesMutex.Unlock()

	if _, exists := b.episodes[params.EpisodeID]; exists {
		return nil, &EpisodeAlreadyExistsError{EpisodeID: params.EpisodeID}
	}
	paramsCopy := *params
	data := &episodeData{
		params:      &paramsCopy,
		status:      EpisodeRunning,
		startedAt:   time.Now(),
		transitions: utils.NewObservableList[*Transition](),
	}
	b.episodes[params.EpisodeID] = data
	b.episodeIDs.Append(params.EpisodeID, false)
	return createEpisodeInfo(data), nil
}

func (b *memoryBackend) AddTransitions(ctx context.Context, transitions []*Transition) error {
	b.episodesMutex.Lock()
	defer b.episodesMutex.Unlock()

	// Check everything first, transitions are added all or nothing
	datas := make([]*episodeData, len(transitions))
	for idx, transition := range transitions {
		data, err := b.retrieveEpisodeData(transition.EpisodeID)
		if err != nil {
			return err
		}
		if data.status != EpisodeRunning {
			return &EpisodeEndedError{EpisodeID: transition.EpisodeID, Status: data.status}
		}
		datas[idx] = data
	}

	for idx, transition := range transitions {
		data := datas[idx]
		data.transitions.Append(transition, false)
		data.transitionsCount++
		data.totalReward += transition.Reward
	}
	b.storedTransitions += len(transitions)
	b.evict()
	return nil
}

func (b *memoryBackend) EndEpisode(ctx context.Context, episodeID string, status EpisodeStatus) (*EpisodeInfo, error) {
	b.episodesMutex.Lock()
	defer b.episodesMutex.Unlock()

	data, err := b.retrieveEpisodeData(episodeID)
	if err != nil {
		return nil, err
	}
	if data.status != EpisodeRunning {
		return nil, &EpisodeEndedError{EpisodeID: episodeID, Status: data.status}
	}
	if status == EpisodeRunning {
		status = EpisodeInterrupted
	}

	data.status = status
	data.endedAt = time.Now()
	data.transitions.End()
	data.evListElement = b.episodesEvList.PushFront(episodeID)
	b.evict()
	return createEpisodeInfo(data), nil
}

// evict drops the transitions of the least recently used finished episodes until
// the stored transitions fit. It must be called with the lock held.
func (b *memoryBackend) evict() {
	if b.maxStoredTransitions <= 0 {
		return
	}
	for b.storedTransitions > b.maxStoredTransitions {
		element := b.episodesEvList.Back()
		if element == nil {
			// Only running episodes left
			return
		}
		data := b.episodes[element.Value.(string)]
		b.episodesEvList.Remove(element)
		data.evListElement = nil
		b.storedTransitions -= data.transitions.Len()
		data.transitions.Clear()
		data.evicted = true
	}
}

func (b *memoryBackend) preprocessRetrieveEpisodesArgs(filter []string, fromEpisodeIdx int, count int) (utils.IDFilter, int, int) {
	selectedEpisodeIDs := utils.NewIDFilter(filter)

	if fromEpisodeIdx < 0 {
		fromEpisodeIdx = 0
	}

	if count <= 0 {
		count = b.episodeIDs.Len()
		if !selectedEpisodeIDs.SelectsAll() && count > selectedEpisodeIDs.Len() {
			count = selectedEpisodeIDs.Len()
		}
	}

	return selectedEpisodeIDs, fromEpisodeIdx, count
}

func (b *memoryBackend) RetrieveEpisodes(ctx context.Context, filter []string, fromEpisodeIdx int, count int) (EpisodesInfoResult, error) {
	selectedEpisodeIDs, fromEpisodeIdx, count := b.preprocessRetrieveEpisodesArgs(filter, fromEpisodeIdx, count)

	result := EpisodesInfoResult{
		EpisodeInfos:   []*EpisodeInfo{},
		NextEpisodeIdx: fromEpisodeIdx,
	}

	b.episodesMutex.Lock()
	defer b.episodesMutex.Unlock()

	// List the current episodes
	episodeIDs := b.episodeIDs.Items()
	for episodeIdx := fromEpisodeIdx; episodeIdx < len(episodeIDs); episodeIdx++ {
		if len(result.EpisodeInfos) >= count {
			break
		}
		episodeID := episodeIDs[episodeIdx]
		data := b.episodes[episodeID]
		if data.deleted || !selectedEpisodeIDs.Selects(episodeID) {
			continue
		}
		result.EpisodeInfos = append(result.EpisodeInfos, createEpisodeInfo(data))
		result.NextEpisodeIdx = episodeIdx + 1
	}

	return result, nil
}

func (b *memoryBackend) ObserveTransitions(ctx context.Context, episodeIDs []string, out chan<- *Transition) error {
	b.episodesMutex.Lock()
	datas := make([]*episodeData, len(episodeIDs))
	for idx, episodeID := range episodeIDs {
		data, err := b.retrieveEpisodeData(episodeID)
		if err != nil {
			b.episodesMutex.Unlock()
			return err
		}
		datas[idx] = data
	}
	b.episodesMutex.Unlock()

	for _, data := range datas {
		if err := data.transitions.Observe(ctx, 0, out); err != nil {
			return err
		}
	}
	return nil
}

func (b *memoryBackend) DeleteEpisodes(ctx context.Context, episodeIDs []string) error {
	b.episodesMutex.Lock()
	defer b.episodesMutex.Unlock()
	for _, episodeID := range episodeIDs {
		data, exists := b.episodes[episodeID]
		if !exists || data.deleted {
			continue
		}
		if data.evListElement != nil {
			b.episodesEvList.Remove(data.evListElement)
			data.evListElement = nil
		}
		if !data.evicted {
			b.storedTransitions -= data.transitions.Len()
		}
		data.transitions.Clear()
		data.deleted = true
	}
	return nil
}
