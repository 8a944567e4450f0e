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
	"fmt"
	"sort"
	"strings"

	"github.com/cogment/cogment-bevy-env/utils"
)

// TransitionField is a field of a transition that can be filtered out
type TransitionField int

const (
	TransitionObservationField TransitionField = iota + 1
	TransitionActionField
)

var transitionFieldNames = map[string]TransitionField{
	"observation": TransitionObservationField,
	"action":      TransitionActionField,
}

// TransitionFieldNames lists the names accepted by ParseTransitionFields
func TransitionFieldNames() []string {
	names := make([]string, 0, len(transitionFieldNames))
	for name := range transitionFieldNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransitionFields converts field names to transition fields
func ParseTransitionFields(names []string) ([]TransitionField, error) {
	fields := make([]TransitionField, 0, len(names))
	for _, name := range names {
		field, ok := transitionFieldNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown transition field %q, expected one of %s", name, strings.Join(TransitionFieldNames(), ", "))
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// TransitionFilter represents the arguments to filter requested episodes and their transitions
type TransitionFilter struct {
	EpisodeIDs []string
	Statuses   []EpisodeStatus
	Simulators []string
	// Fields kept in the transitions, every field when empty
	Fields []TransitionField
}

// AppliedTransitionFilter is a TransitionFilter ready to be matched against episodes and transitions
type AppliedTransitionFilter struct {
	statusesFilter   utils.IDFilter
	simulatorsFilter utils.IDFilter
	fieldsFilter     *idxFilter
}

func newFieldsFilter(fields []TransitionField) *idxFilter {
	fieldsFilter := newIdxFilter([]int{})
	for _, field := range fields {
		fieldsFilter.add(int(field))
	}
	if len(transitionFieldNames) == len(*fieldsFilter) {
		return newIdxFilter([]int{})
	}
	return fieldsFilter
}

func NewAppliedTransitionFilter(filter TransitionFilter) *AppliedTransitionFilter {
	statuses := make([]string, len(filter.Statuses))
	for i, status := range filter.Statuses {
		statuses[i] = string(status)
	}
	return &AppliedTransitionFilter{
		statusesFilter:   utils.NewIDFilter(statuses),
		simulatorsFilter: utils.NewIDFilter(filter.Simulators),
		fieldsFilter:     newFieldsFilter(filter.Fields),
	}
}

// SelectsEpisode returns whether the episode matches the status and simulator filters
func (f *AppliedTransitionFilter) SelectsEpisode(info *EpisodeInfo) bool {
	return f.statusesFilter.Selects(string(info.Status)) && f.simulatorsFilter.Selects(info.Simulator)
}

func (f *AppliedTransitionFilter) SelectsAllFields() bool {
	return f.fieldsFilter.selectsAll()
}

// Filter returns the transition restricted to the selected fields, the transition itself when every field is selected
func (f *AppliedTransitionFilter) Filter(transition *Transition) *Transition {
	if f.fieldsFilter.selectsAll() {
		return transition
	}

	// Copy the base
	filteredTransition := Transition{
		EpisodeID:  transition.EpisodeID,
		Step:       transition.Step,
		Reward:     transition.Reward,
		Terminated: transition.Terminated,
		Truncated:  transition.Truncated,
	}

	if f.fieldsFilter.selects(int(TransitionObservationField)) {
		filteredTransition.Observation = transition.Observation
	}
	if f.fieldsFilter.selects(int(TransitionActionField)) {
		filteredTransition.Action = transition.Action
	}

	return &filteredTransition
}

type idxFilter map[int]struct{}

func newIdxFilter(selectedIdxs []int) *idxFilter {
	f := make(idxFilter)
	for _, idx := range selectedIdxs {
		f[idx] = struct{}{}
	}
	return &f
}

func (f *idxFilter) add(idx int) {
	(*f)[idx] = struct{}{}
}

func (f *idxFilter) selectsAll() bool {
	return len(*f) == 0
}

func (f *idxFilter) selects(idx int) bool {
	if len(*f) == 0 {
		return true
	}
	_, isSelected := (*f)[idx]
	return isSelected
}
