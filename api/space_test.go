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

package api

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxContains(t *testing.T) {
	box := NewSymmetricBox(3, 5)

	assert.True(t, box.Contains([]float64{0, -5, 5}))
	assert.False(t, box.Contains([]float64{0, -5, 5.1}))
	assert.False(t, box.Contains([]float64{0, 0}))
	assert.False(t, box.Contains([]float64{0, 0, math.NaN()}))
}

func TestBoxClip(t *testing.T) {
	box := NewSymmetricBox(3, 5)
	action := []float64{-12, 3, 7}

	clipped := box.Clip(action)

	assert.Equal(t, []float64{-5, 3, 5}, clipped)
	assert.Equal(t, []float64{-12, 3, 7}, action)

	assert.Equal(t, []float64{5, 0, 0, 42}, box.Clip([]float64{6, 0, 0, 42}))
}

func TestBoxSample(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	bounded := NewSymmetricBox(16, 5)
	for i := 0; i < 100; i++ {
		assert.True(t, bounded.Contains(bounded.Sample(rng)))
	}

	unbounded := NewUnboundedBox(69)
	sample := unbounded.Sample(rng)
	assert.Len(t, sample, 69)
	assert.True(t, unbounded.Contains(sample))

	halfBounded := &Box{Low: []float64{1}, High: []float64{math.Inf(1)}}
	assert.GreaterOrEqual(t, halfBounded.Sample(rng)[0], 1.0)
}

func TestBoxString(t *testing.T) {
	assert.Equal(t, "Box(-10, 10, (10,))", NewSymmetricBox(10, 10).String())
	assert.Equal(t, "Box(-Inf, +Inf, (69,))", NewUnboundedBox(69).String())
	assert.Equal(t, "Box([0 1], [1 2], (2,))", (&Box{Low: []float64{0, 1}, High: []float64{1, 2}}).String())
}

func TestBoxZero(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0, 0}, NewSymmetricBox(4, 1).Zero())
}
