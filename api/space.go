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
	"fmt"
	"math"
	"math/rand"
)

// Box is a bounded box in R^n, each dimension i lies in [Low[i], High[i]].
//
// Bounds may be infinite, the observation space of a remote simulator is
// typically declared as an unbounded Box.
type Box struct {
	Low  []float64 `json:"low" yaml:"low"`
	High []float64 `json:"high" yaml:"high"`
}

// NewBox creates a box of the given size with the same bounds in every dimension
func NewBox(size int, low float64, high float64) *Box {
	b := &Box{
		Low:  make([]float64, size),
		High: make([]float64, size),
	}
	for i := 0; i < size; i++ {
		b.Low[i] = low
		b.High[i] = high
	}
	return b
}

// NewSymmetricBox creates a box of the given size bounded by [-bound, bound] in every dimension
func NewSymmetricBox(size int, bound float64) *Box {
	return NewBox(size, -bound, bound)
}

// NewUnboundedBox creates a box of the given size bounded by [-inf, inf] in every dimension
func NewUnboundedBox(size int) *Box {
	return NewBox(size, math.Inf(-1), math.Inf(1))
}

// Shape returns the number of dimensions of the box
func (b *Box) Shape() int {
	return len(b.Low)
}

// Contains returns whether x has the right size and lies within the bounds
func (b *Box) Contains(x []float64) bool {
	if len(x) != b.Shape() {
		return false
	}
	for i, v := range x {
		if math.IsNaN(v) || v < b.Low[i] || v > b.High[i] {
			return false
		}
	}
	return true
}

// Clip returns a copy of x with every element clamped to the bounds.
//
// Elements beyond the box dimensions are copied as is.
func (b *Box) Clip(x []float64) []float64 {
	clipped := make([]float64, len(x))
	for i, v := range x {
		if i < b.Shape() {
			v = math.Max(b.Low[i], math.Min(b.High[i], v))
		}
		clipped[i] = v
	}
	return clipped
}

// Zero returns a zero vector of the box dimensions
func (b *Box) Zero() []float64 {
	return make([]float64, b.Shape())
}

// Sample draws a random point from the box.
//
// Bounded dimensions are sampled uniformly, half-bounded ones from a shifted
// exponential and unbounded ones from a standard normal distribution.
func (b *Box) Sample(rng *rand.Rand) []float64 {
	sample := make([]float64, b.Shape())
	for i := range sample {
		low, high := b.Low[i], b.High[i]
		lowBounded := !math.IsInf(low, -1)
		highBounded := !math.IsInf(high, 1)
		switch {
		case lowBounded && highBounded:
			sample[i] = low + rng.Float64()*(high-low)
		case lowBounded:
			sample[i] = low + rng.ExpFloat64()
		case highBounded:
			sample[i] = high - rng.ExpFloat64()
		default:
			sample[i] = rng.NormFloat64()
		}
	}
	return sample
}

func (b *Box) String() string {
	if b.Shape() == 0 {
		return "Box((0,))"
	}
	low, high := b.Low[0], b.High[0]
	for i := 1; i < b.Shape(); i++ {
		if b.Low[i] != low || b.High[i] != high {
			return fmt.Sprintf("Box(%v, %v, (%d,))", b.Low, b.High, b.Shape())
		}
	}
	return fmt.Sprintf("Box(%g, %g, (%d,))", low, high, b.Shape())
}
