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

package utils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDFilter(t *testing.T) {
	all := NewIDFilter([]string{})
	assert.True(t, all.SelectsAll())
	assert.True(t, all.Selects("anything"))

	blank := NewIDFilter([]string{""})
	assert.True(t, blank.SelectsAll())

	some := NewIDFilter([]string{"foo", "bar", "foo"})
	assert.False(t, some.SelectsAll())
	assert.Equal(t, 2, some.Len())
	assert.True(t, some.Selects("foo"))
	assert.True(t, some.Selects("bar"))
	assert.False(t, some.Selects("baz"))
}

func TestObservableListItems(t *testing.T) {
	l := NewObservableList[string]()
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Ended())

	_, found := l.Item(0)
	assert.False(t, found)

	assert.True(t, l.Append("foo", false))
	assert.True(t, l.Append("bar", true))
	assert.False(t, l.Append("baz", false))

	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Ended())
	item, found := l.Item(1)
	assert.True(t, found)
	assert.Equal(t, "bar", item)
	_, found = l.Item(2)
	assert.False(t, found)
	_, found = l.Item(-1)
	assert.False(t, found)
	assert.Equal(t, []string{"foo", "bar"}, l.Items())
}

func TestObservableListObserveEnded(t *testing.T) {
	l := NewObservableList[int]()
	for i := 0; i < 5; i++ {
		l.Append(i, i == 4)
	}

	out := make(chan int, 10)
	err := l.Observe(context.Background(), 2, out)
	assert.NoError(t, err)
	close(out)

	received := []int{}
	for i := range out {
		received = append(received, i)
	}
	assert.Equal(t, []int{2, 3, 4}, received)
}

func TestObservableListObserveGrowing(t *testing.T) {
	l := NewObservableList[int]()
	l.Append(0, false)

	out := make(chan int)
	received := []int{}
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range out {
			received = append(received, i)
		}
	}()

	done := make(chan error)
	go func() {
		err := l.Observe(context.Background(), 0, out)
		close(out)
		done <- err
	}()

	for i := 1; i < 100; i++ {
		l.Append(i, false)
	}
	l.End()

	assert.NoError(t, <-done)
	wg.Wait()
	assert.Len(t, received, 100)
	for i, value := range received {
		assert.Equal(t, i, value)
	}
}

func TestObservableListObserveCanceled(t *testing.T) {
	l := NewObservableList[int]()
	l.Append(0, false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out := make(chan int, 10)
	err := l.Observe(ctx, 0, out)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, <-out)
}

func TestObservableListClear(t *testing.T) {
	l := NewObservableList[int]()
	l.Append(1, false)
	l.Append(2, false)

	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.True(t, l.Ended())

	out := make(chan int, 1)
	assert.NoError(t, l.Observe(context.Background(), 1, out))
	assert.Len(t, out, 0)
}
