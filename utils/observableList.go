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
)

type observer chan struct{}

// ObservableList is an append only list whose items can be streamed while it grows.
//
// Once ended, no further item can be appended and observations complete.
type ObservableList[T any] struct {
	mu        sync.RWMutex
	items     []T
	ended     bool
	observers map[observer]struct{}
}

func NewObservableList[T any]() *ObservableList[T] {
	return &ObservableList[T]{
		items:     make([]T, 0),
		ended:     false,
		observers: make(map[observer]struct{}),
	}
}

func (l *ObservableList[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *ObservableList[T]) Ended() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ended
}

func (l *ObservableList[T]) Item(index int) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[index], true
}

// Items returns a copy of the current items
func (l *ObservableList[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return items
}

// Append adds an item, ending the list if it is the last one.
//
// Returns false, leaving the list untouched, if the list already ended.
func (l *ObservableList[T]) Append(item T, last bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ended {
		return false
	}
	l.items = append(l.items, item)
	l.ended = last
	l.notify()
	return true
}

// End ends the list without appending anything
func (l *ObservableList[T]) End() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ended {
		return
	}
	l.ended = true
	l.notify()
}

// Clear drops every item and ends the list
func (l *ObservableList[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make([]T, 0)
	l.ended = true
	l.notify()
}

// notify must be called with the lock held
func (l *ObservableList[T]) notify() {
	for o := range l.observers {
		select {
		case o <- struct{}{}:
		default:
			// A notification is already pending
		}
	}
}

func (l *ObservableList[T]) registerObserver() observer {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := make(observer, 1)
	l.observers[o] = struct{}{}
	return o
}

func (l *ObservableList[T]) unregisterObserver(o observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.observers, o)
}

// Observe sends to `out` every item from index `from`, including the ones appended later,
// and returns once the list ended or the context is done.
func (l *ObservableList[T]) Observe(ctx context.Context, from int, out chan<- T) error {
	if from < 0 {
		from = 0
	}
	o := l.registerObserver()
	defer l.unregisterObserver(o)

	i := from
	for {
		// Read everything up to the current count
		l.mu.RLock()
		var pending []T
		if i < len(l.items) {
			pending = l.items[i:]
		}
		ended := l.ended
		l.mu.RUnlock()

		for _, item := range pending {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- item:
			}
		}
		i += len(pending)

		if ended {
			return nil
		}

		// Block until there's some update
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o:
		}
	}
}
