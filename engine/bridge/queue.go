package bridge

import (
	"sync"
)

// Queue is the keyboard replay queue filled by listeners and drained by the render goroutine
// once per frame. It has its own lock so keyboard traffic never waits on the interaction lock.
type Queue interface {
	// Push appends characters in arrival order.
	//
	// Parameters:
	//   - chars: the characters to queue
	Push(chars string)

	// Drain returns every queued character and empties the queue.
	//
	// Returns:
	//   - []rune: the characters in arrival order, nil if none were queued
	Drain() []rune

	// Len returns the number of queued characters.
	//
	// Returns:
	//   - int: the queue length
	Len() int
}

type queue struct {
	mu *sync.Mutex

	chars []rune
}

// Ensure queue implements Queue interface.
var _ Queue = &queue{}

// NewQueue creates an empty keyboard queue.
//
// Returns:
//   - Queue: the newly created queue
func NewQueue() Queue {
	return &queue{mu: &sync.Mutex{}}
}

func (q *queue) Push(chars string) {
	if chars == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.chars = append(q.chars, []rune(chars)...)
}

func (q *queue) Drain() []rune {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.chars) == 0 {
		return nil
	}
	out := make([]rune, len(q.chars))
	copy(out, q.chars)
	q.chars = q.chars[:0]
	return out
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chars)
}
