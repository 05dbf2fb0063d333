// Package token implements the shared cancellation stamp polled by the tasks
// of a batch.
package token

import (
	"sync"
	"time"
)

// Stamp identifies one generation of a Token. Seq strictly increases on every
// Renew, so two stamps taken within the same clock tick still differ.
type Stamp struct {
	Seq uint64
	At  time.Time
}

// Token is a lock-guarded stamp cell shared by the coordinator and every task
// of a batch. Tasks hold the *Token plus the Stamp they captured at launch.
type Token struct {
	mu    sync.Mutex
	stamp Stamp
}

// New returns a token stamped with the current time.
func New() *Token {
	return &Token{stamp: Stamp{Seq: 1, At: time.Now()}}
}

// Stamp returns the current stamp.
func (t *Token) Stamp() Stamp {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stamp
}

// Renew overwrites the cell with a fresh stamp, invalidating every stamp
// captured before the call.
func (t *Token) Renew() Stamp {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stamp = Stamp{Seq: t.stamp.Seq + 1, At: time.Now()}
	return t.stamp
}

// Valid reports whether initial is still the current stamp.
func (t *Token) Valid(initial Stamp) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stamp.Seq == initial.Seq
}
