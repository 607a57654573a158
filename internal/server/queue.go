package server

import (
	"github.com/elderford/realmcore/internal/netcode"
)

// inputQueueCap bounds the per-player inbound command queue. A player who
// floods commands faster than the tick rate has its oldest un-consumed
// commands dropped rather than the queue growing without bound.
const inputQueueCap = 32

// InputQueue holds the commands one player has sent but the tick loop
// hasn't consumed yet, plus the last-processed sequence for staleness
// checks.
type InputQueue struct {
	pending               []netcode.InputCommand
	lastProcessedSequence uint16
	hasProcessed          bool
}

// NewInputQueue constructs an empty queue.
func NewInputQueue() *InputQueue {
	return &InputQueue{}
}

// Push enqueues a freshly-received command, dropping the oldest pending
// command if the queue is at capacity.
func (q *InputQueue) Push(cmd netcode.InputCommand) {
	if len(q.pending) >= inputQueueCap {
		q.pending = q.pending[1:]
	}
	q.pending = append(q.pending, cmd)
}

// PopOldestNonStale consumes at most one command per call: the oldest
// pending command that isn't stale relative to the last processed
// sequence. Stale commands encountered along the way are discarded.
// Returns ok=false if no non-stale command is pending.
func (q *InputQueue) PopOldestNonStale() (cmd netcode.InputCommand, ok bool) {
	for len(q.pending) > 0 {
		next := q.pending[0]
		q.pending = q.pending[1:]

		if q.hasProcessed && netcode.IsStale(next.Sequence, q.lastProcessedSequence) {
			continue
		}

		q.lastProcessedSequence = next.Sequence
		q.hasProcessed = true
		return next, true
	}
	return netcode.InputCommand{}, false
}

// LastProcessedSequence returns the last sequence number consumed.
func (q *InputQueue) LastProcessedSequence() uint16 {
	return q.lastProcessedSequence
}
