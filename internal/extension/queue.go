package extension

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Kind is the type of a pending wallet request.
type Kind int

const (
	KindConnect Kind = iota + 1
	KindTransaction
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindTransaction:
		return "transaction"
	}
	return "unknown"
}

// Request is something a page asked for that needs the user's decision.
type Request struct {
	ID        uint64
	Kind      Kind
	Origin    string
	Network   string
	From      common.Address
	Tx        *types.Transaction // unsigned; nil for connect requests
	CreatedAt time.Time

	decision chan bool
}

// queue holds pending requests. changed is closed and replaced whenever a
// request is added so waiters can block without polling.
type queue struct {
	qmu       sync.Mutex
	nextID    uint64
	pending   []*Request
	changed   chan struct{}
	published chan Request
}

func newQueue() *queue {
	return &queue{
		changed:   make(chan struct{}),
		published: make(chan Request, 16),
	}
}

func (q *queue) enqueue(r *Request) *Request {
	q.qmu.Lock()
	defer q.qmu.Unlock()
	q.nextID++
	r.ID = q.nextID
	r.CreatedAt = time.Now()
	r.decision = make(chan bool, 1)
	q.pending = append(q.pending, r)

	close(q.changed)
	q.changed = make(chan struct{})

	select {
	case q.published <- *r:
	default:
	}
	return r
}

// take removes the request with id from the queue.
func (q *queue) take(id uint64) (*Request, bool) {
	q.qmu.Lock()
	defer q.qmu.Unlock()
	for i, r := range q.pending {
		if r.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return r, true
		}
	}
	return nil, false
}

// waitFor blocks until a request of kind is pending and returns the oldest.
func (q *queue) waitFor(ctx context.Context, kind Kind) (*Request, bool) {
	for {
		q.qmu.Lock()
		for _, r := range q.pending {
			if r.Kind == kind {
				q.qmu.Unlock()
				return r, true
			}
		}
		changed := q.changed
		q.qmu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-changed:
		}
	}
}

// await blocks the requester until the request is decided. A requester that
// gives up withdraws its request.
func (q *queue) await(ctx context.Context, r *Request) (bool, error) {
	select {
	case ok := <-r.decision:
		return ok, nil
	case <-ctx.Done():
		q.take(r.ID)
		return false, ctx.Err()
	}
}

// Pending returns a snapshot of undecided requests, oldest first.
func (q *queue) Pending() []Request {
	q.qmu.Lock()
	defer q.qmu.Unlock()
	out := make([]Request, len(q.pending))
	for i, r := range q.pending {
		out[i] = *r
	}
	return out
}

// Requests publishes each new request. Slow readers miss requests; Pending
// always has the full list.
func (q *queue) Requests() <-chan Request {
	return q.published
}

// Approve accepts the request with id.
func (q *queue) Approve(id uint64) error {
	return q.decide(id, true)
}

// Reject declines the request with id.
func (q *queue) Reject(id uint64) error {
	return q.decide(id, false)
}

func (q *queue) decide(id uint64, ok bool) error {
	r, found := q.take(id)
	if !found {
		return ErrRequestNotFound
	}
	r.decision <- ok
	return nil
}

// Expire rejects every request that has been pending longer than maxAge and
// returns how many it rejected.
func (q *queue) Expire(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	n := 0
	for _, r := range q.Pending() {
		if r.CreatedAt.Before(cutoff) && q.decide(r.ID, false) == nil {
			n++
		}
	}
	return n
}
