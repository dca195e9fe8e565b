// Package aitest provides a scripted Oracle for tests.
package aitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/leadscout/leadscout/internal/ai"
)

// Reply is one canned answer: either Text or Err.
type Reply struct {
	Text string
	Err  error
}

// Oracle replays canned replies in order and records every request.
// Replies are keyed by operation so a test can script discovery and
// validation independently.
type Oracle struct {
	mu       sync.Mutex
	replies  map[string][]Reply
	requests []ai.Request
	name     string
}

var _ ai.Oracle = (*Oracle)(nil)

// New creates an empty scripted oracle.
func New() *Oracle {
	return &Oracle{replies: make(map[string][]Reply), name: "fake"}
}

// On queues a text reply for operation.
func (o *Oracle) On(operation, text string) *Oracle {
	return o.push(operation, Reply{Text: text})
}

// Fail queues an error reply for operation.
func (o *Oracle) Fail(operation string, err error) *Oracle {
	return o.push(operation, Reply{Err: err})
}

func (o *Oracle) push(operation string, r Reply) *Oracle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies[operation] = append(o.replies[operation], r)
	return o
}

// Name implements ai.Oracle.
func (o *Oracle) Name() string { return o.name }

// Generate implements ai.Oracle. An unscripted call is an error so tests
// notice calls they did not expect.
func (o *Oracle) Generate(ctx context.Context, req ai.Request) (string, error) {
	o.mu.Lock()
	o.requests = append(o.requests, req)
	queue := o.replies[req.Operation]
	if len(queue) == 0 {
		o.mu.Unlock()
		return "", fmt.Errorf("aitest: no reply scripted for %q", req.Operation)
	}
	r := queue[0]
	o.replies[req.Operation] = queue[1:]
	o.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.Text, r.Err
}

// Requests returns every request seen so far.
func (o *Oracle) Requests() []ai.Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ai.Request, len(o.requests))
	copy(out, o.requests)
	return out
}

// Calls counts requests for operation.
func (o *Oracle) Calls(operation string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, r := range o.requests {
		if r.Operation == operation {
			n++
		}
	}
	return n
}
