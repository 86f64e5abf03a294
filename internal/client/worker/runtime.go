package worker

import "context"

// The runtime turns the worker into a long-lived background process driven
// by typed messages, so the policy logic stays pure and host-agnostic while
// the host owns scheduling.

type messageKind int

const (
	msgInstall messageKind = iota
	msgActivate
	msgRequest
	msgPush
)

type reply struct {
	resp *Response
	err  error
}

type message struct {
	kind    messageKind
	ctx     context.Context
	req     Request
	payload []byte
	replyCh chan reply
}

// Runtime dispatches lifecycle messages to a Worker, one at a time, in
// arrival order.
type Runtime struct {
	worker *Worker
	msgs   chan message
}

// NewRuntime wraps a worker. buffer bounds how many requests may queue while
// one is being handled.
func NewRuntime(w *Worker, buffer int) *Runtime {
	return &Runtime{worker: w, msgs: make(chan message, buffer)}
}

// Run processes messages until ctx is done. Call it on its own goroutine.
func (rt *Runtime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-rt.msgs:
			rt.dispatch(m)
		}
	}
}

func (rt *Runtime) dispatch(m message) {
	switch m.kind {
	case msgInstall:
		m.replyCh <- reply{err: rt.worker.OnInstall(m.ctx)}
	case msgActivate:
		m.replyCh <- reply{err: rt.worker.OnActivate(m.ctx)}
	case msgRequest:
		resp, err := rt.worker.OnRequest(m.ctx, m.req)
		m.replyCh <- reply{resp: resp, err: err}
	case msgPush:
		rt.worker.OnPush(m.ctx, m.payload)
		m.replyCh <- reply{}
	}
}

func (rt *Runtime) send(ctx context.Context, m message) (reply, error) {
	m.ctx = ctx
	m.replyCh = make(chan reply, 1)
	select {
	case rt.msgs <- m:
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	select {
	case r := <-m.replyCh:
		return r, nil
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// Install warms the static partition.
func (rt *Runtime) Install(ctx context.Context) error {
	r, err := rt.send(ctx, message{kind: msgInstall})
	if err != nil {
		return err
	}
	return r.err
}

// Activate rotates stale partitions.
func (rt *Runtime) Activate(ctx context.Context) error {
	r, err := rt.send(ctx, message{kind: msgActivate})
	if err != nil {
		return err
	}
	return r.err
}

// Request routes one intercepted request.
func (rt *Runtime) Request(ctx context.Context, req Request) (*Response, error) {
	r, err := rt.send(ctx, message{kind: msgRequest, req: req})
	if err != nil {
		return nil, err
	}
	return r.resp, r.err
}

// Push delivers a push payload.
func (rt *Runtime) Push(ctx context.Context, payload []byte) error {
	_, err := rt.send(ctx, message{kind: msgPush, payload: payload})
	return err
}
