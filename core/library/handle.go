package library

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

// LoadFunc builds a library. It runs once, in the background.
type LoadFunc func(ctx context.Context) (*Library, error)

// State is the lifecycle of a Handle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Status is a point-in-time view of a Handle, suitable for JSON.
type Status struct {
	State   State   `json:"status"`
	Modules int     `json:"modules"`
	Elapsed float64 `json:"elapsed_seconds"`
	Error   string  `json:"error,omitempty"`
}

type published struct {
	lib *Library
	err error
}

// Handle publishes a library exactly once. Readers never block and never
// see a partially built library: until the loader finishes, Get reports
// the not-ready state.
type Handle struct {
	once    sync.Once
	started atomic.Int64 // unix nanos
	loaded  atomic.Int64
	result  atomic.Pointer[published]
	done    chan struct{}
}

// NewHandle returns a handle that has not started loading.
func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// NewReadyHandle returns a handle already holding lib.
func NewReadyHandle(lib *Library) *Handle {
	h := NewHandle()
	h.once.Do(func() {
		now := time.Now().UnixNano()
		h.started.Store(now)
		h.publish(lib, nil)
	})
	return h
}

// StartLoading runs load in a goroutine. Calls after the first are no-ops.
func (h *Handle) StartLoading(ctx context.Context, load LoadFunc) {
	h.once.Do(func() {
		h.started.Store(time.Now().UnixNano())
		go func() {
			lib, err := load(ctx)
			if err == nil && lib == nil {
				err = errors.Wrap(errors.ErrInternal, "loader returned no library")
			}
			h.publish(lib, err)
		}()
	})
}

func (h *Handle) publish(lib *Library, err error) {
	if err != nil {
		lib = nil
	}
	h.loaded.Store(time.Now().UnixNano())
	h.result.Store(&published{lib: lib, err: err})
	close(h.done)
}

// Get returns the published library, a *errors.NotReadyError while loading,
// or the load error.
func (h *Handle) Get() (*Library, error) {
	p := h.result.Load()
	if p == nil {
		return nil, &errors.NotReadyError{Since: h.elapsed().Round(time.Millisecond).String()}
	}
	return p.lib, p.err
}

// Ready returns a channel closed once loading has finished, successfully or not.
func (h *Handle) Ready() <-chan struct{} { return h.done }

// Wait blocks until loading finishes or ctx ends.
func (h *Handle) Wait(ctx context.Context) (*Library, error) {
	select {
	case <-h.done:
		return h.Get()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status reports the current state.
func (h *Handle) Status() Status {
	s := Status{Elapsed: h.elapsed().Seconds()}
	p := h.result.Load()
	switch {
	case p == nil && h.started.Load() == 0:
		s.State = StateIdle
	case p == nil:
		s.State = StateLoading
	case p.err != nil:
		s.State = StateFailed
		s.Error = p.err.Error()
	default:
		s.State = StateReady
		s.Modules = p.lib.Len()
	}
	return s
}

func (h *Handle) elapsed() time.Duration {
	start := h.started.Load()
	if start == 0 {
		return 0
	}
	end := h.loaded.Load()
	if end == 0 {
		end = time.Now().UnixNano()
	}
	return time.Duration(end - start)
}
