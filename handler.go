package hkaccessory

import (
	"context"
	"fmt"
	"time"
)

// Connection identifies the controller session a request arrived on.
// Transports supply their own implementation.
type Connection interface {
	ID() string
}

// Request is what a handler learns about the request it serves.
// Connection is nil for application originated calls.
type Request struct {
	Connection Connection
	Context    any
}

// GetHandler returns the current value of a characteristic. A returned
// HAPStatus or *StatusError is passed to the controller verbatim.
type GetHandler func(ctx context.Context, req Request) (any, error)

// SetHandler applies a written value. It may return a write response,
// which is only used when the characteristic carries the wr perm.
type SetHandler func(ctx context.Context, value any, req Request) (any, error)

// GetCallback completes a legacy get listener, exactly once.
type GetCallback func(value any, err error)

// SetCallback completes a legacy set listener, exactly once.
type SetCallback func(writeResponse any, err error)

// LegacyGetListener is the callback style get handler.
type LegacyGetListener func(cb GetCallback, req Request)

// LegacySetListener is the callback style set handler.
type LegacySetListener func(value any, cb SetCallback, req Request)

type handlerKind int

const (
	handlerNone handlerKind = iota
	handlerLegacy
	handlerTyped
)

func (k handlerKind) String() string {
	switch k {
	case handlerLegacy:
		return "legacy"
	case handlerTyped:
		return "typed"
	}
	return "none"
}

type result struct {
	value any
	err   error
}

// SetGetHandler installs the typed get handler, replacing a previous one.
// Typed handlers take precedence over legacy listeners.
func (c *Characteristic) SetGetHandler(h GetHandler) *Characteristic {
	c.mu.Lock()
	c.getHandler = h
	c.mu.Unlock()
	return c
}

// RemoveGetHandler drops the typed get handler.
func (c *Characteristic) RemoveGetHandler() *Characteristic {
	return c.SetGetHandler(nil)
}

// SetSetHandler installs the typed set handler, replacing a previous one.
func (c *Characteristic) SetSetHandler(h SetHandler) *Characteristic {
	c.mu.Lock()
	c.setHandler = h
	c.mu.Unlock()
	return c
}

// RemoveSetHandler drops the typed set handler.
func (c *Characteristic) RemoveSetHandler() *Characteristic {
	return c.SetSetHandler(nil)
}

// OnGet registers a legacy get listener. Only the first listener that
// completes its callback decides the result.
func (c *Characteristic) OnGet(l LegacyGetListener) (remove func()) {
	c.mu.Lock()
	c.legacyGet++
	c.mu.Unlock()

	off := c.on(topicGet, func(args []any) {
		l(args[0].(GetCallback), args[1].(Request))
	})
	return c.legacyRemover(off, &c.legacyGet)
}

// OnSet registers a legacy set listener.
func (c *Characteristic) OnSet(l LegacySetListener) (remove func()) {
	c.mu.Lock()
	c.legacySet++
	c.mu.Unlock()

	off := c.on(topicSet, func(args []any) {
		l(args[0], args[1].(SetCallback), args[2].(Request))
	})
	return c.legacyRemover(off, &c.legacySet)
}

func (c *Characteristic) legacyRemover(off func(), count *int) func() {
	removed := false
	return func() {
		c.mu.Lock()
		if removed {
			c.mu.Unlock()
			return
		}
		removed = true
		*count--
		c.mu.Unlock()
		off()
	}
}

// resolveGet picks the handler variant once per request.
func (c *Characteristic) resolveGet() (handlerKind, GetHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.getHandler != nil:
		return handlerTyped, c.getHandler
	case c.legacyGet > 0:
		return handlerLegacy, nil
	}
	return handlerNone, nil
}

func (c *Characteristic) resolveSet() (handlerKind, SetHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.setHandler != nil:
		return handlerTyped, c.setHandler
	case c.legacySet > 0:
		return handlerLegacy, nil
	}
	return handlerNone, nil
}

// invoke runs call under the configured deadline and waits for its result.
// call receives a completion func, the first completion wins. The slow
// warning fires once when the call outlives the threshold.
func (c *Characteristic) invoke(ctx context.Context, slow, timeout WarningType, call func(ctx context.Context, done func(any, error))) (any, error) {
	if c.cfg.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.HandlerTimeout)
		defer cancel()
	}

	results := make(chan result, 1)
	done := func(v any, err error) {
		select {
		case results <- result{v, err}:
		default:
		}
	}

	start := time.Now()
	if c.cfg.SlowHandlerThreshold > 0 {
		t := time.AfterFunc(c.cfg.SlowHandlerThreshold, func() {
			c.warn(slow, "handler still running after %v, this slows down the bridge", time.Since(start).Round(time.Millisecond))
		})
		defer t.Stop()
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done(nil, fmt.Errorf("handler panic: %v", r))
			}
		}()
		call(ctx, done)
	}()

	select {
	case r := <-results:
		return r.value, r.err
	case <-ctx.Done():
		c.warn(timeout, "handler did not respond within %v", time.Since(start).Round(time.Millisecond))
		return nil, ctx.Err()
	}
}

func (c *Characteristic) invokeGet(ctx context.Context, kind handlerKind, h GetHandler, req Request) (any, error) {
	return c.invoke(ctx, WarningSlowRead, WarningTimeoutRead, func(ctx context.Context, done func(any, error)) {
		if kind == handlerTyped {
			done(h(ctx, req))
			return
		}
		if c.emit(topicGet, GetCallback(done), req) == 0 {
			// the last listener left between resolve and emit
			done(nil, NewStatusError(StatusServiceCommunicationFailure, fmt.Errorf("no get listener")))
		}
	})
}

func (c *Characteristic) invokeSet(ctx context.Context, kind handlerKind, h SetHandler, value any, req Request) (any, error) {
	return c.invoke(ctx, WarningSlowWrite, WarningTimeoutWrite, func(ctx context.Context, done func(any, error)) {
		if kind == handlerTyped {
			done(h(ctx, value, req))
			return
		}
		if c.emit(topicSet, value, SetCallback(done), req) == 0 {
			done(nil, NewStatusError(StatusServiceCommunicationFailure, fmt.Errorf("no set listener")))
		}
	})
}
