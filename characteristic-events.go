package hkaccessory

import (
	"fmt"
	"sync"

	"github.com/olebedev/emitter"
)

const (
	topicChange      = "change"
	topicWarning     = "warning"
	topicSubscribe   = "subscribe"
	topicUnsubscribe = "unsubscribe"
	topicGet         = "get"
	topicSet         = "set"
)

// ChangeReason tags the origin of a value change.
type ChangeReason string

const (
	// ReasonWrite is a set request, from a controller or SetValue.
	ReasonWrite ChangeReason = "write"
	// ReasonUpdate is an application UpdateValue call.
	ReasonUpdate ChangeReason = "update"
	// ReasonRead is a value that changed while serving a get request.
	ReasonRead ChangeReason = "read"
	// ReasonEvent is an explicit SendEventNotification.
	ReasonEvent ChangeReason = "event"
)

// Change describes one emitted value change.
type Change struct {
	Reason   ChangeReason
	OldValue any
	NewValue any
	// Originator is the connection that caused the change, nil for
	// application originated changes.
	Originator Connection
	Context    any
}

// WarningType classifies diagnostics emitted by a characteristic.
type WarningType int

const (
	WarningMessage WarningType = iota
	WarningErrorMessage
	WarningDebugMessage
	WarningSlowRead
	WarningSlowWrite
	WarningTimeoutRead
	WarningTimeoutWrite
)

func (t WarningType) String() string {
	switch t {
	case WarningMessage:
		return "message"
	case WarningErrorMessage:
		return "error-message"
	case WarningDebugMessage:
		return "debug-message"
	case WarningSlowRead:
		return "slow-read"
	case WarningSlowWrite:
		return "slow-write"
	case WarningTimeoutRead:
		return "timeout-read"
	case WarningTimeoutWrite:
		return "timeout-write"
	}
	return "unknown"
}

// Warning is a non fatal diagnostic, e.g. a coerced value.
type Warning struct {
	Type           WarningType
	Characteristic string
	Message        string
}

// dispatch collects listener calls during an emit, they run after the
// emitter released its lock.
type dispatch struct {
	mu    sync.Mutex
	calls []func()
}

func newBus() *emitter.Emitter {
	bus := &emitter.Emitter{}
	// flat callbacks
	bus.Use("*", emitter.Void)
	return bus
}

// on registers fn for topic and returns a func removing it.
func (c *Characteristic) on(topic string, fn func(args []any)) func() {
	ch := c.bus.On(topic, func(e *emitter.Event) {
		if len(e.Args) == 0 {
			return
		}
		d, ok := e.Args[0].(*dispatch)
		if !ok {
			return
		}
		args := e.Args[1:]
		d.mu.Lock()
		d.calls = append(d.calls, func() { fn(args) })
		d.mu.Unlock()
	})

	var once sync.Once
	return func() {
		once.Do(func() { c.bus.Off(topic, ch) })
	}
}

// emit calls every listener of topic on the calling goroutine and returns
// how many were called.
func (c *Characteristic) emit(topic string, args ...any) int {
	d := &dispatch{}
	<-c.bus.Emit(topic, append([]any{d}, args...)...)

	d.mu.Lock()
	calls := d.calls
	d.mu.Unlock()
	for _, call := range calls {
		call()
	}
	return len(calls)
}

// OnChange registers fn for every emitted change. Listeners run
// synchronously on the emitting goroutine and must not block.
func (c *Characteristic) OnChange(fn func(Change)) (remove func()) {
	return c.on(topicChange, func(args []any) {
		fn(args[0].(Change))
	})
}

// OnWarning registers fn for diagnostics.
func (c *Characteristic) OnWarning(fn func(Warning)) (remove func()) {
	return c.on(topicWarning, func(args []any) {
		fn(args[0].(Warning))
	})
}

// OnSubscribe registers fn for the moment the first subscriber joins.
func (c *Characteristic) OnSubscribe(fn func()) (remove func()) {
	return c.on(topicSubscribe, func([]any) { fn() })
}

// OnUnsubscribe registers fn for the moment the last subscriber leaves.
func (c *Characteristic) OnUnsubscribe(fn func()) (remove func()) {
	return c.on(topicUnsubscribe, func([]any) { fn() })
}

func (c *Characteristic) emitChange(ch Change) {
	c.log.Debugf("%s: %s change %v -> %v", c.displayName, ch.Reason, ch.OldValue, ch.NewValue)
	c.emit(topicChange, ch)
}

// Subscribe registers interest in event notifications. The subscribe
// listeners only run when the count goes from zero to one.
func (c *Characteristic) Subscribe() {
	c.mu.Lock()
	c.subscriptions++
	first := c.subscriptions == 1
	c.mu.Unlock()

	if first {
		c.emit(topicSubscribe)
	}
}

// Unsubscribe drops one subscription. Calls without a subscription are
// ignored, the unsubscribe listeners only run when the count reaches zero.
func (c *Characteristic) Unsubscribe() {
	c.mu.Lock()
	if c.subscriptions == 0 {
		c.mu.Unlock()
		return
	}
	c.subscriptions--
	last := c.subscriptions == 0
	c.mu.Unlock()

	if last {
		c.emit(topicUnsubscribe)
	}
}

// Subscriptions returns the current subscription count.
func (c *Characteristic) Subscriptions() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscriptions
}

func (c *Characteristic) warn(t WarningType, format string, args ...any) {
	w := Warning{Type: t, Characteristic: c.displayName, Message: fmt.Sprintf(format, args...)}
	switch t {
	case WarningDebugMessage:
		c.log.Debugf("%s: %s", c.displayName, w.Message)
	case WarningErrorMessage, WarningTimeoutRead, WarningTimeoutWrite:
		c.log.Errorf("%s: %s", c.displayName, w.Message)
	default:
		c.log.Warnf("%s: %s", c.displayName, w.Message)
	}
	c.emit(topicWarning, w)
}

func (c *Characteristic) warnAll(t WarningType, msgs []string) {
	for _, m := range msgs {
		c.warn(t, "%s", m)
	}
}
