package hkaccessory

import (
	"bytes"
	"context"
	"reflect"
)

// HandleGetRequest serves a read from a controller. conn and reqCtx are
// handed to the handler untouched, conn may be nil. Failures are always a
// HAPStatus.
func (c *Characteristic) HandleGetRequest(ctx context.Context, conn Connection, reqCtx any) (any, error) {
	c.mu.Lock()
	readable := c.props.Perms.CanRead()
	c.mu.Unlock()
	if !readable {
		c.log.Debugf("%s: read of a write only characteristic", c.displayName)
		return nil, StatusWriteOnlyCharacteristic
	}

	if c.eventOnly {
		return nil, nil
	}

	kind, h := c.resolveGet()
	c.log.Tracef("%s: get request, %s handler", c.displayName, kind)

	if kind == handlerNone {
		c.mu.Lock()
		status := c.status
		c.mu.Unlock()
		if status != StatusSuccess {
			return nil, status
		}
		return c.storedValue(), nil
	}

	v, err := c.invokeGet(ctx, kind, h, Request{Connection: conn, Context: reqCtx})
	if err != nil {
		return nil, c.fail("get", err)
	}

	c.mu.Lock()
	value, diags := c.coerceLocked(v)
	old := c.value
	c.value = value
	c.status = StatusSuccess
	c.mu.Unlock()

	c.warnAll(WarningMessage, diags)
	if !valuesEqual(old, value) {
		c.emitChange(Change{Reason: ReasonRead, OldValue: old, NewValue: value, Originator: conn, Context: reqCtx})
	}
	return value, nil
}

// fail stores the status err maps to and returns it. Causes that carry no
// status are logged, the controller only sees the status.
func (c *Characteristic) fail(op string, err error) HAPStatus {
	status, carried := StatusFromError(err)
	if carried {
		c.log.Debugf("%s: %s handler returned %v", c.displayName, op, err)
	} else {
		c.log.Errorf("%s: %s handler failed: %v", c.displayName, op, err)
	}

	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	return status
}

func valuesEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		if bb, ok := b.([]byte); ok {
			return bytes.Equal(ab, bb)
		}
	}
	return reflect.DeepEqual(a, b)
}
