package hkaccessory

import (
	"context"
)

// HandleSetRequest serves a write. A non nil conn marks a controller write:
// the value is checked strictly and refused with
// StatusInvalidValueInRequest when it does not fit. Without conn the value
// is coerced like SetValue does. The returned value is the write response,
// nil unless the characteristic has the wr perm and the handler gave one.
func (c *Characteristic) HandleSetRequest(ctx context.Context, value any, conn Connection, reqCtx any) (any, error) {
	c.mu.Lock()
	writable := c.props.Perms.CanWrite()
	c.mu.Unlock()
	if !writable {
		c.log.Debugf("%s: write to a read only characteristic", c.displayName)
		return nil, StatusReadOnlyCharacteristic
	}
	return c.handleSet(ctx, value, conn, reqCtx)
}

func (c *Characteristic) handleSet(ctx context.Context, value any, conn Connection, reqCtx any) (any, error) {
	c.mu.Lock()
	c.status = StatusSuccess
	props := c.props.Clone()
	c.mu.Unlock()

	if conn != nil {
		v, err := validateClientSuppliedValue(c.displayName, props, value)
		if err != nil {
			c.log.Debugf("%s: rejected write from %s: %v", c.displayName, conn.ID(), err)
			c.mu.Lock()
			c.status = StatusInvalidValueInRequest
			c.mu.Unlock()
			return nil, StatusInvalidValueInRequest
		}
		value = v
	} else {
		var diags []string
		c.mu.Lock()
		value, diags = c.coerceLocked(value)
		c.mu.Unlock()
		c.warnAll(WarningMessage, diags)
	}

	kind, h := c.resolveSet()
	c.log.Tracef("%s: set request, %s handler", c.displayName, kind)

	var resp any
	if kind != handlerNone {
		r, err := c.invokeSet(ctx, kind, h, value, Request{Connection: conn, Context: reqCtx})
		if err != nil {
			return nil, c.fail("set", err)
		}
		resp = r
	}

	if resp != nil {
		if props.Perms.Has(PermWriteResponse) {
			c.mu.Lock()
			v, diags := c.coerceLocked(resp)
			c.value = v
			c.mu.Unlock()
			c.warnAll(WarningMessage, diags)
			return v, nil
		}
		c.warn(WarningMessage, "set handler returned write response %v without the write-response perm, ignoring it", resp)
	}

	c.mu.Lock()
	old := c.value
	c.value = value
	c.mu.Unlock()

	c.emitChange(Change{Reason: ReasonWrite, OldValue: old, NewValue: value, Originator: conn, Context: reqCtx})
	return nil, nil
}

// SetValue writes value like a set request from the application itself: it
// runs the set handler, bypasses the pw perm and coerces instead of
// rejecting.
func (c *Characteristic) SetValue(ctx context.Context, value any) error {
	_, err := c.handleSet(ctx, value, nil, nil)
	return err
}

// UpdateValue stores a value the application observed, e.g. a physical
// switch being toggled. Listeners only learn about actual changes.
func (c *Characteristic) UpdateValue(value any) *Characteristic {
	return c.update(ReasonUpdate, value, nil)
}

// SendEventNotification stores value and always notifies, also when the
// value did not change. Used for stateless characteristics like buttons.
func (c *Characteristic) SendEventNotification(value any, reqCtx any) *Characteristic {
	return c.update(ReasonEvent, value, reqCtx)
}

func (c *Characteristic) update(reason ChangeReason, value, reqCtx any) *Characteristic {
	c.mu.Lock()
	v, diags := c.coerceLocked(value)
	old := c.value
	c.value = v
	c.status = StatusSuccess
	c.mu.Unlock()

	c.warnAll(WarningMessage, diags)
	if reason == ReasonEvent || !valuesEqual(old, v) {
		c.emitChange(Change{Reason: reason, OldValue: old, NewValue: v, Context: reqCtx})
	}
	return c
}

// UpdateError stores the status err maps to. Reads without a get handler
// fail with it until the next successful update.
func (c *Characteristic) UpdateError(err error) *Characteristic {
	status, _ := StatusFromError(err)
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	c.log.Debugf("%s: status set to %v", c.displayName, status)
	return c
}
