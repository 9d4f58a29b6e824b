package hkaccessory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRequiresPairedRead(t *testing.T) {
	for _, withHandler := range []bool{false, true} {
		c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatBool, Perms: Perms{PermPairedWrite}})
		called := false
		if withHandler {
			c.SetGetHandler(func(ctx context.Context, req Request) (any, error) {
				called = true
				return true, nil
			})
		}

		_, err := c.HandleGetRequest(context.Background(), testConn("a"), nil)
		assert.ErrorIs(t, err, StatusWriteOnlyCharacteristic)
		assert.False(t, called)
	}

	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatBool, Perms: Perms{PermPairedRead}})
	_, err := c.HandleGetRequest(context.Background(), testConn("a"), nil)
	assert.NoError(t, err)
}

func TestGetEventOnly(t *testing.T) {
	c := newTestCharacteristic(t, string(CType_ProgrammableSwitchEvent), CharacteristicProps{Format: FormatUInt8, Perms: Perms{PermPairedRead, PermNotify}})
	require.True(t, c.EventOnly())
	c.SetGetHandler(func(ctx context.Context, req Request) (any, error) {
		return 1, nil
	})
	c.UpdateValue(2)

	v, err := c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestGetTypedHandler(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatUInt8, Perms: rwPerms, MaxValue: ptr(100.0)})
	rec := record(c)

	var seen Request
	next := 10
	c.SetGetHandler(func(ctx context.Context, req Request) (any, error) {
		seen = req
		return next, nil
	})

	v, err := c.HandleGetRequest(context.Background(), testConn("ctrl"), "ctx")
	require.NoError(t, err)
	assert.Equal(t, uint8(10), v)
	assert.Equal(t, testConn("ctrl"), seen.Connection)
	assert.Equal(t, "ctx", seen.Context)

	// same value again, no change
	_, err = c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)

	// out of range values are clamped
	next = 500
	v, err = c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(100), v)

	assert.Equal(t, []ChangeReason{ReasonRead, ReasonRead}, rec.Reasons())
	changes := rec.Changes()
	assert.Equal(t, uint8(0), changes[0].OldValue)
	assert.Equal(t, uint8(10), changes[0].NewValue)
	assert.Equal(t, testConn("ctrl"), changes[0].Originator)
}

func TestGetHandlerFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want HAPStatus
	}{
		{"status", StatusResourceBusy, StatusResourceBusy},
		{"wrapped status", NewStatusError(StatusOutOfResource, errors.New("full")), StatusOutOfResource},
		{"status in chain", errors.Join(errors.New("x"), StatusNotAllowedInCurrentState), StatusNotAllowedInCurrentState},
		{"plain error", errors.New("boom"), StatusServiceCommunicationFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatBool, Perms: rwPerms})
			rec := record(c)
			c.SetGetHandler(func(ctx context.Context, req Request) (any, error) {
				return nil, tt.err
			})

			_, err := c.HandleGetRequest(context.Background(), nil, nil)
			assert.Equal(t, tt.want, err)
			assert.Equal(t, tt.want, c.Status())
			assert.Empty(t, rec.Changes())
		})
	}
}

func TestGetHandlerPanic(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatBool, Perms: rwPerms})
	c.SetGetHandler(func(ctx context.Context, req Request) (any, error) {
		panic("broken")
	})

	_, err := c.HandleGetRequest(context.Background(), nil, nil)
	assert.Equal(t, StatusServiceCommunicationFailure, err)
}

func TestGetHandlerTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.HandlerTimeout = 20 * time.Millisecond
	cfg.SlowHandlerThreshold = 5 * time.Millisecond
	c, err := NewWithConfig("slow", customUUID, CharacteristicProps{Format: FormatBool, Perms: rwPerms}, cfg)
	require.NoError(t, err)
	rec := record(c)

	release := make(chan struct{})
	defer close(release)
	c.SetGetHandler(func(ctx context.Context, req Request) (any, error) {
		<-release
		return true, nil
	})

	_, err = c.HandleGetRequest(context.Background(), nil, nil)
	assert.Equal(t, StatusOperationTimedOut, err)
	assert.Equal(t, StatusOperationTimedOut, c.Status())

	hasWarning := func(want WarningType) bool {
		for _, w := range rec.Warnings() {
			if w.Type == want {
				return true
			}
		}
		return false
	}
	assert.True(t, hasWarning(WarningTimeoutRead))
	assert.Eventually(t, func() bool { return hasWarning(WarningSlowRead) }, time.Second, 5*time.Millisecond)
}

func TestGetLegacyListener(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatBool, Perms: rwPerms})
	rec := record(c)

	remove := c.OnGet(func(cb GetCallback, req Request) {
		go cb(true, nil)
	})

	v, err := c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
	assert.Equal(t, []ChangeReason{ReasonRead}, rec.Reasons())

	remove()
	remove()
	v, err = c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestGetLegacyListenerError(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatBool, Perms: rwPerms})
	c.OnGet(func(cb GetCallback, req Request) {
		cb(nil, StatusResourceBusy)
	})

	_, err := c.HandleGetRequest(context.Background(), nil, nil)
	assert.Equal(t, StatusResourceBusy, err)
}

func TestGetTypedHandlerWins(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatInt32, Perms: rwPerms})
	legacy := false
	c.OnGet(func(cb GetCallback, req Request) {
		legacy = true
		cb(1, nil)
	})
	c.SetGetHandler(func(ctx context.Context, req Request) (any, error) {
		return 2, nil
	})

	v, err := c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
	assert.False(t, legacy)
}

func TestGetWithoutHandler(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatInt32, Perms: rwPerms})
	c.UpdateValue(5)

	v, err := c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)

	c.UpdateError(StatusResourceBusy)
	_, err = c.HandleGetRequest(context.Background(), nil, nil)
	assert.Equal(t, StatusResourceBusy, err)

	c.UpdateError(errors.New("device offline"))
	_, err = c.HandleGetRequest(context.Background(), nil, nil)
	assert.Equal(t, StatusServiceCommunicationFailure, err)

	c.UpdateValue(6)
	v, err = c.HandleGetRequest(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(6), v)
}
