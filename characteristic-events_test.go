package hkaccessory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionTransitions(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatBool, Perms: rwPerms})
	var subs, unsubs int
	c.OnSubscribe(func() { subs++ })
	c.OnUnsubscribe(func() { unsubs++ })

	c.Unsubscribe()
	assert.Equal(t, uint(0), c.Subscriptions())
	assert.Equal(t, 0, unsubs)

	c.Subscribe()
	c.Subscribe()
	assert.Equal(t, uint(2), c.Subscriptions())
	assert.Equal(t, 1, subs)

	c.Unsubscribe()
	assert.Equal(t, 0, unsubs)
	c.Unsubscribe()
	c.Unsubscribe()
	assert.Equal(t, uint(0), c.Subscriptions())
	assert.Equal(t, 1, unsubs)

	c.Subscribe()
	assert.Equal(t, 2, subs)
}

func TestUpdateValueOnlyNotifiesChanges(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatInt32, Perms: rwPerms})
	rec := record(c)

	c.UpdateValue(3)
	c.UpdateValue(3)
	c.UpdateValue(4)

	require.Len(t, rec.Changes(), 2)
	ch := rec.Changes()[1]
	assert.Equal(t, ReasonUpdate, ch.Reason)
	assert.Equal(t, int32(3), ch.OldValue)
	assert.Equal(t, int32(4), ch.NewValue)
	assert.Nil(t, ch.Originator)
}

func TestSendEventNotificationAlwaysNotifies(t *testing.T) {
	c := newTestCharacteristic(t, string(CType_ProgrammableSwitchEvent), CharacteristicProps{Format: FormatUInt8, Perms: Perms{PermPairedRead, PermNotify}, MaxValue: ptr(2.0)})
	rec := record(c)

	c.SendEventNotification(0, "press")
	c.SendEventNotification(0, nil)

	assert.Equal(t, []ChangeReason{ReasonEvent, ReasonEvent}, rec.Reasons())
	assert.Equal(t, "press", rec.Changes()[0].Context)
}

func TestListenerRemoval(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatInt32, Perms: rwPerms})
	var n int
	remove := c.OnChange(func(Change) { n++ })

	c.UpdateValue(1)
	remove()
	remove()
	c.UpdateValue(2)
	assert.Equal(t, 1, n)
}

func TestListenerMayCallBack(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatInt32, Perms: rwPerms})
	var seen []any
	c.OnChange(func(ch Change) {
		seen = append(seen, c.Value())
		if ch.NewValue == int32(1) {
			c.UpdateValue(2)
		}
	})

	c.UpdateValue(1)
	assert.Equal(t, []any{int32(1), int32(2)}, seen)
}

func TestCoercionWarnings(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatUInt8, Perms: rwPerms, MaxValue: ptr(10.0)})
	rec := record(c)

	c.UpdateValue(20)
	assert.Equal(t, uint8(10), c.Value())
	require.NotEmpty(t, rec.Warnings())
	w := rec.Warnings()[0]
	assert.Equal(t, WarningMessage, w.Type)
	assert.Equal(t, "Test", w.Characteristic)
}

func TestWarningTypeString(t *testing.T) {
	assert.Equal(t, "slow-read", WarningSlowRead.String())
	assert.Equal(t, "timeout-write", WarningTimeoutWrite.String())
}
