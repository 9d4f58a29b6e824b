package hkaccessory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{
		Format:   FormatUInt16,
		Perms:    rwPerms,
		Unit:     UnitSeconds,
		MinValue: ptr(5.0),
		MaxValue: ptr(500.0),
	})
	c.UpdateValue(120)

	b, err := json.Marshal(c.Serialize())
	require.NoError(t, err)

	var s SerializedCharacteristic
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, "Test", s.DisplayName)
	assert.Equal(t, customUUID, s.UUID)

	restored, err := Deserialize(s, nil, testConfig())
	require.NoError(t, err)
	assert.Equal(t, uint16(120), restored.Value())
	assert.Equal(t, c.Props(), restored.Props())
	assert.Equal(t, c.UUID(), restored.UUID())
	assert.False(t, restored.EventOnly())
}

func TestSerializeJSONShape(t *testing.T) {
	c := newTestCharacteristic(t, "25", CharacteristicProps{Format: FormatBool, Perms: rwPerms})
	b, err := json.Marshal(c.Serialize())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "00000025-0000-1000-8000-0026BB765291", m["UUID"])
	assert.Equal(t, false, m["eventOnlyCharacteristic"])
	assert.Equal(t, false, m["value"])
	assert.Contains(t, m, "props")
	assert.NotContains(t, m, "constructorName")
}

func TestDeserializeNullValue(t *testing.T) {
	s := SerializedCharacteristic{
		DisplayName: "Custom",
		UUID:        customUUID,
		Value:       nil,
		Props:       CharacteristicProps{Format: FormatString, Perms: rwPerms},
	}
	c, err := Deserialize(s, nil, testConfig())
	require.NoError(t, err)
	assert.Nil(t, c.Value())
}

func TestDeserializeFixesStoredValue(t *testing.T) {
	s := SerializedCharacteristic{
		DisplayName: "Custom",
		UUID:        customUUID,
		Value:       900.0,
		Props:       CharacteristicProps{Format: FormatUInt8, Perms: rwPerms, MaxValue: ptr(100.0)},
	}
	c, err := Deserialize(s, nil, testConfig())
	require.NoError(t, err)
	assert.Equal(t, uint8(100), c.Value())
}

func TestDeserializeRejectsBadProps(t *testing.T) {
	s := SerializedCharacteristic{DisplayName: "Broken", UUID: customUUID, Props: CharacteristicProps{Perms: rwPerms}}
	_, err := Deserialize(s, nil, testConfig())
	assert.ErrorIs(t, err, ErrInvalidProps)

	s = SerializedCharacteristic{DisplayName: "Broken", UUID: "not a uuid", Props: CharacteristicProps{Format: FormatBool, Perms: rwPerms}}
	_, err = Deserialize(s, nil, testConfig())
	assert.ErrorIs(t, err, ErrInvalidUUID)
}

func TestDeserializeWithConstructor(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	c, err := catalog.New("Brightness", testConfig())
	require.NoError(t, err)
	_, err = c.SetProps(PropsPatch{MaxValue: Some(50.0)})
	require.NoError(t, err)
	c.UpdateValue(40)

	s := c.Serialize()
	assert.Equal(t, "Brightness", s.ConstructorName)

	restored, err := Deserialize(s, catalog, testConfig())
	require.NoError(t, err)
	assert.Equal(t, "Brightness", restored.TypeName())
	assert.Equal(t, int32(40), restored.Value())
	assert.Equal(t, ptr(50.0), restored.Props().MaxValue)

	// unknown constructors fall back to the stored props
	s.ConstructorName = "Dimmer"
	restored, err = Deserialize(s, catalog, testConfig())
	require.NoError(t, err)
	assert.Empty(t, restored.TypeName())
	assert.Equal(t, int32(40), restored.Value())
}

func TestDeserializeWithConstructorKeepsClearedProps(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	c, err := catalog.New("Brightness", testConfig())
	require.NoError(t, err)
	_, err = c.SetProps(PropsPatch{MaxValue: Null[float64](), MinStep: Null[float64](), Unit: Null[Unit]()})
	require.NoError(t, err)
	c.UpdateValue(250)

	restored, err := Deserialize(c.Serialize(), catalog, testConfig())
	require.NoError(t, err)
	assert.Equal(t, c.Props(), restored.Props())
	assert.Nil(t, restored.Props().MaxValue)
	assert.Nil(t, restored.Props().MinStep)
	assert.Empty(t, restored.Props().Unit)
	assert.Equal(t, int32(250), restored.Value())

	b, err := c.MarshalSnapshot()
	require.NoError(t, err)
	restored, err = UnmarshalSnapshot(b, catalog, testConfig())
	require.NoError(t, err)
	assert.Equal(t, c.Props(), restored.Props())
}

func TestDeserializeEventOnly(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	c, err := catalog.New("ProgrammableSwitchEvent", testConfig())
	require.NoError(t, err)
	require.True(t, c.EventOnly())

	s := c.Serialize()
	s.EventOnlyCharacteristic = false
	restored, err := Deserialize(s, catalog, testConfig())
	require.NoError(t, err)
	assert.False(t, restored.EventOnly())
}

func TestSnapshotRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		props CharacteristicProps
		value any
	}{
		{"uint64", CharacteristicProps{Format: FormatUInt64, Perms: rwPerms}, uint64(1) << 63},
		{"float", CharacteristicProps{Format: FormatFloat, Perms: rwPerms, MinValue: ptr(-10.0), MaxValue: ptr(10.0), MinStep: ptr(0.5)}, -2.5},
		{"data", CharacteristicProps{Format: FormatData, Perms: rwPerms}, []byte{0xde, 0xad}},
		{"dict", CharacteristicProps{Format: FormatDictionary, Perms: rwPerms}, map[string]any{"a": "b"}},
		{"ranges", CharacteristicProps{Format: FormatUInt8, Perms: rwPerms, ValidValueRanges: &[2]int64{1, 4}}, uint8(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCharacteristic(t, customUUID, tt.props)
			c.UpdateValue(tt.value)

			b, err := c.MarshalSnapshot()
			require.NoError(t, err)
			restored, err := UnmarshalSnapshot(b, nil, testConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.value, restored.Value())
			assert.Equal(t, c.Props(), restored.Props())
		})
	}
}

func TestUnmarshalSnapshotGarbage(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte{0xff, 0x00}, nil, testConfig())
	assert.Error(t, err)
}

func TestSerializeClonesValue(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatData, Perms: rwPerms})
	c.UpdateValue([]byte{1, 2})

	s := c.Serialize()
	s.Value.([]byte)[0] = 9
	assert.Equal(t, []byte{1, 2}, c.Value())
}
