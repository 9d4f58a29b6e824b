package hkaccessory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	defs := catalog.Definitions()
	require.NotEmpty(t, defs)
	for _, d := range defs {
		assert.True(t, IsAppleDefined(d.UUID), d.Name)
		_, err := catalog.New(d.Name, testConfig())
		assert.NoError(t, err, d.Name)
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	for _, key := range []string{"Brightness", "brightness", "8", "00000008", "00000008-0000-1000-8000-0026BB765291", "00000008-0000-1000-8000-0026bb765291"} {
		d, ok := catalog.Lookup(key)
		if assert.True(t, ok, key) {
			assert.Equal(t, "Brightness", d.Name)
		}
	}

	_, ok := catalog.Lookup("Dimmer")
	assert.False(t, ok)
	_, ok = catalog.Lookup("")
	assert.False(t, ok)

	var none *Catalog
	_, ok = none.Lookup("On")
	assert.False(t, ok)
	assert.Nil(t, none.Definitions())
}

func TestCatalogNew(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	on, err := catalog.New("On", testConfig())
	require.NoError(t, err)
	assert.Equal(t, "On", on.TypeName())
	assert.Equal(t, "On", on.DisplayName())
	assert.Equal(t, false, on.Value())

	fw, err := catalog.New("FirmwareRevision", testConfig())
	require.NoError(t, err)
	assert.Equal(t, "Firmware Revision", fw.DisplayName())
	assert.Equal(t, "1.0.0", fw.Value())

	sw, err := catalog.New("73", testConfig())
	require.NoError(t, err)
	assert.True(t, sw.EventOnly())
	assert.Equal(t, NullAllow, sw.NullPolicy())

	name, err := catalog.New("Name", testConfig())
	require.NoError(t, err)
	assert.Equal(t, NullReject, name.NullPolicy())

	temp, err := catalog.New("CurrentTemperature", testConfig())
	require.NoError(t, err)
	assert.Equal(t, -270.0, temp.Value())
	assert.Equal(t, UnitCelsius, temp.Props().Unit)

	_, err = catalog.New("Dimmer", testConfig())
	assert.ErrorIs(t, err, ErrUnknownCharacteristic)
}

func TestCatalogConfigOverridesDefinition(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	cfg := testConfig()
	cfg.NullPolicy = NullTolerate
	off := false
	cfg.EventOnly = &off
	sw, err := catalog.New("ProgrammableSwitchEvent", cfg)
	require.NoError(t, err)
	assert.False(t, sw.EventOnly())
	assert.Equal(t, NullTolerate, sw.NullPolicy())
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "characteristics: [\n"},
		{"unknown field", "characteristics:\n  - name: X\n    uuid: \"25\"\n    format: bool\n    perms: [pr]\n    colour: red\n"},
		{"missing name", "characteristics:\n  - uuid: \"25\"\n    format: bool\n    perms: [pr]\n"},
		{"bad uuid", "characteristics:\n  - name: X\n    uuid: nope-nope\n    format: bool\n    perms: [pr]\n"},
		{"missing perms", "characteristics:\n  - name: X\n    uuid: \"25\"\n    format: bool\n"},
		{"unknown format", "characteristics:\n  - name: X\n    uuid: \"25\"\n    format: int128\n    perms: [pr]\n"},
		{"bad range", "characteristics:\n  - name: X\n    uuid: \"25\"\n    format: uint8\n    perms: [pr]\n    validValueRanges: [1, 2, 3]\n"},
		{"bad default", "characteristics:\n  - name: X\n    uuid: \"25\"\n    format: uint8\n    perms: [pr]\n    maxValue: 10\n    default: 20\n"},
		{"duplicate name", "characteristics:\n  - name: X\n    uuid: \"25\"\n    format: bool\n    perms: [pr]\n  - name: x\n    uuid: \"26\"\n    format: bool\n    perms: [pr]\n"},
		{"duplicate uuid", "characteristics:\n  - name: X\n    uuid: \"25\"\n    format: bool\n    perms: [pr]\n  - name: Y\n    uuid: 00000025-0000-1000-8000-0026BB765291\n    format: bool\n    perms: [pr]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogCustom(t *testing.T) {
	const doc = `
characteristics:
  - name: FanSpeed
    displayName: Fan Speed
    uuid: A1B2C3D4-0000-4000-8000-123456789ABC
    format: uint8
    perms: [pr, pw, ev]
    validValues: [0, 1, 2, 3]
    default: 2
`
	catalog, err := LoadCatalog(strings.NewReader(doc))
	require.NoError(t, err)

	c, err := catalog.New("fanspeed", testConfig())
	require.NoError(t, err)
	assert.Equal(t, uint8(2), c.Value())
	assert.Equal(t, NullAllow, c.NullPolicy())
	assert.False(t, IsAppleDefined(c.UUID()))
}
