package hkaccessory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConn string

func (c testConn) ID() string { return string(c) }

func ptr[T any](v T) *T { return &v }

func testConfig() Config {
	return Config{LoggerFactory: quietLoggerFactory()}
}

func newTestCharacteristic(t *testing.T, uuid string, props CharacteristicProps) *Characteristic {
	t.Helper()
	c, err := NewWithConfig("Test", uuid, props, testConfig())
	require.NoError(t, err)
	return c
}

// recorder collects emitted changes and warnings.
type recorder struct {
	mu       sync.Mutex
	changes  []Change
	warnings []Warning
}

func record(c *Characteristic) *recorder {
	r := &recorder{}
	c.OnChange(func(ch Change) {
		r.mu.Lock()
		r.changes = append(r.changes, ch)
		r.mu.Unlock()
	})
	c.OnWarning(func(w Warning) {
		r.mu.Lock()
		r.warnings = append(r.warnings, w)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) Changes() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change{}, r.changes...)
}

func (r *recorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning{}, r.warnings...)
}

func (r *recorder) Reasons() []ChangeReason {
	var out []ChangeReason
	for _, c := range r.Changes() {
		out = append(out, c.Reason)
	}
	return out
}

const customUUID = "A1B2C3D4-0000-4000-8000-123456789ABC"

var rwPerms = Perms{PermPairedRead, PermPairedWrite, PermNotify}
