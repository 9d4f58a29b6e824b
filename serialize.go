package hkaccessory

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// SerializedCharacteristic is the persisted form of a characteristic.
type SerializedCharacteristic struct {
	DisplayName             string              `json:"displayName"`
	UUID                    string              `json:"UUID"`
	EventOnlyCharacteristic bool                `json:"eventOnlyCharacteristic"`
	ConstructorName         string              `json:"constructorName,omitempty"`
	Value                   any                 `json:"value"`
	Props                   CharacteristicProps `json:"props"`
}

// Serialize captures the characteristic state. Handlers and listeners are
// not part of it.
func (c *Characteristic) Serialize() SerializedCharacteristic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SerializedCharacteristic{
		DisplayName:             c.displayName,
		UUID:                    c.uuid,
		EventOnlyCharacteristic: c.eventOnly,
		ConstructorName:         c.typeName,
		Value:                   cloneValue(c.value),
		Props:                   c.props.Clone(),
	}
}

// Deserialize rebuilds a characteristic. A known ConstructorName is created
// through catalog first, the stored props replace the catalog ones and the
// value goes through the same validation as fresh input. catalog may be nil.
func Deserialize(s SerializedCharacteristic, catalog *Catalog, cfg Config) (*Characteristic, error) {
	eventOnly := s.EventOnlyCharacteristic
	cfg.EventOnly = &eventOnly

	var c *Characteristic
	if def, ok := catalog.Lookup(s.ConstructorName); s.ConstructorName != "" && ok {
		var err error
		if c, err = def.newCharacteristic(s.DisplayName, cfg); err != nil {
			return nil, err
		}
		if _, err := c.SetProps(ReplacePatchFromProps(s.Props)); err != nil {
			return nil, err
		}
	} else {
		var err error
		if c, err = NewWithConfig(s.DisplayName, s.UUID, s.Props, cfg); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	if s.Value == nil {
		c.value = nil
	} else {
		v, diags := validateUserInput(c.props, s.Value, c.value)
		c.value = v
		if len(diags) > 0 {
			c.log.Warnf("%s: restored value adjusted: %v", c.displayName, diags)
		}
	}
	c.mu.Unlock()
	return c, nil
}

// MarshalSnapshot encodes the persisted form as CBOR.
func (c *Characteristic) MarshalSnapshot() ([]byte, error) {
	b, err := cbor.Marshal(c.Serialize())
	if err != nil {
		return nil, fmt.Errorf("%s: marshal snapshot: %w", c.displayName, err)
	}
	return b, nil
}

// UnmarshalSnapshot decodes a MarshalSnapshot result and rebuilds the
// characteristic with Deserialize.
func UnmarshalSnapshot(b []byte, catalog *Catalog, cfg Config) (*Characteristic, error) {
	var s SerializedCharacteristic
	if err := snapshotDecMode.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return Deserialize(s, catalog, cfg)
}

// maps decode with string keys so dict values survive the round trip.
var snapshotDecMode, _ = cbor.DecOptions{
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
}.DecMode()

func cloneValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return append([]byte{}, x...)
	case []any:
		return append([]any{}, x...)
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = e
		}
		return m
	}
	return v
}
