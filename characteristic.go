package hkaccessory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/olebedev/emitter"
	"github.com/pion/logging"
)

/*
  {
    "iid": 11,
    "type": "7C",
    "perms": [
      "pr",
      "pw",
      "ev"
    ],
    "format": "uint8",
    "value": 0,
    "description": "Target Position",
    "unit": "percentage",
    "maxValue": 100,
    "minValue": 0,
    "minStep": 1
  }
*/

// CharacteristicDescriptor is the HAP JSON form of a characteristic, as
// served in the accessory database.
type CharacteristicDescriptor struct {
	Type        HapCharacteristicType `json:"type"`
	Iid         uint64                `json:"iid"`
	Value       any                   `json:"value,omitempty"`
	Permissions Perms                 `json:"perms"`
	Description string                `json:"description,omitempty"`
	Format      Format                `json:"format"`
	Unit        Unit                  `json:"unit,omitempty"`
	MinValue    *float64              `json:"minValue,omitempty"`
	MaxValue    *float64              `json:"maxValue,omitempty"`
	MinStep     *float64              `json:"minStep,omitempty"`
	MaxLen      *int                  `json:"maxLen,omitempty"`
	MaxDataLen  *int                  `json:"maxDataLen,omitempty"`
	ValidValues []int64               `json:"valid-values,omitempty"`
	ValidRange  []int64               `json:"valid-values-range,omitempty"`
}

// jsonNull keeps an explicit null through omitempty.
var jsonNull = json.RawMessage("null")

// Characteristic is a single typed value of a service, e.g. Brightness.
// All methods are safe for concurrent use.
type Characteristic struct {
	displayName string
	uuid        string
	typeName    string
	eventOnly   bool
	nullPolicy  NullPolicy

	cfg Config
	log logging.LeveledLogger
	bus *emitter.Emitter

	mu            sync.Mutex
	iid           uint64
	props         CharacteristicProps
	value         any
	status        HAPStatus
	subscriptions uint
	nullCount     int
	getHandler    GetHandler
	setHandler    SetHandler
	legacyGet     int
	legacySet     int
}

// New creates a characteristic with the default Config.
func New(displayName, uuid string, props CharacteristicProps) (*Characteristic, error) {
	return NewWithConfig(displayName, uuid, props, Config{})
}

// NewWithConfig creates a characteristic. uuid may be a short HAP type.
// Format and perms are required, the value starts at the format default.
func NewWithConfig(displayName, uuid string, props CharacteristicProps, cfg Config) (*Characteristic, error) {
	long, err := NormalizeUUID(uuid)
	if err != nil {
		return nil, err
	}
	if props.Format == "" {
		return nil, fmt.Errorf("%w: %s: format is required", ErrInvalidProps, displayName)
	}
	if len(props.Perms) == 0 {
		return nil, fmt.Errorf("%w: %s: perms are required", ErrInvalidProps, displayName)
	}

	cfg = cfg.withDefaults()
	c := &Characteristic{
		displayName: displayName,
		uuid:        long,
		nullPolicy:  cfg.NullPolicy,
		cfg:         cfg,
		log:         cfg.LoggerFactory.NewLogger("characteristic"),
		bus:         newBus(),
	}
	if c.nullPolicy == NullPolicyDefault {
		c.nullPolicy = defaultNullPolicy(long)
	}
	if cfg.EventOnly != nil {
		c.eventOnly = *cfg.EventOnly
	} else {
		c.eventOnly = long == CType_ProgrammableSwitchEvent.Long()
	}

	pp := PatchFromProps(props)
	if err := pp.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", displayName, err)
	}
	if _, err := c.props.apply(pp, c.diag); err != nil {
		return nil, fmt.Errorf("%s: %w", displayName, err)
	}
	c.value = defaultValue(c.props)
	return c, nil
}

func (c *Characteristic) diag(format string, args ...any) {
	c.log.Warnf("%s: "+format, append([]any{c.displayName}, args...)...)
}

// defaultValue is the value a characteristic of props starts with.
func defaultValue(p CharacteristicProps) any {
	switch p.Format {
	case FormatBool:
		return false
	case FormatString:
		return ""
	case FormatData, FormatTLV8:
		return []byte{}
	case FormatArray:
		return []any{}
	case FormatDictionary:
		return map[string]any{}
	}
	if !p.Format.IsNumeric() {
		return nil
	}

	lo, hi := p.bounds()
	v := 0.0
	if p.MinValue != nil {
		v = *p.MinValue
	}
	v = max(lo, min(v, hi))
	if p.Format == FormatUInt64 && v >= uint64Ceiling {
		v = 0
	}
	n := numberFromFloat(v)
	if p.Format.IsInteger() && !n.integral() {
		n = numberFromFloat(math.Ceil(v))
	}
	if len(p.ValidValues) > 0 && !inValidValues(p.ValidValues, n) {
		n = numberFromFloat(float64(p.ValidValues[0]))
	}
	if r := p.ValidValueRanges; r != nil && !inRange(*r, n) {
		n = numberFromFloat(float64(r[0]))
	}
	return storeNumber(p.Format, n)
}

// SetIID assigns the instance id the accessory gave this characteristic.
func (c *Characteristic) SetIID(iid uint64) *Characteristic {
	c.mu.Lock()
	c.iid = iid
	c.mu.Unlock()
	return c
}

// IID returns the instance id, 0 until one is assigned.
func (c *Characteristic) IID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.iid
}

// UUID returns the normalized long form uuid.
func (c *Characteristic) UUID() string { return c.uuid }

// DisplayName is the name used in logs and as the default description.
func (c *Characteristic) DisplayName() string { return c.displayName }

// TypeName is the catalog name the characteristic was created from, if any.
func (c *Characteristic) TypeName() string { return c.typeName }

// EventOnly reports whether reads of this characteristic always yield null.
func (c *Characteristic) EventOnly() bool { return c.eventOnly }

// NullPolicy returns the resolved policy, never NullPolicyDefault.
func (c *Characteristic) NullPolicy() NullPolicy { return c.nullPolicy }

// Props returns a copy of the current props.
func (c *Characteristic) Props() CharacteristicProps {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props.Clone()
}

// Value returns the stored value without consulting any handler.
func (c *Characteristic) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Status returns the status stored by the last request or UpdateError.
func (c *Characteristic) Status() HAPStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SetProps merges pp into the props. Fields that do not fit the format are
// dropped with a warning. Merged bounds with minValue above maxValue clear
// both bounds and return ErrMinGreaterThanMax. A format change resets the
// value to the default of the new format.
func (c *Characteristic) SetProps(pp PropsPatch) (*Characteristic, error) {
	if err := pp.check(); err != nil {
		return c, fmt.Errorf("%s: %w", c.displayName, err)
	}

	var diags []string
	collect := func(format string, args ...any) {
		diags = append(diags, fmt.Sprintf(format, args...))
	}

	c.mu.Lock()
	formatChanged, err := c.props.apply(pp, collect)
	if formatChanged {
		c.value = defaultValue(c.props)
	} else if c.value != nil {
		v, d := validateUserInput(c.props, c.value, defaultValue(c.props))
		c.value = v
		diags = append(diags, d...)
	}
	c.mu.Unlock()

	c.warnAll(WarningMessage, diags)
	if err != nil {
		return c, fmt.Errorf("%s: %w", c.displayName, err)
	}
	return c, nil
}

// ToHAP renders the characteristic for the accessory database. With
// queryLive the get handler is consulted, a failing handler falls back to
// the stored value.
func (c *Characteristic) ToHAP(ctx context.Context, conn Connection, queryLive bool) (CharacteristicDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return CharacteristicDescriptor{}, err
	}

	props := c.Props()
	d := CharacteristicDescriptor{
		Type:        HapCharacteristicType(ShortUUID(c.uuid)),
		Iid:         c.IID(),
		Permissions: slices.Clone(props.Perms),
		Description: props.Description,
		Format:      props.Format,
		Unit:        props.Unit,
		MinValue:    props.MinValue,
		MaxValue:    props.MaxValue,
		MinStep:     props.MinStep,
		MaxLen:      props.MaxLen,
		MaxDataLen:  props.MaxDataLen,
		ValidValues: props.ValidValues,
	}
	if d.Description == "" {
		d.Description = c.displayName
	}
	if r := props.ValidValueRanges; r != nil {
		d.ValidRange = []int64{r[0], r[1]}
	}

	if !props.Perms.CanRead() {
		return d, nil
	}
	if c.eventOnly {
		d.Value = jsonNull
		return d, nil
	}

	var value any
	if queryLive {
		v, err := c.HandleGetRequest(ctx, conn, nil)
		if err != nil {
			c.log.Debugf("%s: live value unavailable, using stored value: %v", c.displayName, err)
			value = c.storedValue()
		} else {
			value = v
		}
	} else {
		value = c.storedValue()
	}

	if value == nil {
		d.Value = jsonNull
	} else {
		d.Value = FormatOutgoingValue(value, props)
	}
	return d, nil
}

// storedValue returns the stored value passed through the lenient validator.
func (c *Characteristic) storedValue() any {
	c.mu.Lock()
	if c.value == nil {
		c.mu.Unlock()
		return nil
	}
	v, diags := c.coerceLocked(c.value)
	c.mu.Unlock()
	c.warnAll(WarningDebugMessage, diags)
	return v
}

func (c *Characteristic) String() string {
	return fmt.Sprintf("%s (%s)", c.displayName, ShortUUID(c.uuid))
}
