package hkaccessory

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Definition describes one known characteristic type.
type Definition struct {
	Name             string     `yaml:"name"`
	DisplayName      string     `yaml:"displayName"`
	UUID             string     `yaml:"uuid"`
	Format           Format     `yaml:"format"`
	Perms            Perms      `yaml:"perms"`
	Unit             Unit       `yaml:"unit,omitempty"`
	MinValue         *float64   `yaml:"minValue,omitempty"`
	MaxValue         *float64   `yaml:"maxValue,omitempty"`
	MinStep          *float64   `yaml:"minStep,omitempty"`
	MaxLen           *int       `yaml:"maxLen,omitempty"`
	MaxDataLen       *int       `yaml:"maxDataLen,omitempty"`
	ValidValues      []int64    `yaml:"validValues,omitempty"`
	ValidValueRanges []int64    `yaml:"validValueRanges,omitempty"`
	AdminOnlyAccess  []Access   `yaml:"adminOnlyAccess,omitempty"`
	Default          any        `yaml:"default,omitempty"`
	NullPolicy       NullPolicy `yaml:"nullPolicy,omitempty"`
	EventOnly        bool       `yaml:"eventOnly,omitempty"`
}

// Props returns the props a characteristic of this type starts with.
func (d *Definition) Props() CharacteristicProps {
	p := CharacteristicProps{
		Format:          d.Format,
		Perms:           slices.Clone(d.Perms),
		Unit:            d.Unit,
		MinValue:        clonePtr(d.MinValue),
		MaxValue:        clonePtr(d.MaxValue),
		MinStep:         clonePtr(d.MinStep),
		MaxLen:          clonePtr(d.MaxLen),
		MaxDataLen:      clonePtr(d.MaxDataLen),
		ValidValues:     slices.Clone(d.ValidValues),
		AdminOnlyAccess: slices.Clone(d.AdminOnlyAccess),
	}
	if len(d.ValidValueRanges) == 2 {
		p.ValidValueRanges = &[2]int64{d.ValidValueRanges[0], d.ValidValueRanges[1]}
	}
	return p
}

func (d *Definition) newCharacteristic(displayName string, cfg Config) (*Characteristic, error) {
	if displayName == "" {
		displayName = d.DisplayName
	}
	if cfg.NullPolicy == NullPolicyDefault {
		cfg.NullPolicy = d.NullPolicy
	}
	if cfg.EventOnly == nil && d.EventOnly {
		eventOnly := true
		cfg.EventOnly = &eventOnly
	}

	c, err := NewWithConfig(displayName, d.UUID, d.Props(), cfg)
	if err != nil {
		return nil, err
	}
	c.typeName = d.Name
	if d.Default != nil {
		v, diags := validateUserInput(c.props, d.Default, c.value)
		if len(diags) > 0 {
			return nil, fmt.Errorf("%w: %s: default %v: %s", ErrInvalidProps, d.Name, d.Default, strings.Join(diags, "; "))
		}
		c.value = v
	}
	return c, nil
}

// Catalog is an immutable set of characteristic definitions, indexed by
// name and uuid.
type Catalog struct {
	defs   []*Definition
	byName map[string]*Definition
	byUUID map[string]*Definition
}

type catalogFile struct {
	Characteristics []*Definition `yaml:"characteristics"`
}

// LoadCatalog parses a yaml catalog. Every definition is checked by
// building a characteristic from it.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	c := &Catalog{
		byName: make(map[string]*Definition),
		byUUID: make(map[string]*Definition),
	}
	for _, d := range f.Characteristics {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog: definition without name (uuid %q)", d.UUID)
		}
		long, err := NormalizeUUID(d.UUID)
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", d.Name, err)
		}
		d.UUID = long
		if d.DisplayName == "" {
			d.DisplayName = d.Name
		}
		if n := len(d.ValidValueRanges); n != 0 && n != 2 {
			return nil, fmt.Errorf("catalog: %s: %w: validValueRanges needs 2 values, got %d", d.Name, ErrInvalidProps, n)
		}

		key := strings.ToLower(d.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate name %s", d.Name)
		}
		if _, dup := c.byUUID[long]; dup {
			return nil, fmt.Errorf("catalog: duplicate uuid %s (%s)", long, d.Name)
		}
		if _, err := d.newCharacteristic("", Config{LoggerFactory: quietLoggerFactory()}); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}

		c.defs = append(c.defs, d)
		c.byName[key] = d
		c.byUUID[long] = d
	}
	return c, nil
}

// DefaultCatalog parses the built in catalog of Apple defined types.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(catalogYAML))
}

// Lookup finds a definition by name (case insensitive) or by short or long
// uuid. A nil catalog finds nothing.
func (c *Catalog) Lookup(nameOrUUID string) (*Definition, bool) {
	if c == nil || nameOrUUID == "" {
		return nil, false
	}
	if d, ok := c.byName[strings.ToLower(nameOrUUID)]; ok {
		return d, true
	}
	long, err := NormalizeUUID(nameOrUUID)
	if err != nil {
		return nil, false
	}
	d, ok := c.byUUID[long]
	return d, ok
}

// New creates a characteristic from the definition named nameOrUUID, with
// the definition display name.
func (c *Catalog) New(nameOrUUID string, cfg Config) (*Characteristic, error) {
	d, ok := c.Lookup(nameOrUUID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharacteristic, nameOrUUID)
	}
	return d.newCharacteristic("", cfg)
}

// Definitions returns all definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.defs))
	for i, d := range c.defs {
		out[i] = *d
	}
	return out
}
