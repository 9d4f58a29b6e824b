package hkaccessory

import (
	"fmt"
	"math"
	"slices"
)

const (
	// DefaultMaxLen applies to string characteristics without maxLen.
	DefaultMaxLen = 64
	// MaxStringLen is the largest maxLen HAP allows.
	MaxStringLen = 256
	// DefaultMaxDataLen applies to data characteristics without maxDataLen.
	DefaultMaxDataLen = 0x200000
)

// CharacteristicProps describes the type and constraints of a characteristic.
type CharacteristicProps struct {
	Format           Format    `json:"format" yaml:"format"`
	Perms            Perms     `json:"perms" yaml:"perms"`
	Unit             Unit      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description      string    `json:"description,omitempty" yaml:"description,omitempty"`
	MinValue         *float64  `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue         *float64  `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	MinStep          *float64  `json:"minStep,omitempty" yaml:"minStep,omitempty"`
	MaxLen           *int      `json:"maxLen,omitempty" yaml:"maxLen,omitempty"`
	MaxDataLen       *int      `json:"maxDataLen,omitempty" yaml:"maxDataLen,omitempty"`
	ValidValues      []int64   `json:"validValues,omitempty" yaml:"validValues,omitempty"`
	ValidValueRanges *[2]int64 `json:"validValueRanges,omitempty" yaml:"validValueRanges,omitempty"`
	AdminOnlyAccess  []Access  `json:"adminOnlyAccess,omitempty" yaml:"adminOnlyAccess,omitempty"`
}

// Clone returns a deep copy of p.
func (p CharacteristicProps) Clone() CharacteristicProps {
	c := p
	c.Perms = slices.Clone(p.Perms)
	c.MinValue = clonePtr(p.MinValue)
	c.MaxValue = clonePtr(p.MaxValue)
	c.MinStep = clonePtr(p.MinStep)
	c.MaxLen = clonePtr(p.MaxLen)
	c.MaxDataLen = clonePtr(p.MaxDataLen)
	c.ValidValues = slices.Clone(p.ValidValues)
	c.ValidValueRanges = clonePtr(p.ValidValueRanges)
	c.AdminOnlyAccess = slices.Clone(p.AdminOnlyAccess)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (p CharacteristicProps) maxLen() int {
	if p.MaxLen != nil {
		return *p.MaxLen
	}
	return DefaultMaxLen
}

func (p CharacteristicProps) maxDataLen() int {
	if p.MaxDataLen != nil {
		return *p.MaxDataLen
	}
	return DefaultMaxDataLen
}

// bounds intersects minValue and maxValue with the intrinsic range of the format.
func (p CharacteristicProps) bounds() (lo, hi float64) {
	lo, hi = p.Format.floatRange()
	if p.MinValue != nil && *p.MinValue > lo {
		lo = *p.MinValue
	}
	if p.MaxValue != nil && *p.MaxValue < hi {
		hi = *p.MaxValue
	}
	return lo, hi
}

type patchState uint8

const (
	patchAbsent patchState = iota
	patchValue
	patchNull
)

// Patch is one field of a PropsPatch. The zero Patch leaves the field
// untouched, Some sets it and Null clears it.
type Patch[T any] struct {
	state patchState
	value T
}

// Some returns a patch that sets a field to v.
func Some[T any](v T) Patch[T] {
	return Patch[T]{state: patchValue, value: v}
}

// Null returns a patch that clears an optional field.
func Null[T any]() Patch[T] {
	return Patch[T]{state: patchNull}
}

func (p Patch[T]) IsSet() bool  { return p.state == patchValue }
func (p Patch[T]) IsNull() bool { return p.state == patchNull }

// Get returns the patched value and whether one is set.
func (p Patch[T]) Get() (T, bool) {
	return p.value, p.state == patchValue
}

// PropsPatch is a partial update of CharacteristicProps.
type PropsPatch struct {
	Format           Patch[Format]
	Perms            Patch[Perms]
	Unit             Patch[Unit]
	Description      Patch[string]
	MinValue         Patch[float64]
	MaxValue         Patch[float64]
	MinStep          Patch[float64]
	MaxLen           Patch[int]
	MaxDataLen       Patch[int]
	ValidValues      Patch[[]int64]
	ValidValueRanges Patch[[2]int64]
	AdminOnlyAccess  Patch[[]Access]
}

// PatchFromProps returns a patch setting every field present in p.
func PatchFromProps(p CharacteristicProps) PropsPatch {
	var pp PropsPatch
	if p.Format != "" {
		pp.Format = Some(p.Format)
	}
	if p.Perms != nil {
		pp.Perms = Some(slices.Clone(p.Perms))
	}
	if p.Unit != "" {
		pp.Unit = Some(p.Unit)
	}
	if p.Description != "" {
		pp.Description = Some(p.Description)
	}
	if p.MinValue != nil {
		pp.MinValue = Some(*p.MinValue)
	}
	if p.MaxValue != nil {
		pp.MaxValue = Some(*p.MaxValue)
	}
	if p.MinStep != nil {
		pp.MinStep = Some(*p.MinStep)
	}
	if p.MaxLen != nil {
		pp.MaxLen = Some(*p.MaxLen)
	}
	if p.MaxDataLen != nil {
		pp.MaxDataLen = Some(*p.MaxDataLen)
	}
	if p.ValidValues != nil {
		pp.ValidValues = Some(slices.Clone(p.ValidValues))
	}
	if p.ValidValueRanges != nil {
		pp.ValidValueRanges = Some(*p.ValidValueRanges)
	}
	if p.AdminOnlyAccess != nil {
		pp.AdminOnlyAccess = Some(slices.Clone(p.AdminOnlyAccess))
	}
	return pp
}

// ReplacePatchFromProps is PatchFromProps with every optional field that is
// unset in p cleared, so applying it leaves exactly p.
func ReplacePatchFromProps(p CharacteristicProps) PropsPatch {
	pp := PatchFromProps(p)
	if p.Unit == "" {
		pp.Unit = Null[Unit]()
	}
	if p.Description == "" {
		pp.Description = Null[string]()
	}
	if p.MinValue == nil {
		pp.MinValue = Null[float64]()
	}
	if p.MaxValue == nil {
		pp.MaxValue = Null[float64]()
	}
	if p.MinStep == nil {
		pp.MinStep = Null[float64]()
	}
	if p.MaxLen == nil {
		pp.MaxLen = Null[int]()
	}
	if p.MaxDataLen == nil {
		pp.MaxDataLen = Null[int]()
	}
	if p.ValidValues == nil {
		pp.ValidValues = Null[[]int64]()
	}
	if p.ValidValueRanges == nil {
		pp.ValidValueRanges = Null[[2]int64]()
	}
	if p.AdminOnlyAccess == nil {
		pp.AdminOnlyAccess = Null[[]Access]()
	}
	return pp
}

// check rejects patches that can never be applied. Nothing is changed when
// it fails.
func (pp PropsPatch) check() error {
	if f, ok := pp.Format.Get(); ok && !f.Valid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidProps, f)
	}
	if perms, ok := pp.Perms.Get(); ok {
		if len(perms) == 0 {
			return fmt.Errorf("%w: perms cannot be empty", ErrInvalidProps)
		}
		for _, p := range perms {
			if !p.Valid() {
				return fmt.Errorf("%w: unknown perm %q", ErrInvalidProps, p)
			}
		}
	}
	if vv, ok := pp.ValidValues.Get(); ok && len(vv) == 0 {
		return fmt.Errorf("%w: validValues cannot be empty", ErrInvalidProps)
	}
	return nil
}

// apply merges pp into p field by field. Fields that do not fit the format
// are dropped and reported through diag. The returned error is only set when
// the merged bounds are inverted, both bounds are cleared in that case.
func (p *CharacteristicProps) apply(pp PropsPatch, diag func(string, ...any)) (formatChanged bool, err error) {
	if f, ok := pp.Format.Get(); ok {
		formatChanged = p.Format != f
		p.Format = f
	}
	if perms, ok := pp.Perms.Get(); ok {
		p.Perms = slices.Clone(perms)
	}
	if u, ok := pp.Unit.Get(); ok {
		p.Unit = u
	} else if pp.Unit.IsNull() {
		p.Unit = ""
	}
	if d, ok := pp.Description.Get(); ok {
		p.Description = d
	} else if pp.Description.IsNull() {
		p.Description = ""
	}

	lo, hi := p.Format.floatRange()

	switch v, ok := pp.MinValue.Get(); {
	case pp.MinValue.IsNull():
		p.MinValue = nil
	case !ok:
	case !p.Format.IsNumeric():
		diag("property 'minValue' can only be set for numeric formats, not for %s", p.Format)
	case math.IsNaN(v) || math.IsInf(v, 0):
		diag("property 'minValue' must be a finite number, received %v", v)
	case v < lo:
		diag("property 'minValue' was set to %v, but for format %s the minimum possible is %v", v, p.Format, lo)
		p.MinValue = &lo
	case v > hi:
		diag("property 'minValue' was set to %v, but for format %s the maximum possible is %v", v, p.Format, hi)
		p.MinValue = &hi
	default:
		p.MinValue = &v
	}

	switch v, ok := pp.MaxValue.Get(); {
	case pp.MaxValue.IsNull():
		p.MaxValue = nil
	case !ok:
	case !p.Format.IsNumeric():
		diag("property 'maxValue' can only be set for numeric formats, not for %s", p.Format)
	case math.IsNaN(v) || math.IsInf(v, 0):
		diag("property 'maxValue' must be a finite number, received %v", v)
	case v > hi:
		diag("property 'maxValue' was set to %v, but for format %s the maximum possible is %v", v, p.Format, hi)
		p.MaxValue = &hi
	case v < lo:
		diag("property 'maxValue' was set to %v, but for format %s the minimum possible is %v", v, p.Format, lo)
		p.MaxValue = &lo
	default:
		p.MaxValue = &v
	}

	switch v, ok := pp.MinStep.Get(); {
	case pp.MinStep.IsNull():
		p.MinStep = nil
	case !ok:
	case !p.Format.IsNumeric():
		diag("property 'minStep' can only be set for numeric formats, not for %s", p.Format)
	case math.IsNaN(v) || math.IsInf(v, 0) || v <= 0:
		diag("property 'minStep' must be a positive finite number, received %v", v)
	case v < 1 && p.Format.IsInteger():
		diag("property 'minStep' was set to %v, but for format %s the minimum possible is 1", v, p.Format)
		one := 1.0
		p.MinStep = &one
	default:
		p.MinStep = &v
	}

	switch v, ok := pp.MaxLen.Get(); {
	case pp.MaxLen.IsNull():
		p.MaxLen = nil
	case !ok:
	case p.Format != FormatString:
		diag("property 'maxLen' can only be set for format string, not for %s", p.Format)
	case v < 0:
		diag("property 'maxLen' cannot be negative, received %d", v)
	case v > MaxStringLen:
		diag("property 'maxLen' was set to %d, but the maximum length is %d", v, MaxStringLen)
		n := MaxStringLen
		p.MaxLen = &n
	default:
		p.MaxLen = &v
	}

	switch v, ok := pp.MaxDataLen.Get(); {
	case pp.MaxDataLen.IsNull():
		p.MaxDataLen = nil
	case !ok:
	case p.Format != FormatData:
		diag("property 'maxDataLen' can only be set for format data, not for %s", p.Format)
	case v < 0:
		diag("property 'maxDataLen' cannot be negative, received %d", v)
	default:
		p.MaxDataLen = &v
	}

	switch v, ok := pp.ValidValues.Get(); {
	case pp.ValidValues.IsNull():
		p.ValidValues = nil
	case !ok:
	case !p.Format.IsNumeric():
		diag("property 'validValues' can only be set for numeric formats, not for %s", p.Format)
	default:
		p.ValidValues = slices.Clone(v)
	}

	switch v, ok := pp.ValidValueRanges.Get(); {
	case pp.ValidValueRanges.IsNull():
		p.ValidValueRanges = nil
	case !ok:
	case !p.Format.IsNumeric():
		diag("property 'validValueRanges' can only be set for numeric formats, not for %s", p.Format)
	case v[0] > v[1]:
		diag("property 'validValueRanges' lower bound %d is above upper bound %d", v[0], v[1])
	default:
		p.ValidValueRanges = &v
	}

	if v, ok := pp.AdminOnlyAccess.Get(); ok {
		p.AdminOnlyAccess = slices.Clone(v)
	} else if pp.AdminOnlyAccess.IsNull() {
		p.AdminOnlyAccess = nil
	}

	if p.MinValue != nil && p.MaxValue != nil && *p.MinValue > *p.MaxValue {
		minValue, maxValue := *p.MinValue, *p.MaxValue
		p.MinValue, p.MaxValue = nil, nil
		return formatChanged, fmt.Errorf("%w: minValue %v, maxValue %v", ErrMinGreaterThanMax, minValue, maxValue)
	}
	return formatChanged, nil
}
