package hkaccessory

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xiam/to"

	"github.com/hkontrol/hkaccessory/tlv8"
)

// number is a numeric input. u holds the exact value of non negative
// integers, f is always set.
type number struct {
	f     float64
	u     uint64
	exact bool
}

func (n number) integral() bool {
	return n.exact || n.f == math.Trunc(n.f)
}

func numberFromFloat(f float64) number {
	n := number{f: f}
	if f >= 0 && f < uint64Ceiling && f == math.Trunc(f) {
		n.u, n.exact = uint64(f), true
	}
	return n
}

// numberOf accepts the Go numeric kinds and json.Number, nothing else.
func numberOf(v any) (number, bool) {
	if jn, ok := v.(json.Number); ok {
		if u, err := strconv.ParseUint(string(jn), 10, 64); err == nil {
			return number{f: float64(u), u: u, exact: true}, true
		}
		f, err := jn.Float64()
		if err != nil {
			return number{}, false
		}
		return numberFromFloat(f), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < 0 {
			return number{f: float64(i)}, true
		}
		return number{f: float64(i), u: uint64(i), exact: true}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		return number{f: float64(u), u: u, exact: true}, true
	case reflect.Float32, reflect.Float64:
		return numberFromFloat(rv.Float()), true
	}
	return number{}, false
}

// uintBounds is bounds() for uint64 without going through float64 for the
// value itself.
func (p CharacteristicProps) uintBounds() (lo, hi uint64) {
	lo, hi = 0, math.MaxUint64
	if p.MinValue != nil && *p.MinValue > 0 {
		if *p.MinValue >= uint64Ceiling {
			lo = math.MaxUint64
		} else {
			lo = uint64(math.Ceil(*p.MinValue))
		}
	}
	if p.MaxValue != nil {
		switch {
		case *p.MaxValue < 0:
			hi = 0
		case *p.MaxValue < uint64Ceiling:
			hi = uint64(math.Floor(*p.MaxValue))
		}
	}
	return lo, hi
}

// storeNumber converts an in range number to the Go type stored for f.
func storeNumber(f Format, n number) any {
	switch f {
	case FormatFloat:
		return n.f
	case FormatInt32:
		return int32(n.f)
	case FormatUInt8:
		return uint8(n.f)
	case FormatUInt16:
		return uint16(n.f)
	case FormatUInt32:
		return uint32(n.f)
	case FormatUInt64:
		if n.exact {
			return n.u
		}
		return uint64(n.f)
	}
	return n.f
}

func decodeData(v any) ([]byte, bool) {
	switch d := v.(type) {
	case []byte:
		return slices.Clone(d), true
	case string:
		b, err := base64.StdEncoding.DecodeString(d)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}

// validateClientSuppliedValue checks a value written by a controller. It
// never coerces, any mismatch is an error. The returned value has the Go
// type stored for the format.
func validateClientSuppliedValue(name string, p CharacteristicProps, v any) (any, error) {
	invalid := func(format string, args ...any) error {
		return &ValidationError{Characteristic: name, Value: v, Reason: fmt.Sprintf(format, args...)}
	}

	if v == nil {
		return nil, invalid("null is not a valid %s value", p.Format)
	}

	switch p.Format {
	case FormatBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		if n, ok := numberOf(v); ok && n.exact && n.u <= 1 {
			return n.u == 1, nil
		}
		return nil, invalid("expected a boolean")

	case FormatInt32, FormatFloat, FormatUInt8, FormatUInt16, FormatUInt32, FormatUInt64:
		var n number
		if b, ok := v.(bool); ok {
			n = numberFromFloat(0)
			if b {
				n = numberFromFloat(1)
			}
		} else if n, ok = numberOf(v); !ok {
			return nil, invalid("expected a number")
		}
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return nil, invalid("not a finite number")
		}
		if p.Format.IsInteger() && !n.integral() {
			return nil, invalid("expected an integer for format %s", p.Format)
		}

		if p.Format == FormatUInt64 {
			if !n.exact {
				return nil, invalid("out of range for format uint64")
			}
			lo, hi := p.uintBounds()
			if n.u < lo || n.u > hi {
				return nil, invalid("must be within [%d, %d]", lo, hi)
			}
		} else {
			lo, hi := p.bounds()
			if n.f < lo || n.f > hi {
				return nil, invalid("must be within [%v, %v]", lo, hi)
			}
		}

		if p.ValidValues != nil && !inValidValues(p.ValidValues, n) {
			return nil, invalid("not one of the valid values %v", p.ValidValues)
		}
		if r := p.ValidValueRanges; r != nil && !inRange(*r, n) {
			return nil, invalid("not within the valid range %v", *r)
		}
		return storeNumber(p.Format, n), nil

	case FormatString:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("expected a string")
		}
		if n := utf8.RuneCountInString(s); n > p.maxLen() {
			return nil, invalid("string length %d exceeds maxLen %d", n, p.maxLen())
		}
		return s, nil

	case FormatData:
		b, ok := decodeData(v)
		if !ok {
			return nil, invalid("expected base64 data")
		}
		if len(b) > p.maxDataLen() {
			return nil, invalid("data length %d exceeds maxDataLen %d", len(b), p.maxDataLen())
		}
		return b, nil

	case FormatTLV8:
		b, ok := decodeData(v)
		if !ok {
			return nil, invalid("expected base64 tlv8")
		}
		if _, err := tlv8.DecodeItems(b); err != nil {
			return nil, invalid("malformed tlv8: %v", err)
		}
		return b, nil

	case FormatArray:
		if a, ok := v.([]any); ok {
			return a, nil
		}
		return nil, invalid("expected an array")

	case FormatDictionary:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
		return nil, invalid("expected a dictionary")
	}
	return nil, invalid("unknown format %q", p.Format)
}

func inValidValues(vv []int64, n number) bool {
	if !n.integral() {
		return false
	}
	if n.exact {
		return n.u <= math.MaxInt64 && slices.Contains(vv, int64(n.u))
	}
	return slices.Contains(vv, int64(n.f))
}

func inRange(r [2]int64, n number) bool {
	if n.exact {
		return r[1] >= 0 && n.u <= uint64(r[1]) && (r[0] <= 0 || n.u >= uint64(r[0]))
	}
	return n.f >= float64(r[0]) && n.f <= float64(r[1])
}

// validateUserInput coerces an application supplied value into the stored
// type of the format. Every coercion is reported in diags, values that
// cannot be coerced fall back to prev. Null is handled by the caller.
func validateUserInput(p CharacteristicProps, v, prev any) (value any, diags []string) {
	diag := func(format string, args ...any) {
		diags = append(diags, fmt.Sprintf(format, args...))
	}
	fallback := func(format string, args ...any) (any, []string) {
		diag(format+", keeping previous value %v", append(args, prev)...)
		return prev, diags
	}

	switch p.Format {
	case FormatBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			pb, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return fallback("cannot convert %q to bool", b)
			}
			diag("converted string %q to bool %t", b, pb)
			return pb, diags
		}
		if _, ok := numberOf(v); ok {
			b := to.Bool(v)
			diag("converted number %v to bool %t", v, b)
			return b, diags
		}
		return fallback("cannot convert %T to bool", v)

	case FormatInt32, FormatFloat, FormatUInt8, FormatUInt16, FormatUInt32, FormatUInt64:
		n, ok := coerceNumber(v, diag)
		if !ok {
			return fallback("cannot convert %v (%T) to %s", v, v, p.Format)
		}
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return fallback("%v is not a finite number", v)
		}
		if p.Format.IsInteger() && !n.integral() {
			r := numberFromFloat(math.Round(n.f))
			diag("rounded %v to %v for format %s", n.f, r.f, p.Format)
			n = r
		}
		n = clampNumber(p, n, diag)

		if p.ValidValues != nil && !inValidValues(p.ValidValues, n) {
			return fallback("%v is not one of the valid values %v", n.f, p.ValidValues)
		}
		if r := p.ValidValueRanges; r != nil && !inRange(*r, n) {
			c := numberFromFloat(math.Max(float64(r[0]), math.Min(n.f, float64(r[1]))))
			diag("value %v is outside the valid range %v, using %v", n.f, *r, c.f)
			n = c
		}
		return storeNumber(p.Format, n), diags

	case FormatString:
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case bool:
			s = strconv.FormatBool(x)
			diag("converted bool %t to string", x)
		default:
			if _, ok := numberOf(v); !ok {
				return fallback("cannot convert %T to string", v)
			}
			s = to.String(v)
			diag("converted number %v to string", v)
		}
		if utf8.RuneCountInString(s) > p.maxLen() {
			r := []rune(s)
			s = string(r[:p.maxLen()])
			diag("string exceeds maxLen %d, truncated to %q", p.maxLen(), s)
		}
		return s, diags

	case FormatData, FormatTLV8:
		b, ok := decodeData(v)
		if !ok {
			return fallback("cannot convert %T to %s", v, p.Format)
		}
		if _, isString := v.(string); isString {
			diag("decoded base64 string into %d bytes", len(b))
		}
		if p.Format == FormatData && len(b) > p.maxDataLen() {
			return fallback("data length %d exceeds maxDataLen %d", len(b), p.maxDataLen())
		}
		return b, diags

	case FormatArray:
		if a, ok := v.([]any); ok {
			return a, nil
		}
		return fallback("cannot convert %T to array", v)

	case FormatDictionary:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
		return fallback("cannot convert %T to dictionary", v)
	}
	return fallback("unknown format %q", p.Format)
}

func coerceNumber(v any, diag func(string, ...any)) (number, bool) {
	switch x := v.(type) {
	case bool:
		n := numberFromFloat(0)
		if x {
			n = numberFromFloat(1)
		}
		diag("converted bool %t to %v", x, n.f)
		return n, true
	case string:
		s := strings.TrimSpace(x)
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			diag("converted string %q to number", x)
			return number{f: float64(u), u: u, exact: true}, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return number{}, false
		}
		diag("converted string %q to number", x)
		return numberFromFloat(f), true
	}
	return numberOf(v)
}

// clampNumber moves n into the bounds of the format and props.
func clampNumber(p CharacteristicProps, n number, diag func(string, ...any)) number {
	if p.Format == FormatUInt64 {
		lo, hi := p.uintBounds()
		switch {
		case !n.exact && n.f < 0, n.exact && n.u < lo:
			diag("value %v is below the minimum %d, using %d", n.f, lo, lo)
			return number{f: float64(lo), u: lo, exact: true}
		case !n.exact, n.u > hi:
			diag("value %v is above the maximum %d, using %d", n.f, hi, hi)
			return number{f: float64(hi), u: hi, exact: true}
		}
		return n
	}

	lo, hi := p.bounds()
	switch {
	case n.f < lo:
		diag("value %v is below the minimum %v, using %v", n.f, lo, lo)
		return numberFromFloat(lo)
	case n.f > hi:
		diag("value %v is above the maximum %v, using %v", n.f, hi, hi)
		return numberFromFloat(hi)
	}
	return n
}

// coerceLocked runs the lenient validator under c.mu and applies the null policy.
func (c *Characteristic) coerceLocked(v any) (any, []string) {
	if v == nil {
		switch c.nullPolicy {
		case NullReject:
			return c.value, []string{fmt.Sprintf("null is not allowed, keeping previous value %v", c.value)}
		case NullTolerate:
			c.nullCount++
			if c.nullCount <= c.cfg.NullTolerance {
				return nil, []string{fmt.Sprintf("null value tolerated (%d of %d), supply a valid %s value", c.nullCount, c.cfg.NullTolerance, c.props.Format)}
			}
			return c.value, []string{fmt.Sprintf("null is no longer tolerated, keeping previous value %v", c.value)}
		}
		return nil, nil
	}
	return validateUserInput(c.props, v, c.value)
}
