package hkaccessory

import (
	"fmt"
	"math"
	"strings"
)

// Format is the HAP wire type of a characteristic value.
type Format string

const (
	FormatBool       Format = "bool"
	FormatInt32      Format = "int"
	FormatFloat      Format = "float"
	FormatString     Format = "string"
	FormatUInt8      Format = "uint8"
	FormatUInt16     Format = "uint16"
	FormatUInt32     Format = "uint32"
	FormatUInt64     Format = "uint64"
	FormatData       Format = "data"
	FormatTLV8       Format = "tlv8"
	FormatArray      Format = "array"
	FormatDictionary Format = "dict"
)

var formats = []Format{
	FormatBool, FormatInt32, FormatFloat, FormatString,
	FormatUInt8, FormatUInt16, FormatUInt32, FormatUInt64,
	FormatData, FormatTLV8, FormatArray, FormatDictionary,
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	for _, k := range formats {
		if k == f {
			return true
		}
	}
	return false
}

// IsNumeric reports whether minValue, maxValue, minStep and the valid value
// constraints apply to f.
func (f Format) IsNumeric() bool {
	switch f {
	case FormatInt32, FormatFloat, FormatUInt8, FormatUInt16, FormatUInt32, FormatUInt64:
		return true
	}
	return false
}

// IsUnsigned reports whether f is one of the uint formats.
func (f Format) IsUnsigned() bool {
	switch f {
	case FormatUInt8, FormatUInt16, FormatUInt32, FormatUInt64:
		return true
	}
	return false
}

// IsInteger reports whether f only holds whole numbers.
func (f Format) IsInteger() bool {
	return f.IsNumeric() && f != FormatFloat
}

// intRange returns the intrinsic bounds of the integer formats as int64.
// uint64 is not covered, its ceiling does not fit.
func (f Format) intRange() (lo, hi int64) {
	switch f {
	case FormatInt32:
		return math.MinInt32, math.MaxInt32
	case FormatUInt8:
		return 0, math.MaxUint8
	case FormatUInt16:
		return 0, math.MaxUint16
	case FormatUInt32:
		return 0, math.MaxUint32
	case FormatUInt64:
		return 0, math.MaxInt64
	}
	return math.MinInt64, math.MaxInt64
}

// floatRange returns the intrinsic bounds of a numeric format as float64.
// The uint64 ceiling is the smallest double above math.MaxUint64, callers
// compare against it with < rather than <=.
func (f Format) floatRange() (lo, hi float64) {
	switch f {
	case FormatFloat:
		return -math.MaxFloat64, math.MaxFloat64
	case FormatUInt64:
		return 0, uint64Ceiling
	}
	l, h := f.intRange()
	return float64(l), float64(h)
}

// 2^64, exactly representable.
const uint64Ceiling = float64(1 << 63) * 2

// Unit is a descriptive physical unit of a numeric characteristic.
type Unit string

const (
	UnitCelsius    Unit = "celsius"
	UnitPercentage Unit = "percentage"
	UnitArcDegrees Unit = "arcdegrees"
	UnitLux        Unit = "lux"
	UnitSeconds    Unit = "seconds"
)

// Perm is a single HAP access flag.
type Perm string

const (
	PermPairedRead              Perm = "pr"
	PermPairedWrite             Perm = "pw"
	PermNotify                  Perm = "ev"
	PermAdditionalAuthorization Perm = "aa"
	PermTimedWrite              Perm = "tw"
	PermHidden                  Perm = "hd"
	PermWriteResponse           Perm = "wr"
)

var permNames = map[Perm]string{
	PermPairedRead:              "paired-read",
	PermPairedWrite:             "paired-write",
	PermNotify:                  "notify",
	PermAdditionalAuthorization: "additional-authorization",
	PermTimedWrite:              "timed-write",
	PermHidden:                  "hidden",
	PermWriteResponse:           "write-response",
}

// Valid reports whether p is a known HAP perm.
func (p Perm) Valid() bool {
	_, ok := permNames[p]
	return ok
}

// String returns the long name of p, e.g. "paired-read" for "pr".
func (p Perm) String() string {
	if n, ok := permNames[p]; ok {
		return n
	}
	return string(p)
}

// Perms is the set of access flags of a characteristic, in declaration order.
type Perms []Perm

// Has reports whether p contains perm.
func (p Perms) Has(perm Perm) bool {
	for _, v := range p {
		if v == perm {
			return true
		}
	}
	return false
}

func (p Perms) CanRead() bool   { return p.Has(PermPairedRead) }
func (p Perms) CanWrite() bool  { return p.Has(PermPairedWrite) }
func (p Perms) CanNotify() bool { return p.Has(PermNotify) }

func (p Perms) String() string {
	s := make([]string, len(p))
	for i, v := range p {
		s[i] = string(v)
	}
	return strings.Join(s, ",")
}

// Access is an operation that may be restricted to admin controllers.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessNotify
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessNotify:
		return "notify"
	}
	return "unknown"
}

func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Access) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "read":
		*a = AccessRead
	case "write":
		*a = AccessWrite
	case "notify":
		*a = AccessNotify
	default:
		return fmt.Errorf("unknown access %q", b)
	}
	return nil
}
