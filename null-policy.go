package hkaccessory

import (
	"fmt"
	"strings"
)

// NullPolicy decides what the application value path does with a null value.
type NullPolicy int

const (
	// NullPolicyDefault derives the policy from the characteristic uuid.
	NullPolicyDefault NullPolicy = iota
	// NullAllow stores null as is.
	NullAllow
	// NullReject keeps the previous value.
	NullReject
	// NullTolerate accepts null Config.NullTolerance times with a warning,
	// afterwards it behaves like NullReject.
	NullTolerate
)

// DefaultNullTolerance is how many nulls NullTolerate lets through.
const DefaultNullTolerance = 3

func (p NullPolicy) String() string {
	switch p {
	case NullAllow:
		return "allow"
	case NullReject:
		return "reject"
	case NullTolerate:
		return "tolerate"
	}
	return "default"
}

func (p NullPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *NullPolicy) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "default":
		*p = NullPolicyDefault
	case "allow":
		*p = NullAllow
	case "reject":
		*p = NullReject
	case "tolerate":
		*p = NullTolerate
	default:
		return fmt.Errorf("unknown null policy %q", b)
	}
	return nil
}

// defaultNullPolicy: the switch event may be null, naming characteristics
// never, other Apple types for a while and custom types always.
func defaultNullPolicy(long string) NullPolicy {
	switch long {
	case CType_ProgrammableSwitchEvent.Long():
		return NullAllow
	case CType_Name.Long(), CType_ConfiguredName.Long():
		return NullReject
	}
	if IsAppleDefined(long) {
		return NullTolerate
	}
	return NullAllow
}
