package hkaccessory

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// ValidValues returns every value the characteristic accepts. The first
// strategy that applies wins: the validValues list, the validValueRanges
// pair, minValue/maxValue with minStep, and for unsigned formats the whole
// format range. uint64 stops at math.MaxInt64. The sequence can be ranged
// over any number of times.
func (c *Characteristic) ValidValues() (iter.Seq[int64], error) {
	seq, err := ValidValuesOf(c.Props())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.displayName, err)
	}
	return seq, nil
}

// ValidValuesOf is ValidValues for bare props.
func ValidValuesOf(p CharacteristicProps) (iter.Seq[int64], error) {
	if !p.Format.IsNumeric() {
		return nil, fmt.Errorf("%w: format %s is not numeric", ErrNoValidValuesStrategy, p.Format)
	}

	if p.ValidValues != nil {
		vv := slices.Clone(p.ValidValues)
		return slices.Values(vv), nil
	}
	if r := p.ValidValueRanges; r != nil {
		return stepRange(r[0], r[1], 1), nil
	}

	if p.MinValue != nil && p.MaxValue != nil {
		step := 1.0
		if p.MinStep != nil {
			step = *p.MinStep
		}
		if step < 1 || step != math.Trunc(step) {
			return nil, fmt.Errorf("%w: minStep %v is not a whole number", ErrNoValidValuesStrategy, step)
		}
		lo, hi := math.Ceil(*p.MinValue), math.Floor(*p.MaxValue)
		if lo < math.MinInt64 || hi >= math.MaxInt64 || step >= math.MaxInt64 {
			return nil, fmt.Errorf("%w: bounds exceed int64", ErrNoValidValuesStrategy)
		}
		return stepRange(int64(lo), int64(hi), int64(step)), nil
	}

	if p.Format.IsUnsigned() {
		lo, hi := p.Format.intRange()
		return stepRange(lo, hi, 1), nil
	}
	return nil, fmt.Errorf("%w: %s without bounds", ErrNoValidValuesStrategy, p.Format)
}

// stepRange yields lo, lo+step, ... up to hi inclusive without overflowing.
func stepRange(lo, hi, step int64) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for v := lo; v <= hi; v += step {
			if !yield(v) {
				return
			}
			if v > hi-step {
				return
			}
		}
	}
}
