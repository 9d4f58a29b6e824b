package hkaccessory

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidValuesOf(t *testing.T) {
	tests := []struct {
		name  string
		props CharacteristicProps
		want  []int64
	}{
		{"list keeps order", CharacteristicProps{Format: FormatUInt8, ValidValues: []int64{3, 1, 2}, MinValue: ptr(0.0), MaxValue: ptr(10.0)}, []int64{3, 1, 2}},
		{"range", CharacteristicProps{Format: FormatUInt8, ValidValueRanges: &[2]int64{2, 5}}, []int64{2, 3, 4, 5}},
		{"min max", CharacteristicProps{Format: FormatInt32, MinValue: ptr(-2.0), MaxValue: ptr(2.0)}, []int64{-2, -1, 0, 1, 2}},
		{"min max step", CharacteristicProps{Format: FormatUInt8, MinValue: ptr(0.0), MaxValue: ptr(100.0), MinStep: ptr(25.0)}, []int64{0, 25, 50, 75, 100}},
		{"step past max", CharacteristicProps{Format: FormatUInt8, MinValue: ptr(0.0), MaxValue: ptr(10.0), MinStep: ptr(4.0)}, []int64{0, 4, 8}},
		{"fractional bounds", CharacteristicProps{Format: FormatFloat, MinValue: ptr(0.5), MaxValue: ptr(3.5)}, []int64{1, 2, 3}},
		{"empty list", CharacteristicProps{Format: FormatUInt8, ValidValues: []int64{}}, []int64(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := ValidValuesOf(tt.props)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slices.Collect(seq))
		})
	}
}

func TestValidValuesFormatRange(t *testing.T) {
	c := newTestCharacteristic(t, customUUID, CharacteristicProps{Format: FormatUInt8, Perms: rwPerms})
	seq, err := c.ValidValues()
	require.NoError(t, err)

	all := slices.Collect(seq)
	require.Len(t, all, 256)
	assert.Equal(t, int64(0), all[0])
	assert.Equal(t, int64(255), all[255])

	// restartable
	assert.Equal(t, all, slices.Collect(seq))
}

func TestValidValuesEarlyStop(t *testing.T) {
	seq, err := ValidValuesOf(CharacteristicProps{Format: FormatUInt64})
	require.NoError(t, err)

	var got []int64
	for v := range seq {
		if v == 3 {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int64{0, 1, 2}, got)
}

func TestValidValuesNoOverflow(t *testing.T) {
	all := slices.Collect(stepRange(math.MaxInt64-2, math.MaxInt64, 1))
	assert.Equal(t, []int64{math.MaxInt64 - 2, math.MaxInt64 - 1, math.MaxInt64}, all)
	all = slices.Collect(stepRange(math.MaxInt64-5, math.MaxInt64, 4))
	assert.Equal(t, []int64{math.MaxInt64 - 5, math.MaxInt64 - 1}, all)
}

func TestValidValuesErrors(t *testing.T) {
	for name, props := range map[string]CharacteristicProps{
		"string":          {Format: FormatString},
		"bool":            {Format: FormatBool},
		"signed unbound":  {Format: FormatInt32},
		"float unbound":   {Format: FormatFloat, MinValue: ptr(0.0)},
		"fractional step": {Format: FormatFloat, MinValue: ptr(0.0), MaxValue: ptr(1.0), MinStep: ptr(0.1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ValidValuesOf(props)
			assert.ErrorIs(t, err, ErrNoValidValuesStrategy)
		})
	}
}
