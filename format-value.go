package hkaccessory

import (
	"encoding/base64"
	"math"
)

// FormatOutgoingValue prepares value for the HAP JSON. Booleans become 1 and
// 0, floats are quantized to minStep when it is below 1 and byte slices are
// base64 encoded. Everything else passes through.
func FormatOutgoingValue(value any, props CharacteristicProps) any {
	switch v := value.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case float64:
		return quantize(v, props)
	case float32:
		return quantize(float64(v), props)
	}
	return value
}

func quantize(v float64, props CharacteristicProps) float64 {
	if props.MinStep == nil || *props.MinStep >= 1 || *props.MinStep <= 0 {
		return v
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	step := *props.MinStep
	base := 0.0
	if props.MinValue != nil {
		base = *props.MinValue
	}

	q := math.Round((v-base)/step)*step + base
	// 4 decimals
	return math.Round(q*10000) / 10000
}
