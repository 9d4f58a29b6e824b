package tlv8

import "encoding/binary"

// Uint returns v as a little-endian value of the smallest of 1, 2, 4 or 8 bytes.
func Uint(v uint64) []byte {
	switch {
	case v <= 0xFF:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		return binary.LittleEndian.AppendUint16(nil, uint16(v))
	case v <= 0xFFFFFFFF:
		return binary.LittleEndian.AppendUint32(nil, uint32(v))
	}
	return binary.LittleEndian.AppendUint64(nil, v)
}

// UintItem is shorthand for an item holding Uint(v).
func UintItem(tag byte, v uint64) Item {
	return Item{Tag: tag, Value: Uint(v)}
}

// ReadUint decodes a little-endian unsigned integer of up to 8 bytes.
// An empty value decodes to zero.
func ReadUint(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, ErrIntegerTooLong
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}
