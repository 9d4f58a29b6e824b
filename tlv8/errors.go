package tlv8

import "errors"

var (
	// ErrUnexpectedEOF is returned when a record header or value runs past the input.
	ErrUnexpectedEOF = errors.New("tlv8: unexpected end of input")

	// ErrIntegerTooLong is returned when an integer value has more than 8 bytes.
	ErrIntegerTooLong = errors.New("tlv8: integer value too long")

	// ErrOverflow is returned when a decoded integer does not fit the target field.
	ErrOverflow = errors.New("tlv8: value overflow")

	// ErrUnsupportedType is returned for struct fields the codec cannot represent.
	ErrUnsupportedType = errors.New("tlv8: unsupported type")

	// ErrNotStruct is returned when Marshal or Unmarshal is given something other than a struct.
	ErrNotStruct = errors.New("tlv8: value is not a struct")
)
