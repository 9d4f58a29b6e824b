package tlv8

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Marshal encodes a struct whose fields carry `tlv8:"<tag>[,omitempty]"` tags.
//
// Integers are written little-endian in their declared width, bools as one
// byte, strings and byte slices verbatim. Nested structs are encoded
// recursively, slices of anything else become a list under the field tag.
// Fields without a tag are skipped.
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNotStruct
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	var buf bytes.Buffer
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag, omitEmpty, ok := parseTag(f)
		if !ok {
			continue
		}
		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}

		if isList(fv) {
			values := make([][]byte, fv.Len())
			for j := range values {
				b, err := encodeValue(fv.Index(j))
				if err != nil {
					return nil, fmt.Errorf("field %s[%d]: %w", f.Name, j, err)
				}
				values[j] = b
			}
			if len(values) > 0 {
				buf.Write(EncodeList(tag, values))
			}
			continue
		}

		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		b, err := encodeValue(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		writeItem(&buf, tag, b)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes b into the struct pointed to by v. Tags missing from b
// leave their fields untouched.
func Unmarshal(b []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotStruct
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return ErrNotStruct
	}

	m, err := DecodeWithLists(b)
	if err != nil {
		return err
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag, _, ok := parseTag(f)
		if !ok {
			continue
		}
		entries, ok := m[tag]
		if !ok || len(entries) == 0 {
			continue
		}
		fv := rv.Field(i)

		if isList(fv) {
			list := reflect.MakeSlice(fv.Type(), len(entries), len(entries))
			for j, e := range entries {
				if err := decodeValue(e, list.Index(j)); err != nil {
					return fmt.Errorf("field %s[%d]: %w", f.Name, j, err)
				}
			}
			fv.Set(list)
			continue
		}

		if fv.Kind() == reflect.Pointer {
			fv.Set(reflect.New(fv.Type().Elem()))
			fv = fv.Elem()
		}
		if err := decodeValue(bytes.Join(entries, nil), fv); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

func parseTag(f reflect.StructField) (tag byte, omitEmpty bool, ok bool) {
	s, ok := f.Tag.Lookup("tlv8")
	if !ok || s == "-" || !f.IsExported() {
		return 0, false, false
	}
	parts := strings.Split(s, ",")
	n, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return 0, false, false
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			omitEmpty = true
		}
	}
	return byte(n), omitEmpty, true
}

// isList reports whether v is a slice encoded as separate list entries,
// which is every slice except []byte.
func isList(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8
}

func encodeValue(v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return fixedUint(v.Uint(), int(v.Type().Size())), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return fixedUint(uint64(v.Int()), int(v.Type().Size())), nil
	case reflect.String:
		return []byte(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return append([]byte{}, v.Bytes()...), nil
		}
	case reflect.Struct:
		return Marshal(v.Interface())
	case reflect.Pointer:
		if !v.IsNil() {
			return encodeValue(v.Elem())
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
}

func fixedUint(u uint64, size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}
	return b
}

func decodeValue(b []byte, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		u, err := ReadUint(b)
		if err != nil {
			return err
		}
		v.SetBool(u != 0)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		u, err := ReadUint(b)
		if err != nil {
			return err
		}
		if v.OverflowUint(u) {
			return fmt.Errorf("%w: %d into %s", ErrOverflow, u, v.Type())
		}
		v.SetUint(u)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		u, err := ReadUint(b)
		if err != nil {
			return err
		}
		i := signExtend(u, len(b))
		if v.OverflowInt(i) {
			return fmt.Errorf("%w: %d into %s", ErrOverflow, i, v.Type())
		}
		v.SetInt(i)
	case reflect.String:
		v.SetString(string(b))
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
		}
		v.SetBytes(append([]byte{}, b...))
	case reflect.Struct:
		return Unmarshal(b, v.Addr().Interface())
	case reflect.Pointer:
		v.Set(reflect.New(v.Type().Elem()))
		return decodeValue(b, v.Elem())
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
	return nil
}

func signExtend(u uint64, n int) int64 {
	if n == 0 || n >= 8 {
		return int64(u)
	}
	shift := uint(64 - 8*n)
	return int64(u<<shift) >> shift
}
