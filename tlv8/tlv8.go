// Package tlv8 implements the HAP tag-length-value encoding.
//
// Every record is one tag byte, one length byte and up to 255 value bytes.
// Longer values are split into consecutive records carrying the same tag,
// decoders concatenate adjacent records with equal tags again.
package tlv8

import (
	"bytes"
	"fmt"
)

// MaxChunk is the largest value a single record can carry.
const MaxChunk = 255

// Separator is the zero length record placed between list entries that share a tag.
const Separator byte = 0xFF

// Item is one logical tag/value pair.
type Item struct {
	Tag   byte
	Value []byte
}

func (i Item) String() string {
	return fmt.Sprintf("%d[%d]%x", i.Tag, len(i.Value), i.Value)
}

// Encode serializes items in order. Values longer than MaxChunk are
// fragmented into MaxChunk sized records with the same tag.
func Encode(items ...Item) []byte {
	var buf bytes.Buffer
	for _, it := range items {
		writeItem(&buf, it.Tag, it.Value)
	}
	return buf.Bytes()
}

// EncodeList serializes values under the same tag, separated by Separator
// records so the decoder keeps them apart.
func EncodeList(tag byte, values [][]byte) []byte {
	var buf bytes.Buffer
	for i, v := range values {
		if i > 0 {
			buf.Write([]byte{Separator, 0})
		}
		writeItem(&buf, tag, v)
	}
	return buf.Bytes()
}

func writeItem(buf *bytes.Buffer, tag byte, value []byte) {
	if len(value) == 0 {
		buf.Write([]byte{tag, 0})
		return
	}
	for len(value) > 0 {
		n := len(value)
		if n > MaxChunk {
			n = MaxChunk
		}
		buf.WriteByte(tag)
		buf.WriteByte(byte(n))
		buf.Write(value[:n])
		value = value[n:]
	}
}

type record struct {
	tag   byte
	value []byte
}

func records(b []byte) ([]record, error) {
	var out []record
	for i := 0; i < len(b); {
		if len(b)-i < 2 {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrUnexpectedEOF, i)
		}
		tag, n := b[i], int(b[i+1])
		i += 2
		if len(b)-i < n {
			return nil, fmt.Errorf("%w: tag %d wants %d bytes, %d left", ErrUnexpectedEOF, tag, n, len(b)-i)
		}
		out = append(out, record{tag: tag, value: b[i : i+n]})
		i += n
	}
	return out, nil
}

// DecodeItems parses b into items, joining adjacent records that share a tag.
// Separator records are kept so the caller sees list boundaries.
func DecodeItems(b []byte) ([]Item, error) {
	recs, err := records(b)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, r := range recs {
		if n := len(items); n > 0 && items[n-1].Tag == r.tag && r.tag != Separator {
			items[n-1].Value = append(items[n-1].Value, r.value...)
			continue
		}
		items = append(items, Item{Tag: r.tag, Value: append([]byte{}, r.value...)})
	}
	return items, nil
}

// Decode parses b into a map from tag to its reassembled value. Values of a
// tag that occurs more than once are concatenated.
func Decode(b []byte) (map[byte][]byte, error) {
	items, err := DecodeItems(b)
	if err != nil {
		return nil, err
	}

	m := make(map[byte][]byte, len(items))
	for _, it := range items {
		if it.Tag == Separator && len(it.Value) == 0 {
			continue
		}
		m[it.Tag] = append(m[it.Tag], it.Value...)
	}
	return m, nil
}

// DecodeWithLists parses b like Decode, but keeps every non-adjacent
// occurrence of a tag as a separate entry.
func DecodeWithLists(b []byte) (map[byte][][]byte, error) {
	items, err := DecodeItems(b)
	if err != nil {
		return nil, err
	}

	m := make(map[byte][][]byte, len(items))
	for _, it := range items {
		if it.Tag == Separator && len(it.Value) == 0 {
			continue
		}
		m[it.Tag] = append(m[it.Tag], it.Value)
	}
	return m, nil
}
