/*
Package dynwire – attribute codec.

Converts native Go values to and from the wire's type-tagged attribute format.
The wire format is restricted to strings, decimal-text numbers, base64 binary
blobs, and homogeneous sets of each. Every encoded attribute carries exactly
one type tag; sets are non-empty.
*/
package dynwire

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is a plain application-level item: attribute name to native value.
// Supported value kinds: string, any Go integer or float, []byte, and
// homogeneous slices thereof ([]string, []float64, []int, [][]byte, or []any
// resolving to one set type). Nil and empty-string values are dropped during
// item encoding; they are never transmitted.
type Item map[string]any

// AttributeValue is the wire representation of one attribute. Exactly one
// field is set. Binary values are base64 on the wire, which encoding/json
// handles for []byte.
type AttributeValue struct {
	S  *string  `json:"S,omitempty"`
	N  *string  `json:"N,omitempty"`
	B  []byte   `json:"B,omitempty"`
	SS []string `json:"SS,omitempty"`
	NS []string `json:"NS,omitempty"`
	BS [][]byte `json:"BS,omitempty"`
}

// wireItem is a decoded-side item: attribute name to tagged value, with the
// tag kept as the JSON key so unknown tags can be detected.
type wireItem map[string]map[string]json.RawMessage

// ─── encoding ─────────────────────────────────────────────────────────────────

// encodeAttribute classifies a native value and produces its tagged wire
// form. Rules, in priority order: []byte → B; a sequence → BS if any element
// is a blob, NS if every element is numeric, SS otherwise; a numeric scalar
// → N; everything else with a string form → S. Nil and empty sequences are
// caller errors.
func encodeAttribute(v any) (AttributeValue, error) {
	switch tv := v.(type) {
	case nil:
		return AttributeValue{}, NewArgError("cannot encode nil attribute value")
	case []byte:
		return AttributeValue{B: tv}, nil
	case string:
		return AttributeValue{S: &tv}, nil
	case []string:
		if len(tv) == 0 {
			return AttributeValue{}, NewArgError("cannot encode empty set")
		}
		return AttributeValue{SS: tv}, nil
	case [][]byte:
		if len(tv) == 0 {
			return AttributeValue{}, NewArgError("cannot encode empty set")
		}
		return AttributeValue{BS: tv}, nil
	case []float64:
		return encodeNumberSet(anySlice(tv))
	case []int:
		return encodeNumberSet(anySlice(tv))
	case []int64:
		return encodeNumberSet(anySlice(tv))
	case []any:
		return encodeSequence(tv)
	}
	if n, ok := numberString(v); ok {
		return AttributeValue{N: &n}, nil
	}
	s := fmt.Sprintf("%v", v)
	return AttributeValue{S: &s}, nil
}

// encodeSequence scans an untyped sequence and infers the set type.
func encodeSequence(seq []any) (AttributeValue, error) {
	if len(seq) == 0 {
		return AttributeValue{}, NewArgError("cannot encode empty set")
	}
	hasBlob := false
	allNumeric := true
	for _, el := range seq {
		if _, ok := el.([]byte); ok {
			hasBlob = true
			continue
		}
		if _, ok := numberString(el); !ok {
			allNumeric = false
		}
	}
	if hasBlob {
		bs := make([][]byte, len(seq))
		for i, el := range seq {
			b, ok := el.([]byte)
			if !ok {
				return AttributeValue{}, argErrorf("binary set element %d is not []byte", i)
			}
			bs[i] = b
		}
		return AttributeValue{BS: bs}, nil
	}
	if allNumeric {
		return encodeNumberSet(seq)
	}
	ss := make([]string, len(seq))
	for i, el := range seq {
		if n, ok := numberString(el); ok {
			ss[i] = n
		} else if s, ok := el.(string); ok {
			ss[i] = s
		} else {
			return AttributeValue{}, argErrorf("string set element %d is not a scalar", i)
		}
	}
	return AttributeValue{SS: ss}, nil
}

func encodeNumberSet(seq []any) (AttributeValue, error) {
	if len(seq) == 0 {
		return AttributeValue{}, NewArgError("cannot encode empty set")
	}
	ns := make([]string, len(seq))
	for i, el := range seq {
		n, ok := numberString(el)
		if !ok {
			return AttributeValue{}, argErrorf("number set element %d is not numeric", i)
		}
		ns[i] = n
	}
	return AttributeValue{NS: ns}, nil
}

// EncodeItem converts an Item into its wire form. Nil and empty-string
// values are silently omitted. An empty sequence value is an error.
func EncodeItem(item Item) (map[string]AttributeValue, error) {
	out := make(map[string]AttributeValue, len(item))
	for name, v := range item {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		av, err := encodeAttribute(v)
		if err != nil {
			return nil, argErrorf("attribute %q: %s", name, err)
		}
		out[name] = av
	}
	if len(out) == 0 {
		return nil, NewArgError("item encodes to zero attributes")
	}
	return out, nil
}

// EncodeKey is EncodeItem for key contexts, where undefined values are
// rejected instead of dropped.
func EncodeKey(key Item) (map[string]AttributeValue, error) {
	if len(key) == 0 {
		return nil, NewArgError("missing key")
	}
	out := make(map[string]AttributeValue, len(key))
	for name, v := range key {
		if v == nil {
			return nil, argErrorf("key attribute %q is nil", name)
		}
		if s, ok := v.(string); ok && s == "" {
			return nil, argErrorf("key attribute %q is empty", name)
		}
		av, err := encodeAttribute(v)
		if err != nil {
			return nil, argErrorf("key attribute %q: %s", name, err)
		}
		out[name] = av
	}
	return out, nil
}

// ─── decoding ─────────────────────────────────────────────────────────────────

// decodeAttribute inverts encodeAttribute. Numbers decode as float64.
// An unrecognized type tag indicates a protocol mismatch.
func decodeAttribute(tag string, raw json.RawMessage) (any, error) {
	switch tag {
	case "S":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, decodeError(tag, err)
		}
		return s, nil
	case "N":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, decodeError(tag, err)
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, decodeError(tag, err)
		}
		return n, nil
	case "B":
		var b []byte
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, decodeError(tag, err)
		}
		return b, nil
	case "SS":
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil {
			return nil, decodeError(tag, err)
		}
		return ss, nil
	case "NS":
		var ns []string
		if err := json.Unmarshal(raw, &ns); err != nil {
			return nil, decodeError(tag, err)
		}
		out := make([]float64, len(ns))
		for i, s := range ns {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, decodeError(tag, err)
			}
			out[i] = n
		}
		return out, nil
	case "BS":
		var bs [][]byte
		if err := json.Unmarshal(raw, &bs); err != nil {
			return nil, decodeError(tag, err)
		}
		return bs, nil
	}
	return nil, NewServiceError(ErrDecode, fmt.Sprintf("unrecognized attribute type tag %q", tag))
}

func decodeError(tag string, cause error) error {
	return NewServiceError(ErrDecode, fmt.Sprintf("malformed %s attribute", tag), WithCause(cause))
}

// DecodeItem converts a wire item back to a plain Item. Each attribute
// object is expected to carry exactly one type key; the first key found is
// taken as the tag.
func DecodeItem(raw wireItem) (Item, error) {
	item := make(Item, len(raw))
	for name, tagged := range raw {
		for tag, val := range tagged {
			v, err := decodeAttribute(tag, val)
			if err != nil {
				return nil, err
			}
			item[name] = v
			break
		}
	}
	return item, nil
}

// ─── numeric helpers ──────────────────────────────────────────────────────────

// numberString stringifies a value whose runtime representation is numeric.
// The format guarantees round-trip decimal fidelity, nothing more.
func numberString(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	}
	return "", false
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
