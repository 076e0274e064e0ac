package dynwire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAttribute_Scalars(t *testing.T) {
	av, err := encodeAttribute("hello")
	require.NoError(t, err)
	require.NotNil(t, av.S)
	assert.Equal(t, "hello", *av.S)

	av, err = encodeAttribute(42)
	require.NoError(t, err)
	require.NotNil(t, av.N)
	assert.Equal(t, "42", *av.N)

	av, err = encodeAttribute(1.5)
	require.NoError(t, err)
	require.NotNil(t, av.N)
	assert.Equal(t, "1.5", *av.N)

	av, err = encodeAttribute([]byte("blob"))
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), av.B)
}

func TestEncodeAttribute_SetInference(t *testing.T) {
	// any blob element makes the whole sequence a binary set
	av, err := encodeAttribute([]any{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	assert.Len(t, av.BS, 2)

	// all numeric elements make a number set
	av, err = encodeAttribute([]any{1, 2.5, int64(3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2.5", "3"}, av.NS)

	// anything else is a string set, numbers stringified
	av, err = encodeAttribute([]any{"a", 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "7"}, av.SS)

	// typed slices
	av, err = encodeAttribute([]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, av.SS)

	av, err = encodeAttribute([]int{4, 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5"}, av.NS)
}

func TestEncodeAttribute_Rejects(t *testing.T) {
	_, err := encodeAttribute(nil)
	assert.Error(t, err)

	_, err = encodeAttribute([]any{})
	assert.Error(t, err)

	_, err = encodeAttribute([]string{})
	assert.Error(t, err)

	// mixed binary set with a non-blob element
	_, err = encodeAttribute([]any{[]byte("a"), "s"})
	assert.Error(t, err)
}

func TestEncodeItem_DropsEmptyValues(t *testing.T) {
	enc, err := EncodeItem(Item{"name": "x", "tag": nil, "note": ""})
	require.NoError(t, err)
	require.Len(t, enc, 1)
	_, ok := enc["name"]
	assert.True(t, ok)

	_, err = EncodeItem(Item{"tag": nil})
	assert.Error(t, err, "item with zero transmitted attributes")
}

func TestEncodeKey_RejectsUndefined(t *testing.T) {
	_, err := EncodeKey(Item{"id": nil})
	assert.Error(t, err)
	_, err = EncodeKey(Item{"id": ""})
	assert.Error(t, err)
	_, err = EncodeKey(Item{})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	in := Item{
		"text":  "some text",
		"num":   float64(42),
		"frac":  1.25,
		"blob":  []byte{0x01, 0x02, 0xff},
		"ss":    []string{"a", "b"},
		"ns":    []float64{1, 2.5},
		"bs":    [][]byte{{0x00}, {0x01}},
		"empty": "", // vanishes
		"nilly": nil,
	}
	enc, err := EncodeItem(in)
	require.NoError(t, err)

	// through the wire and back
	b, err := json.Marshal(enc)
	require.NoError(t, err)
	var w wireItem
	require.NoError(t, json.Unmarshal(b, &w))

	out, err := DecodeItem(w)
	require.NoError(t, err)

	assert.Equal(t, "some text", out["text"])
	assert.Equal(t, float64(42), out["num"])
	assert.Equal(t, 1.25, out["frac"])
	assert.Equal(t, []byte{0x01, 0x02, 0xff}, out["blob"])
	assert.Equal(t, []string{"a", "b"}, out["ss"])
	assert.Equal(t, []float64{1, 2.5}, out["ns"])
	assert.Equal(t, [][]byte{{0x00}, {0x01}}, out["bs"])
	assert.NotContains(t, out, "empty")
	assert.NotContains(t, out, "nilly")
}

func TestDecode_UnknownTag(t *testing.T) {
	w := wireItem{"field": {"X": json.RawMessage(`"boom"`)}}
	_, err := DecodeItem(w)
	require.Error(t, err)
	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrDecode, serr.Code)
}

func TestDecode_Number(t *testing.T) {
	v, err := decodeAttribute("N", json.RawMessage(`"12.5"`))
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	_, err = decodeAttribute("N", json.RawMessage(`"not a number"`))
	assert.Error(t, err)
}
