package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToNative(t *testing.T) {
	got, err := ToNative(cty.ObjectVal(map[string]cty.Value{
		"s": cty.StringVal("a"),
		"n": cty.NumberFloatVal(1.5),
		"b": cty.True,
		"l": cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.NullVal(cty.String)}),
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"s": "a", "n": 1.5, "b": true, "l": []any{"x", nil}}, got)

	got, err = ToNative(cty.NullVal(cty.String))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ToNative(cty.CapsuleVal(cty.Capsule("thing", reflect.TypeOf(0)), new(int)))
	assert.Error(t, err)
}
