package types_test

import (
	"testing"

	"github.com/mna/toylang/lang/types"
	"github.com/stretchr/testify/assert"
)

func TestValueEqual(t *testing.T) {
	assert.True(t, types.MakeI32(3).Equal(types.MakeI32(3)))
	assert.False(t, types.MakeI32(3).Equal(types.MakeI32(4)))
	assert.False(t, types.MakeI32(3).Equal(types.MakeF32(3)), "different tags are never equal")
	assert.True(t, types.Nil.Equal(types.Nil))
}

func TestValueString(t *testing.T) {
	cases := []struct {
		name string
		v    types.Value
		want string
	}{
		{"nil", types.Nil, "nil"},
		{"i32", types.MakeI32(42), "42"},
		{"negative i32", types.MakeI32(-7), "-7"},
		{"f32", types.MakeF32(1.5), "1.5"},
		{"bool true", types.MakeBool(true), "true"},
		{"bool false", types.MakeBool(false), "false"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.String())
		})
	}
}
