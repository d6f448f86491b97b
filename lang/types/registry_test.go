package types_test

import (
	"testing"

	"github.com/mna/toylang/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryBaseTypes(t *testing.T) {
	r := types.NewRegistry()
	want := []struct {
		id   int
		tag  types.Tag
		name string
		size int
	}{
		{types.InvalidID, types.Invalid, "invalid", 0},
		{types.VoidID, types.Void, "void", 0},
		{types.I32ID, types.I32, "i32", 4},
		{types.F32ID, types.F32, "f32", 4},
		{types.BoolID, types.Bool, "bool", 1},
		{types.TypeID, types.TypeType, "type", 4},
	}
	for _, w := range want {
		info := r.Get(w.id)
		assert.Equal(t, w.tag, info.Tag)
		assert.Equal(t, w.name, info.Name)
		assert.Equal(t, w.size, info.Size)
	}
}

func TestInterningIsDeterministic(t *testing.T) {
	r := types.NewRegistry()
	p1 := r.PointerType(types.I32ID)
	p2 := r.PointerType(types.I32ID)
	assert.Equal(t, p1, p2, "interning the same pointee twice must return the same id")

	a1 := r.ArrayType(types.F32ID, 4)
	a2 := r.ArrayType(types.F32ID, 4)
	assert.Equal(t, a1, a2)

	f1 := r.FunctionType([]int{types.I32ID, types.F32ID}, types.BoolID)
	f2 := r.FunctionType([]int{types.I32ID, types.F32ID}, types.BoolID)
	assert.Equal(t, f1, f2)

	require.NotEqual(t, p1, a1)
	require.NotEqual(t, a1, f1)
}

func TestStructIdentityIsNominal(t *testing.T) {
	r := types.NewRegistry()
	members := []types.Member{
		{Name: "x", Type: types.I32ID, Offset: 0},
		{Name: "y", Type: types.I32ID, Offset: 4},
	}
	s1 := r.DeclareStruct("Point", members)
	s2 := r.DeclareStruct("Point", members)
	assert.Equal(t, s1, s2, "re-declaring the same struct name must intern to the same id")
	assert.True(t, r.Equal(s1, s2))

	id, ok := r.LookupStruct("Point")
	require.True(t, ok)
	assert.Equal(t, s1, id)

	info := r.Get(s1)
	assert.Equal(t, 8, info.Size)
	assert.Equal(t, 4, info.Members[1].Offset)
}

func TestEqualStructuralForBaseTypes(t *testing.T) {
	r := types.NewRegistry()
	assert.True(t, r.Equal(types.I32ID, types.I32ID))
	assert.False(t, r.Equal(types.I32ID, types.F32ID))

	p1 := r.PointerType(types.I32ID)
	p2 := r.PointerType(types.F32ID)
	assert.False(t, r.Equal(p1, p2))
}
