package pathtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
		},
	}

	got, err := Get(root, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = Get(root, "a")
	require.NoError(t, err)
	assert.Equal(t, root["a"], got)
}

func TestGetMissingKey(t *testing.T) {
	root := map[string]any{"a": map[string]any{}}

	_, err := Get(root, "a", "b", "c")
	require.Error(t, err)
	var pe *PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "b", pe.Key)
}

func TestGetThroughNonMap(t *testing.T) {
	root := map[string]any{"a": 1}
	_, err := Get(root, "a", "b")
	var pe *PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "b", pe.Key)
}

func TestSetCreatesIntermediates(t *testing.T) {
	got := Set(nil, []string{"a", "b", "c"}, 7)
	v, err := Get(got, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSetDoesNotMutateInput(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"x": 1},
		"b": map[string]any{"y": 2},
	}

	next := Set(root, []string{"a", "x"}, 9)

	assert.Equal(t, 1, root["a"].(map[string]any)["x"], "input tree untouched")
	assert.Equal(t, 9, next["a"].(map[string]any)["x"])

	// The untouched sibling subtree is shared, not copied.
	assert.Equal(t, root["b"], next["b"])
	root["b"].(map[string]any)["y"] = 3
	assert.Equal(t, 3, next["b"].(map[string]any)["y"], "sibling shared by reference")
}

func TestSetOverwritesScalarIntermediate(t *testing.T) {
	root := map[string]any{"a": 1}
	next := Set(root, []string{"a", "b"}, 2)
	v, err := Get(next, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestMergeDeep(t *testing.T) {
	dst := map[string]any{
		"e1": map[string]any{
			"m.read": map[string]any{"alice": int64(1)},
		},
	}
	src := map[string]any{
		"e1": map[string]any{
			"m.read": map[string]any{"bob": int64(2)},
		},
		"e2": map[string]any{"m.read": map[string]any{"carol": int64(3)}},
	}

	got := Merge(dst, src)

	want := map[string]any{
		"e1": map[string]any{
			"m.read": map[string]any{"alice": int64(1), "bob": int64(2)},
		},
		"e2": map[string]any{"m.read": map[string]any{"carol": int64(3)}},
	}
	assert.Equal(t, want, got)

	// Inputs untouched.
	assert.Len(t, dst["e1"].(map[string]any)["m.read"], 1)
}

func TestMergeDoesNotAliasSource(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": 1}}
	got := Merge(nil, src)

	src["a"].(map[string]any)["b"] = 99
	assert.Equal(t, 1, got["a"].(map[string]any)["b"])
}

func TestMergeEmptySource(t *testing.T) {
	dst := map[string]any{"a": 1}
	assert.Equal(t, dst, Merge(dst, nil))
}
