package lifecycle

import (
	"testing"

	"electron-shop/api/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendDoesNotAlias(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "a"
	out := Append(base, []string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, out)

	out[0] = "z"
	assert.Equal(t, "a", base[0])
}

func TestReplaceAt(t *testing.T) {
	images := []string{"a", "b", "c"}
	out, old, err := ReplaceAt(images, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x", "c"}, out)
	assert.Equal(t, "b", old)
	assert.Equal(t, []string{"a", "b", "c"}, images)
}

func TestRemoveAt(t *testing.T) {
	images := []string{"a", "b", "c"}
	out, removed, err := RemoveAt(images, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, out)
	assert.Equal(t, "a", removed)
	assert.Equal(t, []string{"a", "b", "c"}, images)
}

func TestIndexOutOfRangeLeavesListUntouched(t *testing.T) {
	images := []string{"a", "b"}

	out, _, err := RemoveAt(images, len(images))
	require.Error(t, err)
	assert.True(t, catalog.IsKind(err, catalog.KindIndexOutOfRange))
	assert.Equal(t, []string{"a", "b"}, out)

	out, _, err = ReplaceAt(images, -1, "x")
	assert.True(t, catalog.IsKind(err, catalog.KindIndexOutOfRange))
	assert.Equal(t, []string{"a", "b"}, out)

	_, _, err = RemoveAt(nil, 0)
	assert.True(t, catalog.IsKind(err, catalog.KindIndexOutOfRange))
}

func TestRemoveAll(t *testing.T) {
	out, removed := RemoveAll([]string{"a", "b"})
	assert.Empty(t, out)
	assert.NotNil(t, out)
	assert.Equal(t, []string{"a", "b"}, removed)
}

func TestOrphans(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, Orphans([]string{"a", "b", "c", "a"}, []string{"b", "d"}))
	assert.Empty(t, Orphans([]string{"a"}, []string{"a"}))
	assert.Empty(t, Orphans(nil, []string{"a"}))
}
