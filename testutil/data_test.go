package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkItemsAreUnique(t *testing.T) {
	items := WorkItems(100)
	require.Len(t, items, 100)

	ids := make(map[string]bool, len(items))
	for i, item := range items {
		assert.Equal(t, i, item.Seq)
		assert.NotEmpty(t, item.ID)
		assert.False(t, ids[item.ID], "duplicate id %s", item.ID)
		ids[item.ID] = true
	}
}

func TestUniqueKeys(t *testing.T) {
	keys := UniqueKeys(50)
	require.Len(t, keys, 50)

	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		assert.False(t, seen[k])
		seen[k] = true
	}
}

func TestSequentialKeys(t *testing.T) {
	keys := SequentialKeys("job", 3)
	assert.Equal(t, []string{"job-0", "job-1", "job-2"}, keys)
}
