package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, cfg DatasetConfig) *Dataset {
	t.Helper()
	ds, err := BuildDataset(cfg, nil)
	require.NoError(t, err)
	return ds
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	reg := NewRegistry(nil)
	ds := mustBuild(t, validConfig())

	require.NoError(t, reg.Create("alpha", ds))
	assert.Error(t, reg.Create("alpha", ds), "duplicate id must fail")

	got, ok := reg.Get("alpha")
	require.True(t, ok)
	assert.Same(t, ds, got)

	require.NoError(t, reg.Delete("alpha"))
	_, ok = reg.Get("alpha")
	assert.False(t, ok)
	assert.Error(t, reg.Delete("alpha"))
}

func TestRegistry_Put(t *testing.T) {
	logger := newRecordingLogger()
	reg := NewRegistry(logger)
	first := mustBuild(t, validConfig())
	second := mustBuild(t, validConfig())

	replaced, err := reg.Put("alpha", first)
	require.NoError(t, err)
	assert.False(t, replaced)

	replaced, err = reg.Put("alpha", second)
	require.NoError(t, err)
	assert.True(t, replaced)

	got, _ := reg.Get("alpha")
	assert.Same(t, second, got)
	assert.Len(t, logger.messages("info"), 2)
}

func TestRegistry_InvalidInput(t *testing.T) {
	reg := NewRegistry(nil)
	ds := mustBuild(t, validConfig())

	for _, id := range []DatasetID{"", "../etc", "has space", "-leading"} {
		assert.Error(t, reg.Create(id, ds), "id %q", id)
		_, err := reg.Put(id, ds)
		assert.Error(t, err, "id %q", id)
	}
	assert.Error(t, reg.Create("ok", nil))
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := NewRegistry(nil)
	ds := mustBuild(t, validConfig())
	for _, id := range []DatasetID{"charlie", "alpha", "bravo"} {
		require.NoError(t, reg.Create(id, ds))
	}
	assert.Equal(t, []DatasetID{"alpha", "bravo", "charlie"}, reg.List())
	assert.Equal(t, 3, reg.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry(nil)
	ds := mustBuild(t, validConfig())

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := DatasetID(fmt.Sprintf("ds-%d", i%5))
			_, _ = reg.Put(id, ds)
			_, _ = reg.Get(id)
			_ = reg.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, reg.Len())
}

func TestValidateDatasetID(t *testing.T) {
	assert.NoError(t, ValidateDatasetID("default"))
	assert.NoError(t, ValidateDatasetID("gen_4-sinnoh"))
	assert.Error(t, ValidateDatasetID("a/b"))
}
