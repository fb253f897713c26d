package inject

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notaspat/notaspat/pkg/core"
)

func TestLookupCache_NilMeansKnownAbsent(t *testing.T) {
	c := newLookupCache()

	_, ok := c.Get("12345")
	assert.False(t, ok, "uncached protocol")

	c.Put("12345", nil)
	note, ok := c.Get("12345")
	assert.True(t, ok, "absence is cached")
	assert.Nil(t, note)

	c.Put("12345", &core.Note{ID: "12345"})
	note, ok = c.Get("12345")
	assert.True(t, ok)
	assert.Equal(t, "12345", note.ID)
}

func TestLookupCache_InvalidateAndClear(t *testing.T) {
	c := newLookupCache()
	c.Put("11111", &core.Note{ID: "11111"})
	c.Put("22222", &core.Note{ID: "22222"})

	c.Invalidate("11111")
	_, ok := c.Get("11111")
	assert.False(t, ok)
	_, ok = c.Get("22222")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("22222")
	assert.False(t, ok)
}
