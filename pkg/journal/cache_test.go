package journal

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/innervoice/pkg/analysis"
	"github.com/unowned-ai/innervoice/pkg/notes"
)

func TestNoteCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newNoteCache(2)
	a := notes.Note{ID: uuid.New(), Content: "a"}
	b := notes.Note{ID: uuid.New(), Content: "b"}
	d := notes.Note{ID: uuid.New(), Content: "d"}

	c.Set(a)
	c.Set(b)
	_, ok := c.Get(a.ID)
	require.True(t, ok)

	c.Set(d)

	_, ok = c.Get(b.ID)
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get(a.ID)
	assert.True(t, ok)
	_, ok = c.Get(d.ID)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestNoteCache_SetReplacesAndInvalidate(t *testing.T) {
	c := newNoteCache(0)
	id := uuid.New()

	c.Set(notes.Note{ID: id, Content: "old"})
	c.Set(notes.Note{ID: id, Content: "new"})
	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, "new", got.Content)
	assert.Equal(t, 1, c.Len())

	c.Invalidate(id)
	_, ok = c.Get(id)
	assert.False(t, ok)
	c.Invalidate(id)
}

func TestNoteCache_ReturnsCopies(t *testing.T) {
	c := newNoteCache(1)
	id := uuid.New()
	c.Set(notes.Note{
		ID:         id,
		Tags:       []string{"sad"},
		AIAnalysis: &analysis.AIAnalysis{MainEmotions: []string{"sad"}},
	})

	got, _ := c.Get(id)
	got.Tags[0] = "happy"
	got.AIAnalysis.MainEmotions[0] = "happy"

	again, _ := c.Get(id)
	assert.Equal(t, []string{"sad"}, again.Tags)
	assert.Equal(t, []string{"sad"}, again.AIAnalysis.MainEmotions)
}

func TestNoteCache_FillSkippedAfterWrite(t *testing.T) {
	c := newNoteCache(0)
	id := uuid.New()

	epoch := c.Epoch()
	c.Invalidate(id)
	assert.False(t, c.Fill(notes.Note{ID: id, Content: "stale"}, epoch))
	_, ok := c.Get(id)
	assert.False(t, ok)

	epoch = c.Epoch()
	c.Set(notes.Note{ID: id, Content: "fresh"})
	assert.False(t, c.Fill(notes.Note{ID: id, Content: "stale"}, epoch))
	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, "fresh", got.Content)

	assert.True(t, c.Fill(notes.Note{ID: id, Content: "reread"}, c.Epoch()))
	got, _ = c.Get(id)
	assert.Equal(t, "reread", got.Content)
}
