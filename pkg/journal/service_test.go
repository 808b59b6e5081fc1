package journal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/innervoice/pkg/analysis"
	"github.com/unowned-ai/innervoice/pkg/db"
	"github.com/unowned-ai/innervoice/pkg/llm"
	"github.com/unowned-ai/innervoice/pkg/notes"
)

var baseTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

const modelReply = `EMOTIONAL_TONE: Calm and hopeful
EMOTIONS: hopeful, calm
MOOD_SCORE: 97
REFLECTION: You are looking ahead.
RESPONSE: That is a good place to be.
QUESTION: -
COUNTER_NOTE: -
SUGGESTION: Write down one goal.
MOTIVATION: Keep going.`

// flakyStore wraps a real store and fails selected operations.
type flakyStore struct {
	NoteStore
	failCreate  bool
	failList    bool
	failUpdates bool
	failGet     bool
	mutations   atomic.Int32
}

var errDisk = errors.New("disk I/O error")

func (f *flakyStore) Create(ctx context.Context, n notes.Note) (notes.Note, error) {
	if f.failCreate {
		return notes.Note{}, errDisk
	}
	f.mutations.Add(1)
	return f.NoteStore.Create(ctx, n)
}

func (f *flakyStore) List(ctx context.Context, limit, offset int) ([]notes.Note, error) {
	if f.failList {
		return nil, errDisk
	}
	return f.NoteStore.List(ctx, limit, offset)
}

func (f *flakyStore) Get(ctx context.Context, id uuid.UUID) (notes.Note, error) {
	if f.failGet {
		return notes.Note{}, errDisk
	}
	return f.NoteStore.Get(ctx, id)
}

func (f *flakyStore) Update(ctx context.Context, id uuid.UUID, u notes.Update) (notes.Note, error) {
	if f.failUpdates {
		return notes.Note{}, errDisk
	}
	n, err := f.NoteStore.Update(ctx, id, u)
	if err == nil {
		f.mutations.Add(1)
	}
	return n, err
}

func newTestStore(t *testing.T) *flakyStore {
	t.Helper()
	conn, err := db.OpenDBConnection(":memory:", false, "")
	require.NoError(t, err)
	require.NoError(t, db.InitializeSchema(conn, db.TargetSchemaVersion))
	t.Cleanup(func() { conn.Close() })

	now := baseTime
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	return &flakyStore{NoteStore: notes.NewStore(conn).WithClock(clock)}
}

func failingModel() llm.Completer {
	return llm.CompleterFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
}

func replyModel(reply string) llm.Completer {
	return llm.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "ORIGINAL NOTE:") {
			return "## expanded by model", nil
		}
		return reply, nil
	})
}

func newTestService(store NoteStore, model llm.Completer, opts ...Option) *Service {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithClock(func() time.Time { return baseTime }),
		WithFallback(analysis.NewFallbackAnalyzer(rand.New(rand.NewPCG(1, 2)))),
	}
	return NewService(store, model, append(base, opts...)...)
}

func TestCreateNote_ModelSuccess(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, replyModel(modelReply))

	note, err := svc.CreateNote(context.Background(), "  I hope tomorrow is better  ", nil)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.Equal(t, "I hope tomorrow is better", note.Content)
	assert.False(t, note.CreatedAt.IsZero())
	require.NotNil(t, note.AIAnalysis)
	assert.Equal(t, "Calm and hopeful", note.AIAnalysis.EmotionalTone)
	assert.Equal(t, analysis.MaxMoodScore, note.AIAnalysis.MoodScore)
	assert.Empty(t, note.AIAnalysis.Question)
	assert.Equal(t, "Calm and hopeful", note.EmotionalTone)
	assert.Equal(t, []string{"hopeful", "calm"}, note.Tags)
	assert.Equal(t, "## expanded by model", note.AIExpansion)

	stored, err := svc.GetNote(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, note, stored)
}

func TestCreateNote_ModelAlwaysFails(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, failingModel())

	note, err := svc.CreateNote(context.Background(), "çok üzgünüm ve yalnızım", nil)
	require.NoError(t, err)

	require.NotNil(t, note.AIAnalysis)
	assert.Subset(t, []string{analysis.EmotionSad, analysis.EmotionLonely}, note.AIAnalysis.MainEmotions)
	assert.NotEmpty(t, note.AIAnalysis.MainEmotions)
	assert.LessOrEqual(t, note.AIAnalysis.MoodScore, -2)
	assert.Equal(t, note.AIAnalysis.MainEmotions, note.Tags)
	assert.Equal(t, analysis.RenderExpansion(note.Content, *note.AIAnalysis), note.AIExpansion)
}

func TestCreateNote_UnusableReplyFallsBack(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, replyModel("I'd rather not answer in that format."))

	note, err := svc.CreateNote(context.Background(), "I feel so lonely", nil)
	require.NoError(t, err)

	require.NotNil(t, note.AIAnalysis)
	assert.Equal(t, []string{analysis.EmotionLonely}, note.AIAnalysis.MainEmotions)
	assert.Equal(t, "## expanded by model", note.AIExpansion)
}

func TestCreateNote_ModelPanicsAndTimesOut(t *testing.T) {
	panicky := llm.CompleterFunc(func(context.Context, string) (string, error) {
		panic("boom")
	})
	slow := llm.CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	for name, model := range map[string]llm.Completer{"panic": panicky, "timeout": slow} {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(newTestStore(t), model, WithModelTimeout(10*time.Millisecond))

			note, err := svc.CreateNote(context.Background(), "I am so worried about work", nil)
			require.NoError(t, err)
			require.NotNil(t, note.AIAnalysis)
			assert.Equal(t, []string{analysis.EmotionAnxious}, note.AIAnalysis.MainEmotions)
			assert.NotEmpty(t, note.AIExpansion)
		})
	}
}

func TestCreateNote_NilModelUsesFallback(t *testing.T) {
	svc := newTestService(newTestStore(t), nil)

	note, err := svc.CreateNote(context.Background(), "Today was wonderful", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{analysis.EmotionHappy}, note.Tags)
	assert.Contains(t, note.AIExpansion, "## 📝 Today's Note")
}

func TestCreateNote_Validation(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, failingModel(), WithMaxContentLength(10))

	_, err := svc.CreateNote(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateNote(context.Background(), strings.Repeat("ğ", 11), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateNote(context.Background(), strings.Repeat("ğ", 10), nil)
	assert.NoError(t, err)

	assert.Equal(t, int32(2), store.mutations.Load())
}

func TestCreateNote_PersistenceFailure(t *testing.T) {
	store := newTestStore(t)
	store.failCreate = true
	var calls atomic.Int32
	model := llm.CompleterFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		return modelReply, nil
	})
	svc := newTestService(store, model)

	_, err := svc.CreateNote(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errDisk)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)
	assert.Zero(t, calls.Load(), "analysis must not run when the note could not be stored")
}

func TestCreateNote_ContextUnavailable(t *testing.T) {
	store := newTestStore(t)
	store.failList = true
	svc := newTestService(store, replyModel(modelReply))

	note, err := svc.CreateNote(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hopeful", "calm"}, note.Tags)
}

func TestCreateNote_PromptUsesRecentNotes(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil)
	_, err := svc.CreateNote(context.Background(), "first entry about the sea", nil)
	require.NoError(t, err)

	var prompts []string
	var mu sync.Mutex
	model := llm.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		mu.Lock()
		prompts = append(prompts, prompt)
		mu.Unlock()
		return modelReply, nil
	})
	svc = newTestService(store, model)

	_, err = svc.CreateNote(context.Background(), "second entry", &analysis.UserProfile{Name: "Deniz", Mode: analysis.ModeMentor})
	require.NoError(t, err)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "first entry about the sea")
	assert.Contains(t, prompts[0], "Deniz")
	assert.Contains(t, prompts[0], "mentor mode")
	assert.NotContains(t, prompts[0], `today: "second entry"`)
}

func TestUpdateNote(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "Today was wonderful", nil)
	require.NoError(t, err)

	updated, err := svc.UpdateNote(ctx, created.ID, "Actually I feel so lonely", nil)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Actually I feel so lonely", updated.Content)
	assert.Equal(t, []string{analysis.EmotionLonely}, updated.Tags)
	require.NotNil(t, updated.AIAnalysis)
	assert.Equal(t, -2, updated.AIAnalysis.MoodScore)
	assert.Equal(t, created.AIExpansion, updated.AIExpansion, "expansion is only written on create")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := svc.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateNote_NotFound(t *testing.T) {
	store := newTestStore(t)
	var calls atomic.Int32
	model := llm.CompleterFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		return modelReply, nil
	})
	svc := newTestService(store, model)

	_, err := svc.UpdateNote(context.Background(), uuid.New(), "content", nil)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.Zero(t, store.mutations.Load())
	assert.Zero(t, calls.Load())

	_, err = svc.UpdateNote(context.Background(), uuid.New(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestUpdateNote_PersistenceFailureKeepsPreviousAnalysis(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "Today was wonderful", nil)
	require.NoError(t, err)

	store.failUpdates = true
	_, err = svc.UpdateNote(ctx, created.ID, "I feel so lonely", nil)
	assert.ErrorIs(t, err, ErrPersistence)

	store.failUpdates = false
	got, err := svc.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestDeleteNote(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil, WithCache(10))
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "to be removed", nil)
	require.NoError(t, err)
	_, err = svc.GetNote(ctx, note.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(ctx, note.ID))

	_, err = svc.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.ErrorIs(t, svc.DeleteNote(ctx, note.ID), ErrNoteNotFound)
}

func TestGetNote_Idempotent(t *testing.T) {
	svc := newTestService(newTestStore(t), nil)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "stable", nil)
	require.NoError(t, err)

	first, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	second, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetNote_CacheServesReads(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil, WithCache(10))
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "cached", nil)
	require.NoError(t, err)

	store.failGet = true
	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note, got)

	_, err = svc.GetNote(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPersistence)
}

// gatedStore holds the next Get after it has read the row, until release
// is closed.
type gatedStore struct {
	NoteStore
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func newGatedStore(inner NoteStore) *gatedStore {
	return &gatedStore{NoteStore: inner, read: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) Get(ctx context.Context, id uuid.UUID) (notes.Note, error) {
	n, err := g.NoteStore.Get(ctx, id)
	if g.armed.CompareAndSwap(true, false) {
		close(g.read)
		<-g.release
	}
	return n, err
}

func TestGetNote_CacheMissRacingDelete(t *testing.T) {
	store := newGatedStore(newTestStore(t))
	svc := newTestService(store, nil, WithCache(10))
	ctx := context.Background()

	created, err := store.Create(ctx, notes.Note{ID: uuid.New(), Content: "read while deleted"})
	require.NoError(t, err)

	store.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := svc.GetNote(ctx, created.ID)
		done <- err
	}()

	<-store.read
	require.NoError(t, svc.DeleteNote(ctx, created.ID))
	close(store.release)
	require.NoError(t, <-done)

	_, err = svc.GetNote(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestGetNote_CacheMissRacingUpdate(t *testing.T) {
	store := newGatedStore(newTestStore(t))
	svc := newTestService(store, nil, WithCache(10))
	ctx := context.Background()

	created, err := store.Create(ctx, notes.Note{ID: uuid.New(), Content: "Today was wonderful"})
	require.NoError(t, err)

	store.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := svc.GetNote(ctx, created.ID)
		done <- err
	}()

	<-store.read
	updated, err := svc.UpdateNote(ctx, created.ID, "I feel so lonely", nil)
	require.NoError(t, err)
	close(store.release)
	require.NoError(t, <-done)

	got, err := svc.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestFindRelated(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil)
	ctx := context.Background()

	var ids []uuid.UUID
	for range 7 {
		n, err := svc.CreateNote(ctx, "bugün çok mutlu hissediyorum", nil)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	_, err := svc.CreateNote(ctx, "I am so worried about work", nil)
	require.NoError(t, err)

	exclude := ids[3]
	related, err := svc.FindRelated(ctx, analysis.EmotionHappy, exclude)
	require.NoError(t, err)

	assert.Len(t, related, notes.DefaultRelatedLimit)
	for _, n := range related {
		assert.NotEqual(t, exclude, n.ID)
		assert.Contains(t, n.Tags, analysis.EmotionHappy)
	}

	_, err = svc.FindRelated(ctx, "  ", uuid.Nil)
	assert.ErrorIs(t, err, ErrEmptyEmotion)
}

func TestSearchNotesAndStats(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil)
	ctx := context.Background()

	for _, c := range []string{"Today was wonderful", "I feel so lonely", "Walked alone by the sea"} {
		_, err := svc.CreateNote(ctx, c, nil)
		require.NoError(t, err)
	}

	found, err := svc.SearchNotes(ctx, notes.Filter{Emotions: []string{analysis.EmotionLonely}})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.SearchNotes(ctx, notes.Filter{From: baseTime, To: baseTime})
	assert.ErrorIs(t, err, ErrValidation)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalNotes)
	assert.Equal(t, analysis.EmotionLonely, stats.MostCommonEmotion)
	require.NotEmpty(t, stats.Tags)
	assert.Equal(t, notes.TagCount{Tag: analysis.EmotionLonely, Notes: 2}, stats.Tags[0])
}

func TestConcurrentUpdatesOfOneNote(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(store, nil)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "start", nil)
	require.NoError(t, err)

	contents := []string{"Today was wonderful", "I feel so lonely", "I am so worried about work", "Walking home"}
	var wg sync.WaitGroup
	for _, c := range contents {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateNote(ctx, note.ID, c, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AIAnalysis)

	// The analysis always belongs to the content that was stored with it.
	emotions, _ := analysis.DetectEmotions(got.Content)
	assert.Equal(t, emotions, got.AIAnalysis.MainEmotions)
	assert.Equal(t, emotions, got.Tags)
	assert.Zero(t, svc.locks.size())
}
