// Package journal orchestrates note persistence with emotional analysis.
//
// A create or update persists the raw content first, then analyzes it with
// the language model, falling back to the keyword analyzer when the model
// fails, and finally stores the whole analysis in a single write. Analysis
// problems never fail a request; store problems always do.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/unowned-ai/innervoice/pkg/analysis"
	"github.com/unowned-ai/innervoice/pkg/llm"
	"github.com/unowned-ai/innervoice/pkg/notes"
)

const (
	DefaultModelTimeout     = 20 * time.Second
	DefaultMaxContentLength = 500
	DefaultRecentContext    = 10
)

var errUnusableReply = errors.New("model reply has no recognizable fields")

// Where an analysis or expansion came from, as logged.
const (
	sourceModel    = "model"
	sourceFallback = "fallback"
)

// NoteStore is the persistence the service needs. *notes.Store implements it.
type NoteStore interface {
	Create(ctx context.Context, n notes.Note) (notes.Note, error)
	Get(ctx context.Context, id uuid.UUID) (notes.Note, error)
	List(ctx context.Context, limit, offset int) ([]notes.Note, error)
	Update(ctx context.Context, id uuid.UUID, u notes.Update) (notes.Note, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindRelated(ctx context.Context, tag string, exclude uuid.UUID, limit int) ([]notes.Note, error)
	Search(ctx context.Context, f notes.Filter) ([]notes.Note, error)
	TagCounts(ctx context.Context) ([]notes.TagCount, error)
	Summarize(ctx context.Context) (notes.Summary, error)
}

// Stats is the emotional overview of the journal.
type Stats struct {
	notes.Summary
	Tags []notes.TagCount `json:"tags"`
}

// Service is safe for concurrent use. Mutations of one note id are
// serialized; different notes proceed in parallel.
type Service struct {
	store    NoteStore
	model    llm.Completer
	fallback *analysis.FallbackAnalyzer
	logger   *slog.Logger
	now      func() time.Time
	locks    *keyedMutex
	cache    *noteCache

	modelTimeout     time.Duration
	maxContentLength int
	recentContext    int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for degraded paths. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for prompt context.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithModelTimeout bounds each model call. Zero disables the bound.
func WithModelTimeout(d time.Duration) Option {
	return func(s *Service) { s.modelTimeout = d }
}

// WithMaxContentLength sets the longest accepted note in runes. Zero disables the check.
func WithMaxContentLength(n int) Option {
	return func(s *Service) { s.maxContentLength = n }
}

// WithRecentContext sets how many recent notes are fetched as prompt context.
func WithRecentContext(n int) Option {
	return func(s *Service) { s.recentContext = n }
}

// WithFallback replaces the keyword analyzer, typically to pin its randomness.
func WithFallback(f *analysis.FallbackAnalyzer) Option {
	return func(s *Service) {
		if f != nil {
			s.fallback = f
		}
	}
}

// WithCache keeps up to size notes in memory for GetNote. Zero uses DefaultCacheSize.
func WithCache(size int) Option {
	return func(s *Service) { s.cache = newNoteCache(size) }
}

// NewService builds a Service. A nil model makes every analysis use the
// keyword fallback and every expansion use the local template.
func NewService(store NoteStore, model llm.Completer, opts ...Option) *Service {
	s := &Service{
		store:            store,
		model:            model,
		fallback:         analysis.NewFallbackAnalyzer(nil),
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:              time.Now,
		locks:            newKeyedMutex(),
		modelTimeout:     DefaultModelTimeout,
		maxContentLength: DefaultMaxContentLength,
		recentContext:    DefaultRecentContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNote stores content, analyzes it and attaches the analysis and a
// long-form expansion. Only validation and store failures are returned.
func (s *Service) CreateNote(ctx context.Context, content string, profile *analysis.UserProfile) (notes.Note, error) {
	content, err := s.validateContent(content)
	if err != nil {
		return notes.Note{}, err
	}
	// A request runs to completion once accepted.
	ctx = context.WithoutCancel(ctx)

	id := uuid.New()
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.store.Create(ctx, notes.Note{ID: id, Content: content}); err != nil {
		return notes.Note{}, storeErr("create", err)
	}

	recent := s.recentNotes(ctx, id)
	a := s.analyze(ctx, id, content, profile, recent)
	expansion := s.expand(ctx, id, content, a)

	tone := a.EmotionalTone
	tags := a.MainEmotions
	note, err := s.store.Update(ctx, id, notes.Update{
		EmotionalTone: &tone,
		AIAnalysis:    &a,
		AIExpansion:   &expansion,
		Tags:          &tags,
	})
	if err != nil {
		s.invalidate(id)
		return notes.Note{}, storeErr("enrich", err)
	}
	s.remember(note)
	return note, nil
}

// UpdateNote replaces the content of an existing note and re-analyzes it.
// The expansion written at creation is kept.
func (s *Service) UpdateNote(ctx context.Context, id uuid.UUID, content string, profile *analysis.UserProfile) (notes.Note, error) {
	content, err := s.validateContent(content)
	if err != nil {
		return notes.Note{}, err
	}
	ctx = context.WithoutCancel(ctx)

	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.store.Update(ctx, id, notes.Update{Content: &content}); err != nil {
		return notes.Note{}, storeErr("update", err)
	}
	s.invalidate(id)

	recent := s.recentNotes(ctx, id)
	a := s.analyze(ctx, id, content, profile, recent)

	tone := a.EmotionalTone
	tags := a.MainEmotions
	note, err := s.store.Update(ctx, id, notes.Update{
		EmotionalTone: &tone,
		AIAnalysis:    &a,
		Tags:          &tags,
	})
	if err != nil {
		return notes.Note{}, storeErr("enrich", err)
	}
	s.remember(note)
	return note, nil
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.store.Delete(ctx, id)
	s.invalidate(id)
	return storeErr("delete", err)
}

// GetNote returns one note.
func (s *Service) GetNote(ctx context.Context, id uuid.UUID) (notes.Note, error) {
	if s.cache == nil {
		n, err := s.store.Get(ctx, id)
		return n, storeErr("get", err)
	}
	if n, ok := s.cache.Get(id); ok {
		return n, nil
	}
	epoch := s.cache.Epoch()
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return notes.Note{}, storeErr("get", err)
	}
	s.cache.Fill(n, epoch)
	return n, nil
}

// ListNotes returns notes newest first.
func (s *Service) ListNotes(ctx context.Context, limit, offset int) ([]notes.Note, error) {
	list, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, storeErr("list", err)
	}
	return list, nil
}

// FindRelated returns up to five notes tagged with emotion, newest first,
// never including exclude.
func (s *Service) FindRelated(ctx context.Context, emotion string, exclude uuid.UUID) ([]notes.Note, error) {
	emotion = strings.TrimSpace(emotion)
	if emotion == "" {
		return nil, ErrEmptyEmotion
	}
	list, err := s.store.FindRelated(ctx, emotion, exclude, notes.DefaultRelatedLimit)
	if err != nil {
		return nil, storeErr("find related", err)
	}
	return list, nil
}

// SearchNotes filters notes by content, emotions and date.
func (s *Service) SearchNotes(ctx context.Context, f notes.Filter) ([]notes.Note, error) {
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return nil, fmt.Errorf("%w: search range start must be before its end", ErrValidation)
	}
	list, err := s.store.Search(ctx, f)
	if err != nil {
		return nil, storeErr("search", err)
	}
	return list, nil
}

// Stats summarizes moods and emotions across all notes.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	summary, err := s.store.Summarize(ctx)
	if err != nil {
		return Stats{}, storeErr("summarize", err)
	}
	tags, err := s.store.TagCounts(ctx)
	if err != nil {
		return Stats{}, storeErr("count tags", err)
	}
	return Stats{Summary: summary, Tags: tags}, nil
}

func (s *Service) validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if s.maxContentLength > 0 && utf8.RuneCountInString(content) > s.maxContentLength {
		return "", fmt.Errorf("%w (%d characters max)", ErrContentTooLong, s.maxContentLength)
	}
	return content, nil
}

// recentNotes loads prompt context. Failures only cost context.
func (s *Service) recentNotes(ctx context.Context, exclude uuid.UUID) []analysis.ContextNote {
	if s.recentContext <= 0 {
		return nil
	}
	list, err := s.store.List(ctx, s.recentContext+1, 0)
	if err != nil {
		s.logger.Warn("recent notes unavailable, analyzing without context",
			slog.String("note_id", exclude.String()), slog.String("op", "list"), slog.Any("err", err))
		return nil
	}

	recent := make([]analysis.ContextNote, 0, len(list))
	for _, n := range list {
		if n.ID == exclude {
			continue
		}
		recent = append(recent, analysis.ContextNote{Content: n.Content, Tags: n.Tags, CreatedAt: n.CreatedAt})
		if len(recent) == s.recentContext {
			break
		}
	}
	return recent
}

// analyze asks the model and falls back to keyword analysis on any error,
// panic, timeout or unreadable reply. It always returns a usable analysis.
func (s *Service) analyze(ctx context.Context, id uuid.UUID, content string, profile *analysis.UserProfile, recent []analysis.ContextNote) analysis.AIAnalysis {
	if s.model != nil {
		prompt := analysis.BuildPrompt(analysis.PromptInput{
			Content: content,
			Profile: profile,
			Recent:  recent,
			Now:     s.now(),
		})
		raw, err := s.complete(ctx, prompt)
		if err == nil {
			if a, ok := analysis.ParseResponse(raw); ok {
				s.logger.Debug("note analyzed", slog.String("note_id", id.String()), slog.String("source", sourceModel))
				return a
			}
			err = errUnusableReply
		}
		s.logger.Warn("model analysis failed, using keyword fallback",
			slog.String("note_id", id.String()), slog.String("op", "analyze"), slog.Any("err", err))
	}

	s.logger.Debug("note analyzed", slog.String("note_id", id.String()), slog.String("source", sourceFallback))
	return s.fallback.Analyze(content, profile)
}

// expand asks the model for a long-form entry and falls back to the local
// template when that fails.
func (s *Service) expand(ctx context.Context, id uuid.UUID, content string, a analysis.AIAnalysis) string {
	if s.model != nil {
		raw, err := s.complete(ctx, analysis.BuildExpansionPrompt(content, a))
		if err == nil {
			if text := strings.TrimSpace(raw); text != "" {
				return text
			}
			err = llm.ErrEmptyResponse
		}
		s.logger.Warn("model expansion failed, using template",
			slog.String("note_id", id.String()), slog.String("op", "expand"), slog.Any("err", err))
	}
	return analysis.RenderExpansion(content, a)
}

// complete calls the model under the configured timeout and turns a panic
// into an error.
func (s *Service) complete(ctx context.Context, prompt string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("model panicked: %v", r)
		}
	}()
	return llm.WithTimeout(s.model, s.modelTimeout).Complete(ctx, prompt)
}

func (s *Service) remember(n notes.Note) {
	if s.cache != nil {
		s.cache.Set(n)
	}
}

func (s *Service) invalidate(id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(id)
	}
}
