package notes

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Store exposes the package functions as methods over one database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps db. The clock stamps created and updated times.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock returns a copy of s that reads time from now.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{db: s.db, now: now}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Create(ctx context.Context, n Note) (Note, error) {
	return CreateNote(ctx, s.db, n, s.now())
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (Note, error) {
	return GetNote(ctx, s.db, id)
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Note, error) {
	return ListNotes(ctx, s.db, limit, offset)
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, u Update) (Note, error) {
	return UpdateNote(ctx, s.db, id, u, s.now())
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return DeleteNote(ctx, s.db, id)
}

func (s *Store) FindRelated(ctx context.Context, tag string, exclude uuid.UUID, limit int) ([]Note, error) {
	return FindRelated(ctx, s.db, tag, exclude, limit)
}

func (s *Store) Search(ctx context.Context, f Filter) ([]Note, error) {
	return SearchNotes(ctx, s.db, f)
}

func (s *Store) TagCounts(ctx context.Context) ([]TagCount, error) {
	return ListTagCounts(ctx, s.db)
}

func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	return Summarize(ctx, s.db, s.now())
}
