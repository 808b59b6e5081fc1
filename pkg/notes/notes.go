package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/innervoice/pkg/analysis"
)

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrDuplicateNote = errors.New("note already exists")
)

const (
	// DefaultListLimit applies when a caller passes no limit.
	DefaultListLimit = 50
	// MaxListLimit caps any single page.
	MaxListLimit = 100
)

const (
	noteColumns = `n.id, n.content, n.mood, n.emotional_tone, n.ai_analysis, n.ai_expansion, n.created_at, n.updated_at`

	createNoteStatement = `
	INSERT INTO notes (id, content, mood, emotional_tone, ai_analysis, ai_expansion, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	getNoteStatement = `
	SELECT ` + noteColumns + `
	FROM notes n
	WHERE n.id = ?
	`

	listNotesStatement = `
	SELECT ` + noteColumns + `
	FROM notes n
	ORDER BY n.created_at DESC, n.rowid DESC
	LIMIT ? OFFSET ?
	`

	deleteNoteStatement = `
	DELETE FROM notes
	WHERE id = ?
	`
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateNote inserts n and its tags in one transaction. A nil ID is
// replaced by a fresh one and zero timestamps are set to now.
func CreateNote(ctx context.Context, db *sql.DB, n Note, now time.Time) (Note, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}

	blob, err := encodeAnalysis(n.AIAnalysis)
	if err != nil {
		return Note{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Note{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		createNoteStatement,
		n.ID,
		n.Content,
		nullString(n.Mood),
		nullString(n.EmotionalTone),
		blob,
		nullString(n.AIExpansion),
		n.CreatedAt.UnixMilli(),
		n.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Note{}, ErrDuplicateNote
		}
		return Note{}, err
	}

	if err := insertTags(ctx, tx, n.ID, n.Tags); err != nil {
		return Note{}, err
	}

	if err := tx.Commit(); err != nil {
		return Note{}, err
	}

	return GetNote(ctx, db, n.ID)
}

// GetNote retrieves a note with its tags.
func GetNote(ctx context.Context, db *sql.DB, id uuid.UUID) (Note, error) {
	return getNote(ctx, db, id)
}

func getNote(ctx context.Context, q dbtx, id uuid.UUID) (Note, error) {
	n, err := scanNote(q.QueryRowContext(ctx, getNoteStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNoteNotFound
		}
		return Note{}, err
	}

	list := []Note{n}
	if err := attachTags(ctx, q, list); err != nil {
		return Note{}, err
	}
	return list[0], nil
}

// ListNotes returns notes newest first. Non-positive limits use
// DefaultListLimit and larger ones are capped at MaxListLimit.
func ListNotes(ctx context.Context, db *sql.DB, limit, offset int) ([]Note, error) {
	limit, offset = clampPage(limit, offset)
	return queryNotes(ctx, db, listNotesStatement, limit, offset)
}

// UpdateNote applies u to the note in one transaction and bumps updated_at.
func UpdateNote(ctx context.Context, db *sql.DB, id uuid.UUID, u Update, now time.Time) (Note, error) {
	var (
		sets []string
		args []any
	)
	if u.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *u.Content)
	}
	if u.Mood != nil {
		sets = append(sets, "mood = ?")
		args = append(args, nullString(*u.Mood))
	}
	if u.EmotionalTone != nil {
		sets = append(sets, "emotional_tone = ?")
		args = append(args, nullString(*u.EmotionalTone))
	}
	if u.AIExpansion != nil {
		sets = append(sets, "ai_expansion = ?")
		args = append(args, nullString(*u.AIExpansion))
	}
	if u.AIAnalysis != nil {
		blob, err := encodeAnalysis(u.AIAnalysis)
		if err != nil {
			return Note{}, err
		}
		sets = append(sets, "ai_analysis = ?")
		args = append(args, blob)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now.UnixMilli(), id)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Note{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return Note{}, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return Note{}, err
	}

	if rowsAffected == 0 {
		return Note{}, ErrNoteNotFound
	}

	if u.Tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, id); err != nil {
			return Note{}, err
		}
		if err := insertTags(ctx, tx, id, *u.Tags); err != nil {
			return Note{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Note{}, err
	}

	return GetNote(ctx, db, id)
}

// DeleteNote removes a note. Its tags go with it through the foreign key.
func DeleteNote(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, deleteNoteStatement, id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (Note, error) {
	var (
		n                                Note
		mood, tone, blob, expansion      sql.NullString
		createdAtMillis, updatedAtMillis int64
	)
	err := row.Scan(
		&n.ID,
		&n.Content,
		&mood,
		&tone,
		&blob,
		&expansion,
		&createdAtMillis,
		&updatedAtMillis,
	)
	if err != nil {
		return Note{}, err
	}

	n.Mood = mood.String
	n.EmotionalTone = tone.String
	n.AIExpansion = expansion.String
	n.CreatedAt = time.UnixMilli(createdAtMillis)
	n.UpdatedAt = time.UnixMilli(updatedAtMillis)
	n.Tags = []string{}
	if blob.Valid && blob.String != "" {
		// A blob we cannot read leaves the note without an analysis
		// rather than hiding the note.
		if a, err := analysis.Decode(blob.String); err == nil {
			n.AIAnalysis = &a
		}
	}
	return n, nil
}

// queryNotes runs a SELECT over noteColumns and attaches tags once the
// rows are closed, so it also works on a single-connection pool.
func queryNotes(ctx context.Context, q dbtx, query string, args ...any) ([]Note, error) {
	list, err := scanNotes(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, q, list); err != nil {
		return nil, err
	}
	return list, nil
}

// scanNotes runs query and returns its rows without tags.
func scanNotes(ctx context.Context, q dbtx, query string, args ...any) ([]Note, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	list := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	rows.Close()
	return list, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func encodeAnalysis(a *analysis.AIAnalysis) (sql.NullString, error) {
	if a == nil {
		return sql.NullString{}, nil
	}
	blob, err := analysis.Encode(*a)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: blob, Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
