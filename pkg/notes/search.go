package notes

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultRelatedLimit is how many related notes FindRelated returns by default.
const DefaultRelatedLimit = 5

const findRelatedStatement = `
	SELECT ` + noteColumns + `
	FROM notes n
	WHERE EXISTS (
		SELECT 1 FROM note_tags t WHERE t.note_id = n.id AND t.tag = ?
	)
	AND n.id != ?
	ORDER BY n.created_at DESC, n.rowid DESC
	LIMIT ?
	`

// FindRelated returns the newest notes tagged with tag, skipping exclude.
// Pass uuid.Nil to exclude nothing.
func FindRelated(ctx context.Context, db *sql.DB, tag string, exclude uuid.UUID, limit int) ([]Note, error) {
	tag = normalizeTag(tag)
	if tag == "" {
		return []Note{}, nil
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return queryNotes(ctx, db, findRelatedStatement, tag, exclude, limit)
}

// SearchNotes returns notes matching every non-zero field of f, newest first.
// Query is a substring of the content or emotional tone, compared after
// Unicode lower-casing both sides. Emotions match any tag in the list.
// From is inclusive and To exclusive.
func SearchNotes(ctx context.Context, db *sql.DB, f Filter) ([]Note, error) {
	var (
		where []string
		args  []any
	)

	var emotions []string
	for _, e := range f.Emotions {
		if e = normalizeTag(e); e != "" {
			emotions = append(emotions, e)
		}
	}
	if len(emotions) > 0 {
		placeholders := strings.Repeat("?,", len(emotions)-1) + "?"
		where = append(where, `EXISTS (SELECT 1 FROM note_tags t WHERE t.note_id = n.id AND t.tag IN (`+placeholders+`))`)
		for _, e := range emotions {
			args = append(args, e)
		}
	}

	if !f.From.IsZero() {
		where = append(where, "n.created_at >= ?")
		args = append(args, f.From.UnixMilli())
	}
	if !f.To.IsZero() {
		where = append(where, "n.created_at < ?")
		args = append(args, f.To.UnixMilli())
	}

	query := "SELECT " + noteColumns + " FROM notes n"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY n.created_at DESC, n.rowid DESC"

	limit, offset := clampPage(f.Limit, f.Offset)
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return queryNotes(ctx, db, query+" LIMIT ? OFFSET ?", append(args, limit, offset)...)
	}

	// SQLite LIKE only folds ASCII, so text matching happens here.
	candidates, err := scanNotes(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}
	// A Caser is stateful, so each search gets its own.
	fold := cases.Lower(language.Und)
	needle := fold.String(q)
	list := []Note{}
	for _, n := range candidates {
		if !strings.Contains(fold.String(n.Content), needle) && !strings.Contains(fold.String(n.EmotionalTone), needle) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		list = append(list, n)
		if len(list) == limit {
			break
		}
	}
	if err := attachTags(ctx, db, list); err != nil {
		return nil, err
	}
	return list, nil
}


func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
