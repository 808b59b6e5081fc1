package notes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	insertTagStatement = `
	INSERT INTO note_tags (note_id, position, tag)
	VALUES (?, ?, ?)
	`

	listTagCountsStatement = `
	SELECT tag, COUNT(DISTINCT note_id) AS notes
	FROM note_tags
	GROUP BY tag
	ORDER BY notes DESC, tag ASC
	`
)

// insertTags stores lowercased tags in order. Blank tags are skipped and
// duplicates are kept.
func insertTags(ctx context.Context, tx *sql.Tx, noteID uuid.UUID, tags []string) error {
	position := 0
	for _, tag := range tags {
		tag = normalizeTag(tag)
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertTagStatement, noteID, position, tag); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", tag, err)
		}
		position++
	}
	return nil
}

// attachTags loads the tags of every note in list with a single query.
func attachTags(ctx context.Context, q dbtx, list []Note) error {
	if len(list) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(list))
	args := make([]any, 0, len(list))
	for i, n := range list {
		index[n.ID] = i
		args = append(args, n.ID)
	}
	placeholders := strings.Repeat("?,", len(list)-1) + "?"

	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT note_id, tag
		FROM note_tags
		WHERE note_id IN (%s)
		ORDER BY note_id, position
	`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to query note tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			noteID uuid.UUID
			tag    string
		)
		if err := rows.Scan(&noteID, &tag); err != nil {
			return fmt.Errorf("failed to scan tag row: %w", err)
		}
		if i, ok := index[noteID]; ok {
			list[i].Tags = append(list[i].Tags, tag)
		}
	}
	return rows.Err()
}

// ListTagCounts returns every tag with the number of notes carrying it,
// most used first.
func ListTagCounts(ctx context.Context, db *sql.DB) ([]TagCount, error) {
	rows, err := db.QueryContext(ctx, listTagCountsStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag counts: %w", err)
	}
	defer rows.Close()

	counts := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan tag count row: %w", err)
		}
		counts = append(counts, tc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag count rows: %w", err)
	}

	return counts, nil
}
