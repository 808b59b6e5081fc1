package notes

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/unowned-ai/innervoice/pkg/analysis"
)

const summaryStatement = `
	SELECT n.ai_analysis, n.created_at
	FROM notes n
	ORDER BY n.created_at DESC
	`

// Summarize computes Summary relative to now. Days are calendar days in
// now's location.
func Summarize(ctx context.Context, db *sql.DB, now time.Time) (Summary, error) {
	s := Summary{EmotionDistribution: map[string]int{}}

	rows, err := db.QueryContext(ctx, summaryStatement)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query notes for summary: %w", err)
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	days := map[string]bool{}
	var moodTotal, moodCount int
	for rows.Next() {
		var (
			blob      sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&blob, &createdAt); err != nil {
			rows.Close()
			return Summary{}, fmt.Errorf("failed to scan summary row: %w", err)
		}
		s.TotalNotes++

		created := time.UnixMilli(createdAt).In(now.Location())
		days[created.Format(time.DateOnly)] = true
		if !created.Before(weekAgo) {
			s.NotesLast7Days++
			s.WeeklyActivity[created.Weekday()]++
		}

		if blob.Valid && blob.String != "" {
			if a, err := analysis.Decode(blob.String); err == nil {
				moodTotal += a.MoodScore
				moodCount++
			}
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Summary{}, fmt.Errorf("error iterating summary rows: %w", err)
	}
	rows.Close()

	counts, err := ListTagCounts(ctx, db)
	if err != nil {
		return Summary{}, err
	}
	for i, tc := range counts {
		s.EmotionDistribution[tc.Tag] = tc.Notes
		if i == 0 {
			s.MostCommonEmotion = tc.Tag
		}
	}

	s.WeeklyAverage = roundTenth(float64(s.NotesLast7Days) / 7)
	if moodCount > 0 {
		s.AverageMoodScore = roundTenth(float64(moodTotal) / float64(moodCount))
	}
	s.StreakDays = streak(days, now)
	return s, nil
}

// streak counts consecutive days with at least one note, ending today.
func streak(days map[string]bool, now time.Time) int {
	n := 0
	for day := now; days[day.Format(time.DateOnly)]; day = day.AddDate(0, 0, -1) {
		n++
	}
	return n
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
