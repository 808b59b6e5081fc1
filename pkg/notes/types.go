// Package notes persists journal notes and their analyses in SQLite.
package notes

import (
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/innervoice/pkg/analysis"
)

// Note is a journal entry together with its derived analysis.
type Note struct {
	ID            uuid.UUID            `json:"id"`
	Content       string               `json:"content"`
	Mood          string               `json:"mood,omitempty"`
	EmotionalTone string               `json:"emotionalTone,omitempty"`
	AIAnalysis    *analysis.AIAnalysis `json:"aiAnalysis,omitempty"`
	AIExpansion   string               `json:"aiExpansion,omitempty"`
	Tags          []string             `json:"tags"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// Update lists the fields to change on a note. Nil fields are left alone.
// A non-nil Tags replaces the whole tag list.
type Update struct {
	Content       *string
	Mood          *string
	EmotionalTone *string
	AIExpansion   *string
	AIAnalysis    *analysis.AIAnalysis
	Tags          *[]string
}

// Filter narrows SearchNotes. Zero fields do not filter.
type Filter struct {
	Query    string    `json:"query,omitempty"`
	Emotions []string  `json:"emotions,omitempty"`
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Limit    int       `json:"limit,omitempty"`
	Offset   int       `json:"offset,omitempty"`
}

// TagCount is how many notes carry a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Notes int    `json:"notes"`
}

// Summary aggregates the emotional history of all notes.
type Summary struct {
	TotalNotes          int            `json:"totalNotes"`
	NotesLast7Days      int            `json:"notesLast7Days"`
	WeeklyAverage       float64        `json:"weeklyAverage"`
	AverageMoodScore    float64        `json:"averageMoodScore"`
	MostCommonEmotion   string         `json:"mostCommonEmotion,omitempty"`
	EmotionDistribution map[string]int `json:"emotionDistribution"`
	// WeeklyActivity counts the last 7 days' notes per weekday, Sunday first.
	WeeklyActivity [7]int `json:"weeklyActivity"`
	StreakDays     int    `json:"streakDays"`
}
