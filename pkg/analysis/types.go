// Package analysis turns journal note text into a structured emotional
// analysis: it builds model prompts, parses the model's line-based reply,
// and provides a deterministic keyword analyzer used when the model is
// unavailable.
package analysis

import (
	"strings"
	"time"
)

const (
	// MinMoodScore and MaxMoodScore bound AIAnalysis.MoodScore.
	MinMoodScore = -5
	MaxMoodScore = 5

	// NeutralEmotion is the emotion label used when none was identified.
	NeutralEmotion = "neutral"
)

// AIAnalysis is the structured result of one analysis pass over a note.
type AIAnalysis struct {
	EmotionalTone string   `json:"emotionalTone"`
	MainEmotions  []string `json:"mainEmotions"`
	MoodScore     int      `json:"moodScore"`
	Reflection    string   `json:"reflection"`
	Response      string   `json:"response"`
	Question      string   `json:"question,omitempty"`
	CounterNote   string   `json:"counterNote,omitempty"`
	Suggestion    string   `json:"suggestion,omitempty"`
	Motivation    string   `json:"motivation,omitempty"`
}

// Normalize clamps the mood score and guarantees at least one emotion.
func (a AIAnalysis) Normalize() AIAnalysis {
	a.MoodScore = ClampMoodScore(a.MoodScore)
	if len(a.MainEmotions) == 0 {
		a.MainEmotions = []string{NeutralEmotion}
	}
	return a
}

// ClampMoodScore bounds score to [MinMoodScore, MaxMoodScore].
func ClampMoodScore(score int) int {
	return max(MinMoodScore, min(MaxMoodScore, score))
}

// Mode selects the persona the assistant speaks with.
type Mode string

const (
	ModeTherapy  Mode = "therapy"
	ModeMentor   Mode = "mentor"
	ModeFriend   Mode = "friend"
	ModeHumorous Mode = "humorous"
)

// ParseMode maps s to a known Mode. Unknown or empty values become ModeFriend.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTherapy, ModeMentor, ModeFriend, ModeHumorous:
		return m
	default:
		return ModeFriend
	}
}

// UserProfile steers the tone of prompts and fallback replies.
// It is supplied by the caller on every request and never stored.
type UserProfile struct {
	Name              string   `json:"name,omitempty"`
	Age               int      `json:"age,omitempty"`
	Mode              Mode     `json:"mode,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	PersonalityTraits []string `json:"personalityTraits,omitempty"`
}

// modeOf returns the profile's mode, defaulting to ModeFriend for a nil profile.
func modeOf(p *UserProfile) Mode {
	if p == nil {
		return ModeFriend
	}
	return ParseMode(string(p.Mode))
}

// ContextNote is a previous note used as prompt context.
type ContextNote struct {
	Content   string
	Tags      []string
	CreatedAt time.Time
}
