package analysis

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_ContainsOutputContract(t *testing.T) {
	p := BuildPrompt(PromptInput{Content: "bugün güzel bir gündü", Now: time.Now()})

	for _, l := range labels {
		assert.Contains(t, p, l)
	}
	assert.Contains(t, p, "bugün güzel bir gündü")
	assert.Contains(t, p, "same language the user wrote")
	assert.NotContains(t, p, "RECENT NOTES")
}

func TestBuildPrompt_PersonaSelection(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{ModeTherapy, ModeTherapy},
		{ModeMentor, ModeMentor},
		{ModeHumorous, ModeHumorous},
		{ModeFriend, ModeFriend},
		{"pirate", ModeFriend},
		{"", ModeFriend},
	}
	for _, tt := range tests {
		p := BuildPrompt(PromptInput{Content: "x", Profile: &UserProfile{Mode: tt.mode}})
		assert.Contains(t, p, personaInstructions[tt.want], tt.mode)
	}

	p := BuildPrompt(PromptInput{Content: "x"})
	assert.Contains(t, p, personaInstructions[ModeFriend])
}

func TestBuildPrompt_Profile(t *testing.T) {
	p := BuildPrompt(PromptInput{
		Content: "x",
		Profile: &UserProfile{
			Name:              "Deniz",
			Age:               29,
			Interests:         []string{"climbing", "jazz"},
			PersonalityTraits: []string{"curious"},
		},
	})

	assert.Contains(t, p, "- Name: Deniz")
	assert.Contains(t, p, "- Age: 29")
	assert.Contains(t, p, "climbing, jazz")
	assert.Contains(t, p, "curious")

	anon := BuildPrompt(PromptInput{Content: "x"})
	assert.Contains(t, anon, "- Name: "+defaultUserName)
	assert.NotContains(t, anon, "- Age:")
}

func TestBuildPrompt_RecentContext(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	var recent []ContextNote
	for i := range 6 {
		recent = append(recent, ContextNote{
			Content:   fmt.Sprintf("entry-%d", i),
			Tags:      []string{EmotionSad},
			CreatedAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}

	p := BuildPrompt(PromptInput{Content: "x", Recent: recent, Now: now})

	assert.Contains(t, p, `today: "entry-0"`)
	assert.Contains(t, p, `yesterday: "entry-1"`)
	assert.Contains(t, p, `3 days ago: "entry-3"`)
	assert.Contains(t, p, "entry-4")
	assert.NotContains(t, p, "entry-5")
	assert.Contains(t, p, "Recent emotional pattern: sad")
}

func TestBuildPrompt_TruncatesPreview(t *testing.T) {
	long := strings.Repeat("ş", 150)
	p := BuildPrompt(PromptInput{
		Content: "x",
		Recent:  []ContextNote{{Content: long, CreatedAt: time.Now()}},
		Now:     time.Now(),
	})

	assert.Contains(t, p, strings.Repeat("ş", PreviewLength)+"...")
	assert.NotContains(t, p, strings.Repeat("ş", PreviewLength+1))
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	in := PromptInput{
		Content: "note",
		Profile: &UserProfile{Name: "A", Mode: ModeMentor},
		Recent:  []ContextNote{{Content: "old", Tags: []string{"happy"}, CreatedAt: now.Add(-48 * time.Hour)}},
		Now:     now,
	}
	assert.Equal(t, BuildPrompt(in), BuildPrompt(in))
}

func TestTopEmotions(t *testing.T) {
	notes := []ContextNote{
		{Tags: []string{"sad", "lonely"}},
		{Tags: []string{"lonely"}},
		{Tags: []string{"happy", "sad"}},
		{Tags: []string{"calm", ""}},
	}

	assert.Equal(t, []string{"sad", "lonely", "happy"}, TopEmotions(notes, 3))
	assert.Equal(t, []string{"sad"}, TopEmotions(notes, 1))
	assert.Empty(t, TopEmotions(nil, 3))
}
