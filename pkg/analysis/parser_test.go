package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_NoLabels(t *testing.T) {
	a, ok := ParseResponse("Sorry, I cannot help with that right now.")

	assert.False(t, ok)
	assert.Equal(t, DefaultEmotionalTone, a.EmotionalTone)
	assert.Equal(t, []string{NeutralEmotion}, a.MainEmotions)
	assert.Equal(t, 0, a.MoodScore)
	assert.Equal(t, DefaultReflection, a.Reflection)
	assert.Equal(t, DefaultResponse, a.Response)
	assert.Equal(t, DefaultMotivation, a.Motivation)
	assert.Empty(t, a.Question)
	assert.Empty(t, a.CounterNote)
	assert.Empty(t, a.Suggestion)
}

func TestParseResponse_EmptyInput(t *testing.T) {
	a, ok := ParseResponse("")
	assert.False(t, ok)
	assert.Equal(t, []string{NeutralEmotion}, a.MainEmotions)
}

func TestParseResponse_FullReply(t *testing.T) {
	raw := "Here is my analysis:\r\n" +
		"**EMOTIONAL_TONE:** Calm and reflective\r\n" +
		"- EMOTIONS: Happy, , hopeful\n" +
		"MOOD_SCORE: +3/5\n" +
		"REFLECTION: You found peace today.\n" +
		"RESPONSE: That sounds lovely.\n" +
		"QUESTION: What brought you this calm?\n" +
		"COUNTER_NOTE: -\n" +
		"SUGGESTION: Yok\n" +
		"MOTIVATION: Keep going.\n" +
		"Hope this helps!"

	a, ok := ParseResponse(raw)
	require.True(t, ok)

	assert.Equal(t, "Calm and reflective", a.EmotionalTone)
	assert.Equal(t, []string{"happy", "hopeful"}, a.MainEmotions)
	assert.Equal(t, 3, a.MoodScore)
	assert.Equal(t, "You found peace today.", a.Reflection)
	assert.Equal(t, "That sounds lovely.", a.Response)
	assert.Equal(t, "What brought you this calm?", a.Question)
	assert.Empty(t, a.CounterNote)
	assert.Empty(t, a.Suggestion)
	assert.Equal(t, "Keep going.", a.Motivation)
}

func TestParseResponse_MoodScore(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"MOOD_SCORE: 97", 5},
		{"MOOD_SCORE: -8", -5},
		{"MOOD_SCORE: -2", -2},
		{"MOOD_SCORE: abc", 0},
		{"MOOD_SCORE:", 0},
		{"MOOD_SCORE: 99999999999999999999999", 5},
	}
	for _, tt := range tests {
		a, ok := ParseResponse(tt.in)
		assert.True(t, ok, tt.in)
		assert.Equal(t, tt.want, a.MoodScore, tt.in)
	}
}

func TestParseResponse_PartialFillsDefaults(t *testing.T) {
	a, ok := ParseResponse("emotions: sad\nnot a label: whatever")
	require.True(t, ok)

	assert.Equal(t, []string{"sad"}, a.MainEmotions)
	assert.Equal(t, DefaultEmotionalTone, a.EmotionalTone)
	assert.Equal(t, DefaultReflection, a.Reflection)
	assert.Equal(t, DefaultResponse, a.Response)
}

func TestParseResponse_LastLabelWins(t *testing.T) {
	a, _ := ParseResponse("EMOTIONAL_TONE: first\nEMOTIONAL_TONE: second")
	assert.Equal(t, "second", a.EmotionalTone)
}

func TestParseResponse_EmptyEmotionsFallBackToNeutral(t *testing.T) {
	a, ok := ParseResponse("EMOTIONS: , ,")
	require.True(t, ok)
	assert.Equal(t, []string{NeutralEmotion}, a.MainEmotions)
}
