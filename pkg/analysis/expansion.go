package analysis

import (
	"fmt"
	"strings"
)

// MoodEmoji maps a mood score to a face.
func MoodEmoji(score int) string {
	switch {
	case score >= 3:
		return "😄"
	case score >= 1:
		return "😊"
	case score == 0:
		return "😐"
	case score >= -2:
		return "😔"
	default:
		return "😢"
	}
}

// RenderExpansion lays out a note and its analysis as a markdown journal
// entry. Optional sections are omitted when empty. It is used directly
// when the model cannot produce an expansion, and as the skeleton the
// model is asked to enrich.
func RenderExpansion(content string, a AIAnalysis) string {
	motivation := a.Motivation
	if motivation == "" {
		motivation = DefaultMotivation
	}
	emotions := a.MainEmotions
	if len(emotions) == 0 {
		emotions = []string{NeutralEmotion}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 📝 Today's Note\n%s\n\n", content)
	b.WriteString("## 🧠 Emotional Analysis\n")
	fmt.Fprintf(&b, "**Emotional Tone:** %s\n", a.EmotionalTone)
	fmt.Fprintf(&b, "**Main Emotions:** %s\n", strings.Join(emotions, ", "))
	fmt.Fprintf(&b, "**Mood:** %s (%d/5)\n\n", MoodEmoji(a.MoodScore), a.MoodScore)
	fmt.Fprintf(&b, "## 💭 Inner Dialogue\n%s\n\n", a.Response)
	fmt.Fprintf(&b, "## 🔍 Reflection\n%s\n\n", a.Reflection)
	if a.Question != "" {
		fmt.Fprintf(&b, "## ❓ Worth Considering\n%s\n\n", a.Question)
	}
	if a.CounterNote != "" {
		fmt.Fprintf(&b, "## 💡 Alternative View\n%s\n\n", a.CounterNote)
	}
	if a.Suggestion != "" {
		fmt.Fprintf(&b, "## 💎 Suggestion\n%s\n\n", a.Suggestion)
	}
	fmt.Fprintf(&b, "## ✨ Motivation of the Day\n\"%s\"\n\n", motivation)
	b.WriteString("---\n*This analysis was generated by InnerVoice AI.*")
	return b.String()
}

// BuildExpansionPrompt asks the model to turn the note and its analysis
// into a longer journal entry following the RenderExpansion layout.
func BuildExpansionPrompt(content string, a AIAnalysis) string {
	var b strings.Builder
	b.WriteString("You are the InnerVoice journaling assistant. Expand the user's short note into a full journal entry that includes the emotional analysis.\n\n")
	fmt.Fprintf(&b, "ORIGINAL NOTE: %q\n\n", content)
	b.WriteString("EMOTIONAL ANALYSIS:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", a.EmotionalTone)
	fmt.Fprintf(&b, "- Emotions: %s\n", strings.Join(a.MainEmotions, ", "))
	fmt.Fprintf(&b, "- Mood score: %d/5\n\n", a.MoodScore)
	b.WriteString("Produce a detailed journal entry in the following format:\n\n")
	b.WriteString(RenderExpansion(content, a))
	b.WriteString("\n\nKeep this format and enrich the content. Use a warm, supportive tone and write in the same language as the original note.\n")
	return b.String()
}
