package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// MaxContextNotes is how many previous notes are summarized in a prompt.
	MaxContextNotes = 5
	// PreviewLength is the rune length each context note is cut to.
	PreviewLength = 100
	// TopPatternEmotions is how many recurring emotions are surfaced as a pattern hint.
	TopPatternEmotions = 3

	defaultUserName = "friend"
)

// Labels of the line-based reply contract, in the order the model is asked to emit them.
const (
	LabelEmotionalTone = "EMOTIONAL_TONE:"
	LabelEmotions      = "EMOTIONS:"
	LabelMoodScore     = "MOOD_SCORE:"
	LabelReflection    = "REFLECTION:"
	LabelResponse      = "RESPONSE:"
	LabelQuestion      = "QUESTION:"
	LabelCounterNote   = "COUNTER_NOTE:"
	LabelSuggestion    = "SUGGESTION:"
	LabelMotivation    = "MOTIVATION:"
)

var personaInstructions = map[Mode]string{
	ModeTherapy: `Act in therapy mode: be understanding, supportive and professional. Give a sense of emotional safety.
Gently point out patterns you notice in the previous notes.`,
	ModeMentor: `Act in mentor mode: be guiding, wise and experienced. Take a teaching stance.
Help them learn from their past experiences.`,
	ModeHumorous: `Act in humorous mode: be playful, cheerful and relaxing. Joke where it fits.
Highlight the positive sides of their previous notes.`,
	ModeFriend: `Act in friend mode: be warm, relaxed and supportive. Be kind and understanding.
Connect to what they shared before.`,
}

// PromptInput is everything BuildPrompt needs. Now anchors the relative
// time labels of the context notes.
type PromptInput struct {
	Content string
	Profile *UserProfile
	Recent  []ContextNote
	Now     time.Time
}

// BuildPrompt assembles the analysis instruction for the language model.
// The result depends only on its input.
func BuildPrompt(in PromptInput) string {
	mode := modeOf(in.Profile)
	name := defaultUserName
	if in.Profile != nil && strings.TrimSpace(in.Profile.Name) != "" {
		name = strings.TrimSpace(in.Profile.Name)
	}

	var b strings.Builder
	b.WriteString("You are InnerVoice, a personal journaling assistant. Behave like an inner voice talking with the user.\n")
	b.WriteString("Be empathetic, try to understand, and avoid judging or lecturing.\n")
	b.WriteString("Take the user's previous notes and emotional history into account and answer in context.\n\n")

	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", name)
	if in.Profile != nil {
		if in.Profile.Age > 0 {
			fmt.Fprintf(&b, "- Age: %d\n", in.Profile.Age)
		}
		if len(in.Profile.Interests) > 0 {
			fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(in.Profile.Interests, ", "))
		}
		if len(in.Profile.PersonalityTraits) > 0 {
			fmt.Fprintf(&b, "- Personality traits: %s\n", strings.Join(in.Profile.PersonalityTraits, ", "))
		}
	}
	fmt.Fprintf(&b, "- Inner dialogue mode: %s (therapy, mentor, friend, humorous)\n", mode)

	if recent := limitContext(in.Recent); len(recent) > 0 {
		b.WriteString("\nRECENT NOTES AND EMOTIONAL HISTORY:\n")
		for _, n := range recent {
			fmt.Fprintf(&b, "- %s: %q\n", relativeDay(n.CreatedAt, in.Now), Preview(n.Content))
		}
		if top := TopEmotions(recent, TopPatternEmotions); len(top) > 0 {
			fmt.Fprintf(&b, "- Recent emotional pattern: %s\n", strings.Join(top, ", "))
		}
	}

	fmt.Fprintf(&b, "\nTODAY'S JOURNAL ENTRY:\n%q\n\n", in.Content)
	b.WriteString(personaInstructions[mode])
	b.WriteString("\n\nSPECIAL INSTRUCTIONS:\n")
	b.WriteString("- If today's note carries emotions similar to previous notes, gently mention the connection\n")
	b.WriteString("- Welcome emotional growth or change with praise\n")
	b.WriteString("- Point out recurring patterns constructively\n")
	fmt.Fprintf(&b, "- Address the user personally as %s\n", name)
	b.WriteString("- Use the past context to offer deeper insight\n\n")

	b.WriteString("Reply in exactly this format, one field per line:\n\n")
	fmt.Fprintf(&b, "%s [short description of the emotional tone, e.g. \"Positive and hopeful\"]\n", LabelEmotionalTone)
	fmt.Fprintf(&b, "%s [main emotions separated by commas, e.g. \"happy,hopeful\"]\n", LabelEmotions)
	fmt.Fprintf(&b, "%s [an integer mood score between %d and %d]\n", LabelMoodScore, MinMoodScore, MaxMoodScore)
	fmt.Fprintf(&b, "%s [a one or two sentence reflection that considers the past context]\n", LabelReflection)
	fmt.Fprintf(&b, "%s [a reply in %s mode addressed to %s]\n", LabelResponse, mode, name)
	fmt.Fprintf(&b, "%s [optional: a question that helps them go deeper, or -]\n", LabelQuestion)
	fmt.Fprintf(&b, "%s [optional: an alternative point of view, or -]\n", LabelCounterNote)
	fmt.Fprintf(&b, "%s [optional: a constructive suggestion, or -]\n", LabelSuggestion)
	fmt.Fprintf(&b, "%s [a short motivational sentence]\n\n", LabelMotivation)
	b.WriteString("Keep the labels in English exactly as written, but write every value in the same language the user wrote the entry in.\n")

	return b.String()
}

// TopEmotions returns up to n of the most frequent tags across notes.
// Ties keep the order in which the tags were first seen.
func TopEmotions(notes []ContextNote, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, note := range notes {
		for _, tag := range note.Tags {
			if tag == "" {
				continue
			}
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func limitContext(notes []ContextNote) []ContextNote {
	if len(notes) > MaxContextNotes {
		return notes[:MaxContextNotes]
	}
	return notes
}

func relativeDay(createdAt, now time.Time) string {
	days := int(now.Sub(createdAt) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

// Preview shortens content to PreviewLength runes.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength]) + "..."
}
