package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Values filled in for required fields the model reply did not provide.
const (
	DefaultEmotionalTone = "Neutral"
	DefaultReflection    = "Thank you for sharing your thoughts."
	DefaultResponse      = "I hear you. Every feeling matters and is worth noticing."
	DefaultMotivation    = "Every note is a step, and every step is growth."
)

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// ParseResponse extracts an AIAnalysis from a line-based model reply.
//
// Parsing never fails. Unknown lines are ignored, missing required fields
// receive defaults and the mood score is clamped. The boolean reports
// whether at least one known label was found; a false value means the
// reply was unusable and the result is all defaults.
func ParseResponse(raw string) (AIAnalysis, bool) {
	var (
		a          AIAnalysis
		recognized bool
	)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "*-• \t")
		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}
		recognized = true
		switch label {
		case LabelEmotionalTone:
			a.EmotionalTone = value
		case LabelEmotions:
			a.MainEmotions = splitEmotions(value)
		case LabelMoodScore:
			a.MoodScore = parseScore(value)
		case LabelReflection:
			a.Reflection = value
		case LabelResponse:
			a.Response = value
		case LabelQuestion:
			a.Question = optional(value)
		case LabelCounterNote:
			a.CounterNote = optional(value)
		case LabelSuggestion:
			a.Suggestion = optional(value)
		case LabelMotivation:
			a.Motivation = value
		}
	}

	if a.EmotionalTone == "" {
		a.EmotionalTone = DefaultEmotionalTone
	}
	if a.Reflection == "" {
		a.Reflection = DefaultReflection
	}
	if a.Response == "" {
		a.Response = DefaultResponse
	}
	if a.Motivation == "" {
		a.Motivation = DefaultMotivation
	}
	return a.Normalize(), recognized
}

var labels = []string{
	LabelEmotionalTone,
	LabelEmotions,
	LabelMoodScore,
	LabelReflection,
	LabelResponse,
	LabelQuestion,
	LabelCounterNote,
	LabelSuggestion,
	LabelMotivation,
}

func splitLabel(line string) (label, value string, ok bool) {
	for _, l := range labels {
		if len(line) >= len(l) && strings.EqualFold(line[:len(l)], l) {
			return l, strings.Trim(line[len(l):], "* \t\""), true
		}
	}
	return "", "", false
}

func splitEmotions(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if e := strings.ToLower(strings.TrimSpace(part)); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func parseScore(value string) int {
	m := leadingInt.FindString(value)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// Out of int range; keep the sign.
		if strings.HasPrefix(m, "-") {
			return MinMoodScore
		}
		return MaxMoodScore
	}
	return n
}

// optional treats placeholder answers as absent.
func optional(value string) string {
	switch strings.ToLower(value) {
	case "", "-", "none", "n/a", "yok":
		return ""
	}
	return value
}
