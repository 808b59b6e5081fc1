package analysis

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Emotion labels produced by the fallback analyzer.
const (
	EmotionHappy   = "happy"
	EmotionSad     = "sad"
	EmotionAngry   = "angry"
	EmotionAnxious = "anxious"
	EmotionLonely  = "lonely"
	EmotionHopeful = "hopeful"
)

// Turkish stems are matched as substrings so that suffixed forms
// ("üzgünüm", "yalnızım") count. English words must stand alone, otherwise
// "unhappy" would read as happy and "hopeless" as hopeful.
type emotionCategory struct {
	label string
	delta int
	stems []string
	words []string
}

// Categories are evaluated in this order, which is also the order of the
// resulting emotion list.
var emotionCategories = []emotionCategory{
	{EmotionHappy, +2,
		[]string{"mutlu", "sevinç", "güzel", "harika", "mükemmel", "keyif", "eğlence"},
		[]string{"happy", "joy", "joyful", "wonderful", "delighted", "glad"}},
	{EmotionSad, -2,
		[]string{"üzgün", "kötü", "ağlamak", "hüzün", "üzüntü", "melankolik"},
		[]string{"sad", "sadness", "crying", "cried", "miserable", "heartbroken", "depressed", "unhappy", "hopeless"}},
	{EmotionAngry, -1,
		[]string{"sinir", "kızgın", "öfke", "bıkkın", "rahatsız"},
		[]string{"angry", "furious", "annoyed", "irritated"}},
	{EmotionAnxious, -1,
		[]string{"endişe", "kaygı", "stres", "gergin", "tedirgin"},
		[]string{"anxious", "worried", "nervous", "panic", "panicking"}},
	{EmotionLonely, -2,
		[]string{"yalnız", "tek", "kimse", "boş"},
		[]string{"lonely", "alone", "isolated"}},
	{EmotionHopeful, +2,
		[]string{"umut", "gelecek", "başarı", "hedef", "hayal"},
		[]string{"hopeful", "hope", "hopes", "hoping", "goal", "goals", "dream", "dreams", "looking forward"}},
}

const (
	tonePositive = "Positive and hopeful"
	toneNegative = "Negative and melancholic"
	toneAnxious  = "Anxious and tense"
	toneLonely   = "Lonely and introspective"
	toneNeutral  = "Neutral and balanced"
)

var lonelyResponses = map[Mode]string{
	ModeTherapy:  "Feeling lonely is part of being human. Staying with that feeling for a while can sometimes deepen self-awareness.",
	ModeMentor:   "Moments alone are often when we have the deepest conversation with ourselves. You could make use of this one.",
	ModeHumorous: "Loneliness can be a decent friend sometimes. At least it never interrupts you! 😄",
	ModeFriend:   "I get you. Turning inward can feel good, but staying there too long can start to weigh on you.",
}

var motivations = []string{
	"If your inner world is quiet, that is sometimes where the clearest voice is.",
	"Every note is a seed, and every seed is a new beginning.",
	"Understanding your feelings is the first step to understanding yourself.",
	"Today was hard, but tomorrow is a new page.",
	"You are writing your own story, and every word counts.",
	"The voice inside you is your most important advisor.",
	"Your feelings describe you, but they do not limit you.",
}

// FallbackAnalyzer derives an AIAnalysis from keyword matches when no
// language model is available. Only the motivation line is randomized;
// everything else is a pure function of the content and profile.
type FallbackAnalyzer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallbackAnalyzer returns an analyzer drawing motivations from r.
// A nil r is seeded from the clock.
func NewFallbackAnalyzer(r *rand.Rand) *FallbackAnalyzer {
	if r == nil {
		now := uint64(time.Now().UnixNano())
		r = rand.New(rand.NewPCG(now, now>>32|1))
	}
	return &FallbackAnalyzer{rng: r}
}

// Analyze never fails.
func (f *FallbackAnalyzer) Analyze(content string, profile *UserProfile) AIAnalysis {
	emotions, score := DetectEmotions(content)
	has := func(label string) bool { return slices.Contains(emotions, label) }

	a := AIAnalysis{
		EmotionalTone: fallbackTone(has, score),
		MainEmotions:  emotions,
		MoodScore:     score,
		Reflection:    fallbackReflection(has),
		Response:      fallbackResponse(has, modeOf(profile)),
		Question:      fallbackQuestion(has),
		CounterNote:   fallbackCounterNote(has),
		Suggestion:    fallbackSuggestion(has),
		Motivation:    f.motivation(),
	}
	return a.Normalize()
}

func (f *FallbackAnalyzer) motivation() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return motivations[f.rng.IntN(len(motivations))]
}

// DetectEmotions returns the matched emotion labels in category order and
// the clamped sum of their mood deltas. With no match it returns the
// neutral label and a zero score.
func DetectEmotions(content string) ([]string, int) {
	// Turkish casing maps I to ı, so match against both foldings.
	turkish := cases.Lower(language.Turkish).String(content)
	generic := cases.Lower(language.Und).String(content)

	var (
		emotions []string
		score    int
	)
	for _, c := range emotionCategories {
		if c.matches(turkish, generic) {
			emotions = append(emotions, c.label)
			score += c.delta
		}
	}
	if len(emotions) == 0 {
		return []string{NeutralEmotion}, 0
	}
	return emotions, ClampMoodScore(score)
}

func (c emotionCategory) matches(turkish, generic string) bool {
	for _, stem := range c.stems {
		if strings.Contains(turkish, stem) || strings.Contains(generic, stem) {
			return true
		}
	}
	for _, w := range c.words {
		if containsWord(generic, w) {
			return true
		}
	}
	return false
}

// containsWord reports whether w occurs in s with no letter on either side.
func containsWord(s, w string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], w)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(w)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsLetter(before) && !unicode.IsLetter(after) {
			return true
		}
		from = start + 1
	}
}

func fallbackTone(has func(string) bool, score int) string {
	switch {
	case score >= 2:
		return tonePositive
	case score <= -2:
		return toneNegative
	case has(EmotionAnxious):
		return toneAnxious
	case has(EmotionLonely):
		return toneLonely
	default:
		return toneNeutral
	}
}

func fallbackReflection(has func(string) bool) string {
	switch {
	case has(EmotionLonely):
		return "Spending today in silence may have both tired you out and given you a lot to think about."
	case has(EmotionHappy):
		return "The good moments you lived today seem to have left a positive mark on you."
	case has(EmotionAnxious):
		return "It sounds like worries are keeping your mind busy and you are feeling a bit on edge."
	default:
		return "What you wrote today gives some lovely hints about your inner world."
	}
}

func fallbackResponse(has func(string) bool, mode Mode) string {
	switch {
	case has(EmotionLonely):
		return lonelyResponses[mode]
	case has(EmotionHappy):
		return "To keep this positive energy going, it might be nice to write down what made you happy today."
	case has(EmotionAnxious):
		return "Your worries are normal, but it matters that you do not let them take control. Remember to breathe."
	default:
		return "Thank you for sharing your thoughts. Every note is a step, and every step is growth."
	}
}

func fallbackQuestion(has func(string) bool) string {
	switch {
	case has(EmotionLonely):
		return "What did this silence make you think about? Maybe it was not loneliness, maybe you just needed rest?"
	case has(EmotionHappy):
		return "What created this good feeling? What could you do to live it again?"
	case has(EmotionAnxious):
		return "Are these worries about things you can actually control? Which of them can you handle?"
	default:
		return "What might these feelings be trying to teach you?"
	}
}

func fallbackCounterNote(has func(string) bool) string {
	switch {
	case has(EmotionSad), has(EmotionLonely):
		return "Maybe this sadness is just a passing phase. Tomorrow you might feel completely different."
	case has(EmotionAnxious):
		return "Most of what we worry about never happens. How about focusing on the present moment?"
	default:
		return ""
	}
}

func fallbackSuggestion(has func(string) bool) string {
	switch {
	case has(EmotionLonely):
		return "Even a short walk could refresh your mind. Would you like to set a small goal out in the world for tomorrow?"
	case has(EmotionAnxious):
		return "Try the 5-4-3-2-1 technique: notice 5 things you see, 4 you hear, 3 you feel, 2 you smell and 1 you taste."
	case has(EmotionHappy):
		return "Writing this feeling down can give you strength on harder days later on."
	default:
		return "Be patient with yourself. Every feeling passes and has something to teach you."
	}
}
