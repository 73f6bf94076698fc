package engine

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Turn is one exchange entry handed in by the orchestrator.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Fact is a candidate semantic triple extracted from a user turn.
type Fact struct {
	Entity   string
	Relation string
	Target   string
}

const (
	maxTargetChars   = 200
	turnTruncateAt   = 150
	summaryHeadTail  = 3
	summaryMaxLines  = 6
	emotionScale     = 0.3
	episodicMinBatch = 10
	affectionTrigger = 20.0
)

// cuePatterns maps English and Chinese linguistic cues to relation labels.
// The captured remainder after the cue becomes the fact target.
var cuePatterns = []struct {
	re       *regexp.Regexp
	relation string
}{
	{regexp.MustCompile(`(?i)\bi (?:really )?(?:like|love|prefer|enjoy)\s+(.+)`), "Prefers"},
	{regexp.MustCompile(`我(?:很|真的|特别)?喜欢(.+)`), "Prefers"},
	{regexp.MustCompile(`(?i)\bi (?:hate|dislike|don't like|can't stand)\s+(.+)`), "Dislikes"},
	{regexp.MustCompile(`我(?:讨厌|不喜欢|受不了)(.+)`), "Dislikes"},
	{regexp.MustCompile(`(?i)\b(?:i am|i'm)\s+(.+)`), "Is"},
	{regexp.MustCompile(`我是(.+)`), "Is"},
	{regexp.MustCompile(`(?i)\bi (?:use|work with)\s+(.+)`), "Uses"},
	{regexp.MustCompile(`我(?:使用|在用|用)(.+)`), "Uses"},
	{regexp.MustCompile(`(?i)\bi (?:often|usually|always)\s+(.+)`), "Often"},
	{regexp.MustCompile(`我(?:经常|常常|总是)(.+)`), "Often"},
}

// emotionKeywords is the bilingual emotion-word list used for emotional
// weight scoring. All entries are lowercase; content is folded before
// counting.
var emotionKeywords = []string{
	"love", "hate", "happy", "sad", "excited", "angry", "amazing",
	"terrible", "wonderful", "awful", "scared", "worried", "upset",
	"thrilled",
	"开心", "高兴", "幸福", "难过", "伤心", "生气", "兴奋",
	"激动", "害怕", "担心", "委屈", "喜欢", "讨厌",
}

// ExtractFacts scans the user turns of a batch and returns candidate triples.
// Multiple cue patterns may fire on the same message; each yields one fact.
func ExtractFacts(turns []Turn) []Fact {
	var facts []Fact
	for _, t := range turns {
		if t.Role != "user" {
			continue
		}
		for _, p := range cuePatterns {
			m := p.re.FindStringSubmatch(t.Content)
			if m == nil {
				continue
			}
			target := cleanTarget(m[1])
			if target == "" || utf8.RuneCountInString(target) >= maxTargetChars {
				continue
			}
			facts = append(facts, Fact{Entity: "User", Relation: p.relation, Target: target})
		}
	}
	return facts
}

// cleanTarget strips trailing punctuation and whitespace from a captured
// remainder.
func cleanTarget(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".,!?;: \t")
	return strings.TrimSpace(s)
}

// EmotionalWeight counts emotion-keyword hits across all turns in a batch
// (any role) and normalizes to [0, 1].
func EmotionalWeight(turns []Turn) float64 {
	hits := 0
	for _, t := range turns {
		content := strings.ToLower(t.Content)
		for _, kw := range emotionKeywords {
			hits += strings.Count(content, kw)
		}
	}
	denom := len(turns)
	if denom < 1 {
		denom = 1
	}
	weight := float64(hits) / float64(denom) * emotionScale
	return math.Min(weight, 1.0)
}

// ShouldCreateEpisodic decides whether a batch warrants an episodic memory.
// Any one signal suffices: emotional weight >= 0.3, batch length >= 10, or
// |affection delta| >= 20.
func ShouldCreateEpisodic(turns []Turn, affectionDelta float64) bool {
	return EmotionalWeight(turns) >= 0.3 ||
		len(turns) >= episodicMinBatch ||
		math.Abs(affectionDelta) >= affectionTrigger
}

// SummarizeTurns builds the extractive summary used for episodic memories and
// segments: label each turn, truncate to 150 chars, and when more than six
// lines result keep the first three and last three joined by an ellipsis
// line. No model call involved.
func SummarizeTurns(turns []Turn) string {
	var lines []string
	for _, t := range turns {
		label := "AI: "
		if t.Role == "user" {
			label = "User: "
		}
		lines = append(lines, label+truncate(t.Content, turnTruncateAt))
	}

	if len(lines) > summaryMaxLines {
		kept := make([]string, 0, summaryHeadTail*2+1)
		kept = append(kept, lines[:summaryHeadTail]...)
		kept = append(kept, "...")
		kept = append(kept, lines[len(lines)-summaryHeadTail:]...)
		lines = kept
	}

	return strings.Join(lines, "\n")
}

// truncate cuts a string to n runes, appending "..." when shortened.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
