package engine

import (
	"strings"
	"testing"
)

func TestExtractFactsEnglish(t *testing.T) {
	turns := []Turn{
		{Role: "user", Content: "I like dark mode."},
		{Role: "assistant", Content: "I like it too!"},
		{Role: "user", Content: "I use Vim, by the way"},
	}

	facts := ExtractFacts(turns)
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d: %v", len(facts), facts)
	}
	if facts[0].Entity != "User" || facts[0].Relation != "Prefers" || facts[0].Target != "dark mode" {
		t.Errorf("fact = %+v, want User Prefers dark mode", facts[0])
	}
	if facts[1].Relation != "Uses" || facts[1].Target != "Vim, by the way" {
		t.Errorf("fact = %+v, want Uses with trailing punctuation stripped", facts[1])
	}
}

func TestExtractFactsChinese(t *testing.T) {
	turns := []Turn{
		{Role: "user", Content: "我喜欢黑咖啡"},
		{Role: "user", Content: "我经常加班"},
	}

	facts := ExtractFacts(turns)
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d: %v", len(facts), facts)
	}
	if facts[0].Relation != "Prefers" || facts[0].Target != "黑咖啡" {
		t.Errorf("fact = %+v, want Prefers 黑咖啡", facts[0])
	}
	if facts[1].Relation != "Often" || facts[1].Target != "加班" {
		t.Errorf("fact = %+v, want Often 加班", facts[1])
	}
}

func TestExtractFactsRelations(t *testing.T) {
	cases := []struct {
		content  string
		relation string
		target   string
	}{
		{"I love rainy evenings", "Prefers", "rainy evenings"},
		{"I don't like meetings before noon!", "Dislikes", "meetings before noon"},
		{"I'm a backend engineer", "Is", "a backend engineer"},
		{"I often forget to eat lunch;", "Often", "forget to eat lunch"},
		{"我是一名老师", "Is", "一名老师"},
	}

	for _, c := range cases {
		facts := ExtractFacts([]Turn{{Role: "user", Content: c.content}})
		if len(facts) == 0 {
			t.Errorf("%q: no facts extracted", c.content)
			continue
		}
		if facts[0].Relation != c.relation || facts[0].Target != c.target {
			t.Errorf("%q: got (%s %q), want (%s %q)",
				c.content, facts[0].Relation, facts[0].Target, c.relation, c.target)
		}
	}
}

func TestExtractFactsDiscards(t *testing.T) {
	// Empty remainder after trimming
	facts := ExtractFacts([]Turn{{Role: "user", Content: "I like ..."}})
	if len(facts) != 0 {
		t.Errorf("expected no facts for empty target, got %v", facts)
	}

	// Overlong target
	long := "I like " + strings.Repeat("x", 200)
	facts = ExtractFacts([]Turn{{Role: "user", Content: long}})
	if len(facts) != 0 {
		t.Errorf("expected no facts for >=200 char target, got %d", len(facts))
	}

	// Assistant turns are never scanned
	facts = ExtractFacts([]Turn{{Role: "assistant", Content: "I like helping"}})
	if len(facts) != 0 {
		t.Errorf("expected no facts from assistant turns, got %v", facts)
	}
}

func TestEmotionalWeightEmpty(t *testing.T) {
	if w := EmotionalWeight(nil); w != 0.0 {
		t.Errorf("weight = %f, want 0.0", w)
	}
}

func TestEmotionalWeightMonotonic(t *testing.T) {
	base := []Turn{
		{Role: "user", Content: "the weather is fine"},
		{Role: "assistant", Content: "indeed"},
	}
	one := []Turn{
		{Role: "user", Content: "I am so happy today"},
		{Role: "assistant", Content: "indeed"},
	}
	two := []Turn{
		{Role: "user", Content: "I am so happy today"},
		{Role: "assistant", Content: "that is wonderful"},
	}

	w0, w1, w2 := EmotionalWeight(base), EmotionalWeight(one), EmotionalWeight(two)
	if w0 != 0 {
		t.Errorf("neutral batch weight = %f, want 0", w0)
	}
	if !(w1 > w0) || !(w2 > w1) {
		t.Errorf("weights not monotonic: %f, %f, %f", w0, w1, w2)
	}
	for _, w := range []float64{w0, w1, w2} {
		if w < 0 || w > 1 {
			t.Errorf("weight %f out of [0,1]", w)
		}
	}
}

func TestEmotionalWeightCapped(t *testing.T) {
	turns := []Turn{{Role: "user", Content: strings.Repeat("happy sad angry excited ", 10)}}
	if w := EmotionalWeight(turns); w != 1.0 {
		t.Errorf("weight = %f, want capped 1.0", w)
	}
}

func TestShouldCreateEpisodic(t *testing.T) {
	small := []Turn{{Role: "user", Content: "Hi"}}

	if ShouldCreateEpisodic(small, 0) {
		t.Error("neutral single turn with no delta should not trigger")
	}
	if !ShouldCreateEpisodic(small, 25) {
		t.Error("|affection_delta| >= 20 should trigger")
	}
	if !ShouldCreateEpisodic(small, -25) {
		t.Error("negative delta past threshold should trigger")
	}

	emotional := []Turn{{Role: "user", Content: "I am so happy, this is wonderful"}}
	if !ShouldCreateEpisodic(emotional, 0) {
		t.Error("emotional weight >= 0.3 should trigger")
	}

	long := make([]Turn, 10)
	for i := range long {
		long[i] = Turn{Role: "user", Content: "ok"}
	}
	if !ShouldCreateEpisodic(long, 0) {
		t.Error("batch length >= 10 should trigger")
	}
	if ShouldCreateEpisodic(long[:9], 19) {
		t.Error("all signals below threshold should not trigger")
	}
}

func TestSummarizeTurnsLabels(t *testing.T) {
	turns := []Turn{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	}
	got := SummarizeTurns(turns)
	want := "User: hello\nAI: hi there"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestSummarizeTurnsTruncation(t *testing.T) {
	long := strings.Repeat("a", 160)
	got := SummarizeTurns([]Turn{{Role: "user", Content: long}})
	want := "User: " + strings.Repeat("a", 150) + "..."
	if got != want {
		t.Errorf("summary = %q, want 150-char truncation with ellipsis", got)
	}
}

func TestSummarizeTurnsHeadTail(t *testing.T) {
	var turns []Turn
	for i := 0; i < 8; i++ {
		turns = append(turns, Turn{Role: "user", Content: string(rune('a' + i))})
	}

	got := SummarizeTurns(turns)
	lines := strings.Split(got, "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines (3 + ellipsis + 3), got %d: %q", len(lines), got)
	}
	if lines[3] != "..." {
		t.Errorf("middle line = %q, want ...", lines[3])
	}
	if lines[0] != "User: a" || lines[6] != "User: h" {
		t.Errorf("head/tail wrong: first %q, last %q", lines[0], lines[6])
	}
}
