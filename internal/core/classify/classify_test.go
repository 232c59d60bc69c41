// internal/core/classify/classify_test.go
package classify

import (
	"reflect"
	"testing"

	"leadrelay/internal/core/langhint"
	"leadrelay/internal/core/taxonomy"
)

// testPack builds a pack literal. Pattern text must already be in
// normalized form, the way taxonomy.Load stores it
func testPack(version int, scale float64, svcs []taxonomy.Service) *taxonomy.Pack {
	return &taxonomy.Pack{
		Version:  version,
		Scale:    scale,
		Services: svcs,
		Urgency: map[int][]string{
			5: {"عاجل", "urgent", "asap"},
			4: {"غدا", "tomorrow"},
			1: {"لاحقا", "later"},
		},
	}
}

func TestClassify_WeightedSum(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "assignments", Patterns: []taxonomy.Pattern{
			{Text: "homework", Weight: 50},
			{Text: "report", Weight: 30},
		}},
		{Name: "research", Patterns: []taxonomy.Pattern{
			{Text: "thesis", Weight: 60},
		}},
	})
	e := New(p)

	res := e.Classify("Need help with my math HOMEWORK report")
	if res.Service != "assignments" {
		t.Fatalf("service = %q, want assignments", res.Service)
	}
	if res.Confidence != 80 {
		t.Fatalf("confidence = %d, want 80", res.Confidence)
	}
	if len(res.Secondary) != 0 {
		t.Fatalf("unexpected secondary candidates: %+v", res.Secondary)
	}
	if res.TaxonomyVersion != 1 {
		t.Fatalf("taxonomy version = %d, want 1", res.TaxonomyVersion)
	}
}

func TestClassify_OverlapAndRepetitionCount(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "assignments", Patterns: []taxonomy.Pattern{
			{Text: "واجب", Weight: 50},
			{Text: "حل واجب", Weight: 60},
		}},
		{Name: "essays", Patterns: []taxonomy.Pattern{
			{Text: "essay", Weight: 40},
		}},
	})
	e := New(p)

	// "حل واجب" matches the phrase and the bare word inside it: 60+50
	res := e.Classify("ابي حل واجب")
	if res.Service != "assignments" || res.Confidence != 100 {
		t.Fatalf("overlap: got %q/%d, want assignments/100", res.Service, res.Confidence)
	}

	// Repetition accumulates: 3 x 40 clamps at 100
	res = e.Classify("essay essay essay")
	if res.Service != "essays" || res.Confidence != 100 {
		t.Fatalf("repetition: got %q/%d, want essays/100", res.Service, res.Confidence)
	}

	// Two occurrences stay under the clamp
	res = e.Classify("essay and another essay")
	if res.Confidence != 80 {
		t.Fatalf("two occurrences = %d, want 80", res.Confidence)
	}
}

func TestClassify_TieBreakLexicographic(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "beta", Patterns: []taxonomy.Pattern{{Text: "zzz", Weight: 50}}},
		{Name: "alpha", Patterns: []taxonomy.Pattern{{Text: "qqq", Weight: 50}}},
	})
	e := New(p)

	res := e.Classify("zzz qqq")
	if res.Service != "alpha" {
		t.Fatalf("tie winner = %q, want alpha", res.Service)
	}
	want := []Candidate{{Service: "beta", Confidence: 50}}
	if !reflect.DeepEqual(res.Secondary, want) {
		t.Fatalf("secondary = %+v, want %+v", res.Secondary, want)
	}
}

func TestClassify_NegativeSubtracts(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "design", Patterns: []taxonomy.Pattern{{Text: "logo", Weight: 50}}},
	})
	p.Negative = []taxonomy.Pattern{{Text: "free", Weight: 40}}
	e := New(p)

	res := e.Classify("any free logo please")
	if res.Service != "design" || res.Confidence != 10 {
		t.Fatalf("got %q/%d, want design/10", res.Service, res.Confidence)
	}

	// Enough negatives push the score to zero and the match disappears
	res = e.Classify("free free logo")
	if res.Matched() {
		t.Fatalf("expected no match, got %q/%d", res.Service, res.Confidence)
	}
}

func TestClassify_ScaleAppliesBeforeClamp(t *testing.T) {
	p := testPack(1, 0.5, []taxonomy.Service{
		{Name: "design", Patterns: []taxonomy.Pattern{
			{Text: "logo", Weight: 50},
			{Text: "banner", Weight: 40},
		}},
	})
	e := New(p)

	res := e.Classify("logo and banner")
	if res.Confidence != 45 {
		t.Fatalf("confidence = %d, want 45", res.Confidence)
	}
}

func TestClassify_Urgency(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "design", Patterns: []taxonomy.Pattern{{Text: "logo", Weight: 50}}},
	})
	e := New(p)

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"no marker defaults to 2", "need a logo", 2},
		{"level five marker", "need a logo عاجل", 5},
		{"level four marker", "need a logo tomorrow", 4},
		{"level one marker", "need a logo later", 1},
		{"exclamations boost", "need a logo!!!", 3},
		{"boost clamps at five", "need a logo urgent!!!", 5},
		{"marker beats casing and diacritics", "need a logo عَاجل", 5},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Classify(tc.in).Urgency; got != tc.want {
				t.Fatalf("urgency(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassify_LanguageHint(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "design", Patterns: []taxonomy.Pattern{{Text: "تصميم", Weight: 50}}},
	})
	e := New(p)

	if got := e.Classify("اريد تصميم شعار للشركه").Language; got != langhint.Arabic {
		t.Fatalf("language = %q, want ar", got)
	}
	if got := e.Classify("need a new logo please").Language; got != langhint.Latin {
		t.Fatalf("language = %q, want latin", got)
	}
}

func TestClassify_SwapTakesEffect(t *testing.T) {
	a := testPack(1, 1, []taxonomy.Service{
		{Name: "design", Patterns: []taxonomy.Pattern{{Text: "logo", Weight: 50}}},
	})
	b := testPack(2, 1, []taxonomy.Service{
		{Name: "branding", Patterns: []taxonomy.Pattern{{Text: "logo", Weight: 60}}},
	})
	e := New(a)

	if res := e.Classify("logo"); res.Service != "design" || res.TaxonomyVersion != 1 {
		t.Fatalf("before swap: %q v%d", res.Service, res.TaxonomyVersion)
	}
	e.Swap(b)
	if res := e.Classify("logo"); res.Service != "branding" || res.TaxonomyVersion != 2 {
		t.Fatalf("after swap: %q v%d", res.Service, res.TaxonomyVersion)
	}
	if e.Pack() != b {
		t.Fatalf("Pack() should expose the swapped pack")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "design", Patterns: []taxonomy.Pattern{{Text: "logo", Weight: 50}, {Text: "banner", Weight: 20}}},
		{Name: "essays", Patterns: []taxonomy.Pattern{{Text: "essay", Weight: 50}}},
		{Name: "research", Patterns: []taxonomy.Pattern{{Text: "paper", Weight: 20}}},
	})
	e := New(p)

	const msg = "logo essay paper banner logo"
	first := e.Classify(msg)
	for i := 0; i < 10; i++ {
		if got := e.Classify(msg); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestClassify_EmptyAndNoMatch(t *testing.T) {
	p := testPack(1, 1, []taxonomy.Service{
		{Name: "design", Patterns: []taxonomy.Pattern{{Text: "logo", Weight: 50}}},
	})
	e := New(p)

	if res := e.Classify(""); res.Matched() || res.Urgency != 2 {
		t.Fatalf("empty input: %+v", res)
	}
	if res := e.Classify("how are you today"); res.Matched() {
		t.Fatalf("expected no match: %+v", res)
	}
}

// End to end over the embedded default pack
func TestClassify_EmbeddedTaxonomy(t *testing.T) {
	p, err := taxonomy.Load()
	if err != nil {
		t.Fatalf("load taxonomy: %v", err)
	}
	e := New(p)

	res := e.Classify("اريد تصميم شعار عاجل")
	if res.Service != "design" {
		t.Fatalf("service = %q, want design", res.Service)
	}
	if res.Confidence != 100 { // تصميم 50 + شعار 50
		t.Fatalf("confidence = %d, want 100", res.Confidence)
	}
	if res.Urgency != 5 {
		t.Fatalf("urgency = %d, want 5", res.Urgency)
	}
	if res.Language != langhint.Arabic {
		t.Fatalf("language = %q, want ar", res.Language)
	}
}
