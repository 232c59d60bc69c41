// internal/core/normalize/normalize_test.go
package normalize

import (
	"testing"
)

// Test table covers each stage and combined pipelines.
func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "need a logo",
			out:  "need a logo",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'l', 'o', 'g', 'o', 0x80, ' ', 'n', 'o', 'w'}),
			out:  "logo now",
		},
		{
			name: "case fold",
			in:   "UrGent LoGo",
			out:  "urgent logo",
		},
		{
			name: "remove zero-widths",
			in:   "lo​g‍o", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "logo",
		},
		{
			name: "remove combining marks",
			in:   "résumé", // "résumé" using combining acute accents
			out:  "resume",
		},
		{
			name: "strip harakat",
			in:   "عَاجِل", // "عاجل" with fatha and kasra
			out:  "عاجل",
		},
		{
			name: "width fold fullwidth",
			in:   "ＬＯＧＯ now", // fullwidth letters
			out:  "logo now",
		},
		{
			name: "nfkc ligature",
			in:   "oﬃce design", // ﬃ ligature
			out:  "office design",
		},
		{
			name: "nfkc arabic presentation form",
			in:   "ﻻزم", // lam-alef ligature U+FEFB
			out:  "لازم",
		},
		{
			name: "alef variants fold",
			in:   "أريد إعلان",
			out:  "اريد اعلان",
		},
		{
			name: "teh marbuta and alef maksura",
			in:   "خدمة مستوى",
			out:  "خدمه مستوي",
		},
		{
			name: "hamza carriers",
			in:   "سؤال رئيس",
			out:  "سوال رييس",
		},
		{
			name: "tatweel dropped",
			in:   "مطلـــوب",
			out:  "مطلوب",
		},
		{
			name: "collapse whitespace keeps line breaks",
			in:   "need   logo\t\nnow",
			out:  "need logo\nnow",
		},
		{
			name: "combined normalization",
			in:   "  ＵＲＧＥＮＴ​ عَاجِل \t\n",
			out:  "urgent عاجل",
		},
		{
			name: "idempotent",
			in:   n.Normalize("Ｕrgent\t\tLOGO‍  "),
			out:  "urgent logo",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
			// Idempotence check: normalize again should be identical
			got2 := n.Normalize(got)
			if got2 != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, got2)
			}
		})
	}
}

// Spot-check internal helpers in isolation.
func TestArabicFold(t *testing.T) {
	in := "إستفسار عن خدمــة التصميم ومستوى الجودة"
	want := "استفسار عن خدمه التصميم ومستوي الجوده"
	got := arabicFold(in)
	if got != want {
		t.Fatalf("arabicFold(%q) = %q, want %q", in, got, want)
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := " \t a \n b   c \r\n "
	want := "a\nb c"
	got := collapseSpaces(in)
	if got != want {
		t.Fatalf("collapseSpaces(%q) = %q, want %q", in, got, want)
	}
}
