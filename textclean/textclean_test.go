package textclean

import (
	"math"
	"regexp"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"cp1252 apostrophe", "Itâ€™s done", "It’s done"},
		{"cp1252 accent", "purÃ©e", "puree"},
		{"mac roman half", "1 ¬Ω cups", "1 1/2 cups"},
		{"mac roman bullet", "‚Ä¢ 2 eggs", "• 2 eggs"},
		{"vulgar fraction", "¾ cup", "3/4 cup"},
		{"mixed number", "1½ cups", "1 1/2 cups"},
		{"accents", "crème brûlée", "creme brulee"},
		{"curly quotes", "“wok hei”", `"wok hei"`},
		{"control", "a\x01b", "a[unk]b"},
		{"cjk", "x 日本", "x [unk][unk]"},
		{"whitespace", "  two   spaces \r\n\tline  ", "two spaces\nline"},
		{"nbsp", "salt\u00a0and pepper", "salt and pepper"},
		{"kept marks", "stir – don’t • stop — ok", "stir – don’t • stop — ok"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanKeepsLines(t *testing.T) {
	got := Clean("TITLE\n\n  1 cup rice  \n2 cups water")
	if lines := strings.Split(got, "\n"); len(lines) != 4 || lines[2] != "1 cup rice" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestGarbleScore(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 1},
		{"  \n ", 1},
		{"hello world", 0},
		{"It’s 1½ cups", 0},
		{"ab\ufffd\ufffd", 0.5},
		{"\x02\x03ab", 0.5},
		{"ÃÃÃÃ", 1},
	}
	for _, tc := range cases {
		if got := GarbleScore(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("GarbleScore(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsGarbled(t *testing.T) {
	if !IsGarbled("short text") {
		t.Fatal("short text should be garbled")
	}
	if !IsGarbled(strings.Repeat("1/2 ", 20)) {
		t.Fatal("digits only should be garbled")
	}
	if IsGarbled("Combine the flour, sugar and butter in a large mixing bowl.") {
		t.Fatal("prose should not be garbled")
	}
}

func TestStripFooter(t *testing.T) {
	footer := regexp.MustCompile(`(?i)THE WOKS OF LIFE\s*\|.*`)
	in := "Stir well.\nThe Woks of Life | Top 25 Recipes 14"
	if got := StripFooter(in, footer); got != "Stir well." {
		t.Fatalf("StripFooter = %q", got)
	}
	if got := StripFooter(" x ", nil); got != " x " {
		t.Fatalf("nil pattern changed text: %q", got)
	}
}
