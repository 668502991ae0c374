// Package textclean normalizes text pulled out of PDF text layers and OCR so
// that downstream heuristics only ever see printable ASCII plus a few
// typographic marks.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unknown replaces runes that survive cleanup but are not allowed.
const Unknown = "[unk]"

// kept lists the non-ASCII runes Clean lets through.
const kept = "–—’•"

// legacy covers sequences seen in exported cookbooks that the generic
// repair below does not restore on its own.
var legacy = strings.NewReplacer(
	"¬Ω", "1/2",
	"¬º", "1/4",
	"¬æ", "3/4",
	"‚Öì", "1/3",
	"‚Öî", "2/3",
	"‚Ä¢", "•",
	"‚Äôs", "’s",
	"‚Äì", "-",
)

var quotes = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'")

var (
	nonASCIIRun = regexp.MustCompile(`[^\x00-\x7F]+`)
	horizontal  = regexp.MustCompile(`[ \t]+`)

	// UTF-8 bytes misread as one of these code pages.
	mojibakeSources = []encoding.Encoding{charmap.Windows1252, charmap.Macintosh}

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Clean repairs mojibake, spells vulgar fractions in ASCII, strips accents
// and replaces anything else outside printable ASCII with Unknown. Runs of
// spaces collapse to one and every line is trimmed; line breaks are kept.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = legacy.Replace(s)
	s = nonASCIIRun.ReplaceAllStringFunc(s, repairMojibake)
	s = quotes.Replace(s)
	s = spaceFractions(s)
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "⁄", "/")
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r >= 32 && r <= 126:
			b.WriteRune(r)
		case strings.ContainsRune(kept, r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			b.WriteString(Unknown)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(horizontal.ReplaceAllString(ln, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func repairMojibake(run string) string {
	for _, enc := range mojibakeSources {
		raw, err := enc.NewEncoder().String(run)
		if err != nil || !utf8.ValidString(raw) {
			continue
		}
		if utf8.RuneCountInString(raw) < utf8.RuneCountInString(run) {
			return raw
		}
	}
	return run
}

func isVulgarFraction(r rune) bool {
	return (r >= 0x00BC && r <= 0x00BE) || (r >= 0x2150 && r <= 0x215E)
}

// spaceFractions keeps "1½" from becoming "11/2" after NFKC.
func spaceFractions(s string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range s {
		if isVulgarFraction(r) && unicode.IsDigit(prev) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// typographic marks and fractions do not count against a text layer.
const typographic = "–—‘’“”•…°" + "¼½¾⅓⅔⅛"

// GarbleScore estimates how corrupt raw extracted text is: the fraction of
// runes that are control characters, replacement characters, or non-ASCII
// outside a small typographic set. Empty text scores 1.
func GarbleScore(raw string) float64 {
	if strings.TrimSpace(raw) == "" {
		return 1
	}
	total, weird := 0, 0
	for _, r := range raw {
		total++
		switch {
		case r == '\n' || r == '\r' || r == '\t':
		case r == utf8.RuneError:
			weird++
		case r < 32 || r == 127:
			weird++
		case r > 126 && !strings.ContainsRune(typographic, r) && !unicode.IsSpace(r):
			weird++
		}
	}
	return float64(weird) / float64(total)
}

// IsGarbled reports text that is too short or too letter-poor to trust.
func IsGarbled(s string) bool {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < 40 {
		return true
	}
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return float64(letters)/float64(n) < 0.2
}

// StripFooter removes every match of footer and trims the result. A nil
// pattern leaves s untouched.
func StripFooter(s string, footer *regexp.Regexp) string {
	if footer == nil {
		return s
	}
	return strings.TrimSpace(footer.ReplaceAllString(s, ""))
}
