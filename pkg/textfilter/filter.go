// Package textfilter tidies generated text before it reaches the player.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps words that should not appear in a resume to office-safe
// alternatives. Longer words come first so compounds win over their parts.
var replacements = []struct{ word, with string }{
	{"motherfucker", "mother-trucker"},
	{"bullshit", "baloney"},
	{"goddamn", "gosh-dang"},
	{"asshole", "jerk"},
	{"dumbass", "dummy"},
	{"fuck", "fudge"},
	{"shit", "shoot"},
	{"damn", "dang"},
	{"hell", "heck"},
	{"crap", "crud"},
	{"bitch", "jerk"},
	{"bastard", "jerk"},
	{"piss", "ticked"},
	{"ass", "butt"},
}

// ProfanityFilter replaces profanity with family-friendly words.
type ProfanityFilter struct {
	patterns []*regexp.Regexp
}

// NewProfanityFilter compiles the word list. Plural forms match too.
func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{patterns: make([]*regexp.Regexp, len(replacements))}
	for i, r := range replacements {
		pf.patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.word) + `(s|es)?\b`)
	}
	return pf
}

// FilterText replaces every listed word, keeping the original's case and
// plural suffix.
func (pf *ProfanityFilter) FilterText(text string) string {
	for i, re := range pf.patterns {
		with := replacements[i].with
		word := replacements[i].word
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(match[:len(word)], with) + match[len(word):]
		})
	}
	return text
}

// ContainsProfanity reports whether any listed word appears in text.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, re := range pf.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var titleCaser = cases.Title(language.English)

// matchCase applies the case pattern of original to replacement.
func matchCase(original, replacement string) string {
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return strings.ToLower(replacement)
	case titleCaser.String(strings.ToLower(original)) == original:
		return titleCaser.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}

// TitleCase capitalizes each word, e.g. gem colors for display.
func TitleCase(s string) string {
	return titleCaser.String(s)
}

var (
	fencePattern    = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	emphasisPattern = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+?)(\*\*|__|\*|_)`)
	headingPattern  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown strips the markdown a model tends to add to plain dialogue:
// code fences, emphasis markers and heading marks.
func CleanMarkdown(text string) string {
	text = fencePattern.ReplaceAllString(text, "$1")
	text = emphasisPattern.ReplaceAllString(text, "$2")
	text = headingPattern.ReplaceAllString(text, "")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Excerpt returns at most max runes of s. It never splits a multi-byte
// character.
func Excerpt(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
