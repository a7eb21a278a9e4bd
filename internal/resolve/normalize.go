package resolve

import (
	"regexp"
	"strings"
)

// Demonym words never required to appear in a matched name.
var demonymTokens = map[string]bool{
	"svensk": true, "svenska": true, "svenskt": true, "swedish": true,
	"norsk": true, "norska": true, "norwegian": true,
	"dansk": true, "danska": true, "danish": true,
	"finsk": true, "finska": true, "finnish": true,
	"skandinavisk": true, "skandinaviska": true, "scandinavian": true,
	"nordic": true, "norden": true,
}

// Generic corporate-form words carry no matching signal.
var genericTokens = map[string]bool{
	"ab": true, "asa": true, "abp": true, "publ": true, "sa": true,
	"oyj": true, "co": true, "inc": true, "corp": true, "group": true,
	"aktiebolag": true, "bankaktiebolag": true,
}

var (
	reAnalyzePrefix = regexp.MustCompile(`(?i)^\s*(analy[sz]e|analysera|analys)\b`)
	reABPubl        = regexp.MustCompile(`\bAB\s*\(PUBL\)`)
	rePubl          = regexp.MustCompile(`\(PUBL\)`)
	reAB            = regexp.MustCompile(`\bAB\b`)
	reShareClass    = regexp.MustCompile(`\bSER\.?\s*[A-Z]\b`)
	reLegalSuffix   = regexp.MustCompile(`(?i)\b(ab|publ|ab publ|s\.a\.|sa|oyj|asa|abp)\b`)
	reSpaces        = regexp.MustCompile(`\s+`)
	reTokenSplit    = regexp.MustCompile(`[\s\-_/]+`)
)

// foldRunes maps the Scandinavian (and a few common continental) letters to
// base Latin. Anything else outside ASCII is dropped.
var foldRunes = map[rune]string{
	'Å': "A", 'å': "a", 'Ä': "A", 'ä': "a", 'Ö': "O", 'ö': "o",
	'Ø': "O", 'ø': "o", 'Æ': "AE", 'æ': "ae",
	'É': "E", 'é': "e", 'È': "E", 'è': "e", 'Ü': "U", 'ü': "u",
	'Á': "A", 'á': "a", 'Í': "I", 'í': "i", 'Ó': "O", 'ó': "o",
	'Ú': "U", 'ú': "u", 'Ý': "Y", 'ý': "y", 'Þ': "TH", 'þ': "th",
	'Ð': "D", 'ð': "d",
}

// CleanQuery strips a leading analyze-verb from a user prompt. Falls back to
// the trimmed original when stripping would leave nothing.
func CleanQuery(prompt string) string {
	q := strings.TrimSpace(prompt)
	stripped := strings.TrimSpace(reAnalyzePrefix.ReplaceAllString(q, ""))
	if stripped == "" {
		return q
	}
	return stripped
}

// CleanName upper-cases and strips corporate suffixes and share-class markers
// from an instrument name.
func CleanName(name string) string {
	u := strings.ToUpper(name)
	u = reABPubl.ReplaceAllString(u, "")
	u = rePubl.ReplaceAllString(u, "")
	u = reAB.ReplaceAllString(u, "")
	u = reShareClass.ReplaceAllString(u, "")
	u = reSpaces.ReplaceAllString(u, " ")
	return strings.TrimSpace(u)
}

// Fold transliterates diacritics to base Latin characters and drops any
// remaining non-ASCII runes.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
			continue
		}
		if repl, ok := foldRunes[r]; ok {
			b.WriteString(repl)
		}
	}
	return b.String()
}

// NormText canonicalizes free text for comparison: query-verb stripping,
// suffix removal, diacritic folding, whitespace collapse. Total; an input
// that normalizes to nothing comes back as its trimmed self.
func NormText(s string) string {
	out := CleanQuery(s)
	out = CleanName(out)
	out = Fold(out)
	out = reLegalSuffix.ReplaceAllString(out, "")
	out = strings.TrimSpace(reSpaces.ReplaceAllString(out, " "))
	if out == "" {
		return strings.TrimSpace(s)
	}
	return out
}

// TickerKey normalizes a ticker for comparison: upper-case, single spaces.
func TickerKey(t string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(strings.ToUpper(t), " "))
}

// Tokens splits normalized text into lower-case tokens on whitespace,
// hyphen, slash and underscore. Empty tokens are dropped.
func Tokens(s string) []string {
	norm := strings.ToLower(NormText(s))
	parts := reTokenSplit.Split(norm, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// KeyTokens filters query tokens down to those that must literally appear in
// a matched instrument name: stopwords, the literal word "bank" and tokens
// shorter than two characters are removed.
func KeyTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if demonymTokens[t] || genericTokens[t] || t == "bank" || len(t) < 2 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// allTokensInName reports whether every token appears as a substring of the
// normalized instrument name.
func allTokensInName(tokens []string, name string) bool {
	nn := strings.ToLower(NormText(name))
	for _, t := range tokens {
		if !strings.Contains(nn, t) {
			return false
		}
	}
	return true
}
