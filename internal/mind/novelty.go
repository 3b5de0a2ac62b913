package mind

import (
	"strings"
	"unicode"
)

// The novelty measure is a deliberately cheap token-overlap heuristic:
// intersection of token sets over the smaller set's size. Identical text
// scores 1.0. Do not swap in embedding similarity without revisiting the
// threshold; the rejection behavior is defined against this measure.
const (
	similarityThreshold = 0.4
	recentOwnWindow     = 15
	prefixTokenCount    = 3
)

// bannedPhrases is the fixed blacklist. Matching is exact substring,
// case-insensitive. A candidate containing any of these never ships.
var bannedPhrases = []string{
	"as an ai",
	"as a language model",
	"as an assistant",
	"i'm just a bot",
	"i am just a bot",
	"i cannot assist with that",
	"my programming",
	"great question!",
	"certainly! ",
	"i'd be happy to help",
	"let's dive in",
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenize(s) {
		set[t] = struct{}{}
	}
	return set
}

// similarity returns |A∩B| / min(|A|,|B|) over token sets. Identical text
// is 1.0 by definition.
func similarity(a, b string) float64 {
	if strings.TrimSpace(a) == strings.TrimSpace(b) {
		return 1.0
	}
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	small, large := sa, sb
	if len(sb) < len(sa) {
		small, large = sb, sa
	}
	var inter int
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(small))
}

// maxSimilarity returns the highest similarity of text against any of prior.
func maxSimilarity(text string, prior []string) float64 {
	var max float64
	for _, p := range prior {
		if s := similarity(text, p); s > max {
			max = s
		}
	}
	return max
}

// sharesPrefix reports whether a and b start with the same n tokens.
func sharesPrefix(a, b string, n int) bool {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) < n || len(tb) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

// containsBannedPhrase returns the matched phrase, or "".
func containsBannedPhrase(text string) string {
	l := strings.ToLower(text)
	for _, p := range bannedPhrases {
		if strings.Contains(l, p) {
			return p
		}
	}
	return ""
}

// dominantKeyword extracts the longest non-trivial token of a text; a crude
// stand-in for a topic tag, good enough for theme bookkeeping.
func dominantKeyword(text string) string {
	var best string
	for _, t := range tokenize(text) {
		if len(t) > len(best) && !stopWords[t] {
			best = t
		}
	}
	return best
}

var stopWords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"for": true, "you": true, "your": true, "have": true, "about": true,
	"what": true, "when": true, "where": true, "just": true, "like": true,
	"from": true, "they": true, "them": true, "been": true, "were": true,
	"would": true, "could": true, "should": true, "really": true,
}
