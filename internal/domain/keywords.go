package domain

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// tokenRe extracts maximal runs of Hangul syllables, Latin letters and digits.
var tokenRe = regexp.MustCompile(`[가-힣A-Za-z0-9]+`)

// KeywordExtractor turns free-text feedback into term frequencies.
type KeywordExtractor struct {
	stopwords map[string]struct{}
	suffixes  []string // longest first
	minLen    int
}

// NewKeywordExtractor builds an extractor from vocabulary tables.
func NewKeywordExtractor(v *Vocabulary) *KeywordExtractor {
	stop := make(map[string]struct{}, len(v.Stopwords))
	for _, w := range v.Stopwords {
		stop[w] = struct{}{}
	}

	suffixes := append([]string(nil), v.Suffixes...)
	sort.SliceStable(suffixes, func(i, j int) bool {
		return utf8.RuneCountInString(suffixes[i]) > utf8.RuneCountInString(suffixes[j])
	})

	minLen := v.MinTokenLength
	if minLen < 1 {
		minLen = 1
	}
	return &KeywordExtractor{stopwords: stop, suffixes: suffixes, minLen: minLen}
}

// Tokenize splits text into content tokens: one trailing suffix stripped,
// short tokens and stopwords dropped.
func (k *KeywordExtractor) Tokenize(text string) []string {
	var out []string
	for _, tok := range tokenRe.FindAllString(text, -1) {
		tok = k.stripSuffix(tok)
		if utf8.RuneCountInString(tok) < k.minLen {
			continue
		}
		if _, stop := k.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// stripSuffix removes the longest matching suffix once. It does not recurse.
func (k *KeywordExtractor) stripSuffix(tok string) string {
	for _, suf := range k.suffixes {
		if strings.HasSuffix(tok, suf) {
			return strings.TrimSuffix(tok, suf)
		}
	}
	return tok
}

// Bigrams pairs each token with its successor: "a b", "b c", ...
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// KeywordOptions scopes a frequency count.
type KeywordOptions struct {
	// Date restricts counting to feedback recorded against this day. Zero means all days.
	Date    Date
	Bigrams bool
}

// Frequencies counts terms across the feedback text of records in scope.
func (k *KeywordExtractor) Frequencies(records []FeedbackRecord, opts KeywordOptions) map[string]int {
	counts := make(map[string]int)
	want := opts.Date.String()
	for _, rec := range records {
		if want != "" && strings.TrimSpace(rec.Date) != want {
			continue
		}
		if strings.TrimSpace(rec.Feedback) == "" {
			continue
		}
		toks := k.Tokenize(rec.Feedback)
		if opts.Bigrams {
			toks = Bigrams(toks)
		}
		for _, t := range toks {
			counts[t]++
		}
	}
	return counts
}

// TermCount is one ranked entry of a frequency table.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// TopTerms ranks terms by count (ties by term) and keeps at most n; n <= 0 keeps all.
func TopTerms(freq map[string]int, n int) []TermCount {
	out := make([]TermCount, 0, len(freq))
	for term, c := range freq {
		out = append(out, TermCount{Term: term, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
