package ingest

import (
	"strings"
	"unicode"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/stoplist"
)

// Tokenize splits a query into ordered lowercase word tokens.
//
// Word characters are Unicode letters, numbers and underscore. Every other
// character, punctuation and whitespace alike, separates tokens, so
// "Best Remortgage-Deals!" yields [best remortgage deals].
// Tokens found in stops are dropped. The lookup is exact: stops must already
// be lowercase.
func Tokenize(query string, stops stoplist.Set) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()
		if stops.Contains(word) {
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range strings.ToLower(query) {
		if isWordRune(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// ExtractNgrams tokenizes query and returns its word n-grams in order.
// A query with fewer than n tokens yields no n-grams. n below 1 is rejected.
func ExtractNgrams(query string, n int, stops stoplist.Set) ([]string, error) {
	if n < 1 {
		return nil, internalerr.NewInputValueError("n-gram size", n, "must be >= 1")
	}
	return Ngrams(Tokenize(query, stops), n), nil
}

// Ngrams slides a window of width n over tokens, joining each window with a
// single space. It returns nil when n < 1 or len(tokens) < n.
func Ngrams(tokens []string, n int) []string {
	if n < 1 || len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		if n == 1 {
			out = append(out, tokens[i])
			continue
		}
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}
