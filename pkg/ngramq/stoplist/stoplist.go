package stoplist

import (
	"sort"
	"strings"
)

// DefaultTerms is the built-in English stop-word list, extended with
// domain fragments that show up in search terms (www, com, co, uk, ...).
var DefaultTerms = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "he",
	"in", "is", "it", "its", "of", "on", "that", "the", "to", "was", "will",
	"with", "www", "com", "co", "uk", "org", "net",
}

// Set is an exact-match stop-word lookup.
// Membership is case-sensitive: tokens are already lowercase when they are
// checked, so a set holding "The" never matches. Use Normalize to build a set
// from user-supplied terms.
type Set map[string]struct{}

// New creates a set holding the terms exactly as given.
func New(terms ...string) Set {
	s := make(Set, len(terms))
	for _, t := range terms {
		s[t] = struct{}{}
	}
	return s
}

// Normalize creates a set from trimmed, lowercased terms, skipping blanks.
func Normalize(terms []string) Set {
	s := make(Set, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		s[t] = struct{}{}
	}
	return s
}

// Default returns a fresh copy of DefaultTerms.
func Default() Set {
	return New(DefaultTerms...)
}

// Contains reports whether token is a stop word. A nil set contains nothing.
func (s Set) Contains(token string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[token]
	return ok
}

// Add adds a term verbatim.
func (s Set) Add(term string) {
	s[term] = struct{}{}
}

// Remove removes a term.
func (s Set) Remove(term string) {
	delete(s, term)
}

// Terms returns the members in sorted order.
func (s Set) Terms() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Key is a stable textual form of the set, used in cache keys.
func (s Set) Key() string {
	return strings.Join(s.Terms(), "\x1f")
}
