package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/stoplist"
)

func TestTokenizeBasic(t *testing.T) {
	tokens := Tokenize("Best Remortgage Deals!", nil)
	assert.Equal(t, []string{"best", "remortgage", "deals"}, tokens)
}

func TestTokenizeCases(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \t\n\r   ", nil},
		{"punctuation only", "!?.,;:", nil},
		{"hyphen splits", "buy-to-let mortgage", []string{"buy", "to", "let", "mortgage"}},
		{"underscore kept", "snake_case term", []string{"snake_case", "term"}},
		{"numbers kept", "2 year fixed 4.5%", []string{"2", "year", "fixed", "4", "5"}},
		{"symbols separate", "hello@world.com test#tag", []string{"hello", "world", "com", "test", "tag"}},
		{"apostrophe splits", "o'neill mortgages", []string{"o", "neill", "mortgages"}},
		{"unicode letters", "Café Résumé naïve", []string{"café", "résumé", "naïve"}},
		{"currency symbol", "£500 loan", []string{"500", "loan"}},
		{"runs of spaces", "  cheap   remortgage  ", []string{"cheap", "remortgage"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.query, nil))
		})
	}
}

func TestTokenizeStopWords(t *testing.T) {
	stops := stoplist.New("best", "cheap")
	tokens := Tokenize("Best Remortgage Deals", stops)
	assert.Equal(t, []string{"remortgage", "deals"}, tokens)
}

func TestTokenizeStopWordsAreCaseSensitive(t *testing.T) {
	// Uppercase stop words are compared against lowercase tokens and never match.
	stops := stoplist.New("The", "A")
	tokens := Tokenize("The cat and a dog", stops)
	assert.Equal(t, []string{"the", "cat", "and", "a", "dog"}, tokens)

	tokens = Tokenize("The cat and a dog", stoplist.Normalize([]string{"The", "A"}))
	assert.Equal(t, []string{"cat", "and", "dog"}, tokens)
}

func TestTokenizeEmptyStopSetKeepsEverything(t *testing.T) {
	assert.Equal(t, Tokenize("the best deals", nil), Tokenize("the best deals", stoplist.New()))
}

func TestTokenizeIsFixedPoint(t *testing.T) {
	queries := []string{
		"Best Remortgage Deals!",
		"hello@world.com test#tag 123",
		"  Café -- résumé__x ",
		"£1,000 loan (fast)",
		"",
	}
	for _, q := range queries {
		first := Tokenize(q, nil)
		second := Tokenize(strings.Join(first, " "), nil)
		assert.Equal(t, first, second, "re-tokenizing %q", q)
	}
}

func TestExtractNgrams(t *testing.T) {
	got, err := ExtractNgrams("cheap remortgage calculator", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap remortgage", "remortgage calculator"}, got)

	got, err = ExtractNgrams("test", 2, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ExtractNgrams("a b c", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "b c"}, got)

	got, err = ExtractNgrams("a b c", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b c"}, got)
}

func TestExtractNgramsWithStopWords(t *testing.T) {
	stops := stoplist.New("the", "a")
	got, err := ExtractNgrams("the best remortgage deals", 2, stops)
	require.NoError(t, err)
	assert.Equal(t, []string{"best remortgage", "remortgage deals"}, got)
}

func TestExtractNgramsRejectsInvalidSize(t *testing.T) {
	for _, n := range []int{0, -1, -10} {
		_, err := ExtractNgrams("cheap remortgage", n, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

		var inputErr *internalerr.InputValueError
		require.True(t, errors.As(err, &inputErr))
		assert.Equal(t, n, inputErr.Value)
	}
}

func TestExtractNgramsCountProperty(t *testing.T) {
	queries := []string{
		"",
		"one",
		"one two",
		"cheap remortgage calculator uk",
		"best, best; best! deals",
		"a b c d e f g h",
	}
	for _, q := range queries {
		tokenCount := len(Tokenize(q, nil))
		for n := 1; n <= 6; n++ {
			got, err := ExtractNgrams(q, n, nil)
			require.NoError(t, err)
			want := tokenCount - n + 1
			if want < 0 {
				want = 0
			}
			assert.Len(t, got, want, "query %q n=%d", q, n)
		}
	}
}

func TestNgramsUnigramsAreTokens(t *testing.T) {
	tokens := []string{"cheap", "remortgage", "cheap"}
	assert.Equal(t, tokens, Ngrams(tokens, 1))
	assert.Nil(t, Ngrams(tokens, 0))
	assert.Nil(t, Ngrams(nil, 1))
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "query", Text("query"))
	assert.Equal(t, "42", Text(42))
	assert.Equal(t, "3.5", Text(3.5))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "raw", Text([]byte("raw")))
}
