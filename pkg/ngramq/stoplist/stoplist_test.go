package stoplist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBasic(t *testing.T) {
	s := New("the", "a", "and")

	assert.True(t, s.Contains("the"))
	assert.False(t, s.Contains("hello"))
	assert.Len(t, s, 3)
}

func TestSetAddRemove(t *testing.T) {
	s := New("the")

	s.Add("test")
	assert.True(t, s.Contains("test"), "'test' should be a stop word after adding")

	s.Remove("test")
	assert.False(t, s.Contains("test"), "'test' should not be a stop word after removing")
}

func TestSetIsCaseSensitive(t *testing.T) {
	s := New("The", "A")

	// Tokens reaching the set are lowercase, so mixed-case members never match.
	assert.False(t, s.Contains("the"))
	assert.False(t, s.Contains("a"))
}

func TestNormalize(t *testing.T) {
	s := Normalize([]string{" The ", "A", "", "  ", "and"})

	assert.Equal(t, []string{"a", "and", "the"}, s.Terms())
}

func TestNilSetContainsNothing(t *testing.T) {
	var s Set
	assert.False(t, s.Contains("the"))
	assert.Empty(t, s.Terms())
}

func TestDefaultIsACopy(t *testing.T) {
	first := Default()
	first.Add("remortgage")

	second := Default()
	assert.False(t, second.Contains("remortgage"))
	assert.True(t, second.Contains("www"))
	assert.Len(t, second, len(DefaultTerms))
}

func TestKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, New("b", "a").Key(), New("a", "b").Key())
	assert.NotEqual(t, New("a").Key(), New("a", "b").Key())
	assert.Equal(t, "", Set(nil).Key())
}
