package wiki

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSections struct {
	sections []Section
	err      error
}

func (f *fakeSections) Sections(ctx context.Context, pageID int64) ([]Section, error) {
	return f.sections, f.err
}

func triviaSections(facts ...string) []Section {
	return []Section{
		{Title: "Hana Lee", Level: 1, Content: []Block{{Type: "paragraph", Text: "Hana Lee is..."}}},
		{Title: "Trivia", Level: 2, Content: []Block{{Type: "list", Elements: facts}}},
	}
}

func TestRandomPicksWithInjectedSource(t *testing.T) {
	fetch := &fakeSections{sections: triviaSections("fact one", " fact two ", "fact three")}
	sel := NewTriviaSelectorWithPick(fetch, func(n int) int { return 1 })

	fact, err := sel.Random(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "fact two", fact, "facts are trimmed before selection")
}

func TestRandomSectionTitleCaseInsensitive(t *testing.T) {
	fetch := &fakeSections{sections: []Section{
		{Title: "TRIVIA", Level: 2, Content: []Block{{Elements: []string{"only fact"}}}},
	}}
	sel := NewTriviaSelectorWithPick(fetch, func(n int) int { return 0 })

	fact, err := sel.Random(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "only fact", fact)
}

func TestRandomNoTriviaSection(t *testing.T) {
	fetch := &fakeSections{sections: triviaSections()[:1]}
	sel := NewTriviaSelector(fetch)

	_, err := sel.Random(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNoTrivia)
}

func TestRandomEmptyTriviaSection(t *testing.T) {
	fetch := &fakeSections{sections: triviaSections("  ")}
	sel := NewTriviaSelector(fetch)

	_, err := sel.Random(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNoTrivia)
}

func TestRandomFetchErrorPropagates(t *testing.T) {
	fetch := &fakeSections{err: errors.New("HTTP 503")}
	sel := NewTriviaSelector(fetch)

	_, err := sel.Random(context.Background(), 42)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTrivia)
}

func TestFirstSummary(t *testing.T) {
	sections := []Section{
		{Title: "Navigation", Level: 2, Content: []Block{{Text: "skip me"}}},
		{Title: "Hana Lee", Level: 1, Content: []Block{{Text: " Hana Lee is a character. "}}},
		{Title: "Other", Level: 1, Content: []Block{{Text: "not this one"}}},
	}
	assert.Equal(t, "Hana Lee is a character.", FirstSummary(sections))
	assert.Equal(t, "", FirstSummary(nil))
}
