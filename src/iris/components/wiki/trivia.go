package wiki

import (
	"context"
	"errors"
	"math/rand"
	"strings"
)

// ErrNoTrivia means the page simply has no trivia to offer. Normal, not
// logged as an error.
var ErrNoTrivia = errors.New("no trivia available")

// SectionFetcher is the structured-content surface of the wiki client.
type SectionFetcher interface {
	Sections(ctx context.Context, pageID int64) ([]Section, error)
}

// TriviaSelector samples one fact from a page's "Trivia" section.
type TriviaSelector struct {
	fetch SectionFetcher
	pick  func(n int) int
}

// NewTriviaSelector builds a selector using the default random source. pick
// may be overridden in tests via NewTriviaSelectorWithPick.
func NewTriviaSelector(fetch SectionFetcher) *TriviaSelector {
	return NewTriviaSelectorWithPick(fetch, rand.Intn)
}

func NewTriviaSelectorWithPick(fetch SectionFetcher, pick func(n int) int) *TriviaSelector {
	return &TriviaSelector{fetch: fetch, pick: pick}
}

// Random returns one trivia fact for the page, chosen at random from the
// first content block of the section titled "Trivia". ErrNoTrivia when the
// section or its facts are absent.
func (t *TriviaSelector) Random(ctx context.Context, pageID int64) (string, error) {
	sections, err := t.fetch.Sections(ctx, pageID)
	if err != nil {
		return "", err
	}

	var facts []string
	for _, sec := range sections {
		if !strings.EqualFold(sec.Title, "Trivia") || len(sec.Content) == 0 {
			continue
		}
		for _, el := range sec.Content[0].Elements {
			if fact := strings.TrimSpace(el); fact != "" {
				facts = append(facts, fact)
			}
		}
		break
	}

	if len(facts) == 0 {
		return "", ErrNoTrivia
	}

	return facts[t.pick(len(facts))], nil
}

// FirstSummary returns the leading text block of the first top-level
// section, or "" when the page has none.
func FirstSummary(sections []Section) string {
	for _, sec := range sections {
		if sec.Level != 1 || len(sec.Content) == 0 {
			continue
		}
		if text := strings.TrimSpace(sec.Content[0].Text); text != "" {
			return text
		}
	}
	return ""
}
