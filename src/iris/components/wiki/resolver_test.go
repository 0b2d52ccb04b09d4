package wiki

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	results   []string
	searchErr error
	pages     map[string]*Page
	fetched   []string
}

func (f *fakeLookup) Search(ctx context.Context, query string, limit int) ([]string, error) {
	return f.results, f.searchErr
}

func (f *fakeLookup) PageDetails(ctx context.Context, title string) (*Page, error) {
	f.fetched = append(f.fetched, title)
	if p, ok := f.pages[title]; ok {
		return p, nil
	}
	return nil, errors.New("no such page")
}

type fakeWeb struct {
	urls []string
	err  error
	site string
}

func (f *fakeWeb) Search(ctx context.Context, query, site string, limit int) ([]string, error) {
	f.site = site
	return f.urls, f.err
}

func TestResolveFirstCandidateWins(t *testing.T) {
	lookup := &fakeLookup{
		results: []string{"Hana Lee", "Hana Lee/Outfits", "Lee Family"},
		pages:   map[string]*Page{"Hana Lee": {ID: 42, Title: "Hana Lee", URL: "https://w/wiki/Hana_Lee"}},
	}
	r := NewResolver(lookup, &fakeWeb{}, "w.example.com")

	page, err := r.Resolve(context.Background(), "Hana")
	require.NoError(t, err)
	assert.Equal(t, "Hana Lee", page.Title)
	assert.Equal(t, []string{"Hana Lee"}, lookup.fetched)
}

func TestResolveNoResults(t *testing.T) {
	r := NewResolver(&fakeLookup{}, &fakeWeb{}, "w.example.com")

	_, err := r.Resolve(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveSearchErrorBecomesNotFound(t *testing.T) {
	lookup := &fakeLookup{searchErr: errors.New("HTTP 500")}
	r := NewResolver(lookup, &fakeWeb{}, "w.example.com")

	_, err := r.Resolve(context.Background(), "Hana")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveSingleWordFallsBackToWebSearch(t *testing.T) {
	lookup := &fakeLookup{
		results: []string{"Hana"},
		pages:   map[string]*Page{"Hana Lee": {ID: 42, Title: "Hana Lee"}},
	}
	web := &fakeWeb{urls: []string{"https://w.example.com/wiki/Hana_Lee"}}
	r := NewResolver(lookup, web, "w.example.com")

	page, err := r.Resolve(context.Background(), "Hana")
	require.NoError(t, err)
	assert.Equal(t, "Hana Lee", page.Title)
	assert.Equal(t, "w.example.com", web.site, "web search must be site-scoped")
}

func TestResolveWebFallbackFailureBecomesNotFound(t *testing.T) {
	lookup := &fakeLookup{results: []string{"Hana"}}
	web := &fakeWeb{err: errors.New("quota exceeded")}
	r := NewResolver(lookup, web, "w.example.com")

	_, err := r.Resolve(context.Background(), "Hana")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveFetchErrorBecomesNotFound(t *testing.T) {
	lookup := &fakeLookup{results: []string{"Hana Lee"}}
	r := NewResolver(lookup, &fakeWeb{}, "w.example.com")

	_, err := r.Resolve(context.Background(), "Hana")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTitleFromURL(t *testing.T) {
	title, err := TitleFromURL("https://w.example.com/wiki/Hana_Lee")
	require.NoError(t, err)
	assert.Equal(t, "Hana Lee", title)

	title, err = TitleFromURL("https://w.example.com/wiki/Raydan_Maramis?so=search")
	require.NoError(t, err)
	assert.Equal(t, "Raydan Maramis", title)

	_, err = TitleFromURL("https://w.example.com/about")
	assert.Error(t, err)
}
