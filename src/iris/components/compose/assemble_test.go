package compose

import (
	"context"
	"strings"
	"testing"

	"github.com/lorekeep/iris/src/iris/components/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	pages map[string]*wiki.Page
}

func (f *fakeResolver) Resolve(ctx context.Context, term string) (*wiki.Page, error) {
	if p, ok := f.pages[term]; ok {
		return p, nil
	}
	return nil, wiki.ErrNotFound
}

type fakeTrivia struct {
	facts map[int64]string
	calls int
}

func (f *fakeTrivia) Random(ctx context.Context, pageID int64) (string, error) {
	f.calls++
	if fact, ok := f.facts[pageID]; ok {
		return fact, nil
	}
	return "", wiki.ErrNoTrivia
}

func newTestAssembler(pages map[string]*wiki.Page, facts map[int64]string, sections []wiki.Section) *Assembler {
	return NewAssembler(
		&fakeResolver{pages: pages},
		&fakeTrivia{facts: facts},
		NewComposer(&fakeSections{sections: sections}, testLinks),
		nil,
	)
}

func TestAssembleSingleTerm(t *testing.T) {
	a := newTestAssembler(
		map[string]*wiki.Page{"Hana": hanaPage()},
		nil,
		hanaSections(),
	)

	body, terms := a.Assemble(context.Background(), "Tell me about `Hana`")
	assert.Equal(t, []string{"Hana"}, terms)
	assert.Contains(t, body, "### [Hana Lee]")
	assert.Contains(t, body, "[Image](img1)")
	assert.Contains(t, body, "Hana Lee is a character.")
	assert.Contains(t, body, "tumblr.com/tagged/hana-lee")
	assert.Contains(t, body, "twitter.com/search")
	assert.NotContains(t, body, "Did You Know?", "no trivia line without a fact")
}

func TestAssembleDeduplicatesByHeading(t *testing.T) {
	// Case-insensitive duplicate surface terms resolve to the same record.
	a := newTestAssembler(
		map[string]*wiki.Page{"Hana": hanaPage()},
		nil,
		hanaSections(),
	)

	body, _ := a.Assemble(context.Background(), "`Hana` and `hana`")
	assert.Equal(t, 1, strings.Count(body, "### [Hana Lee]"), "exactly one entry survives")
}

func TestAssembleDistinctTermsSameRecord(t *testing.T) {
	a := newTestAssembler(
		map[string]*wiki.Page{"Hana": hanaPage(), "Hana Lee": hanaPage()},
		nil,
		hanaSections(),
	)

	body, _ := a.Assemble(context.Background(), "`Hana` or `Hana Lee`?")
	assert.Equal(t, 1, strings.Count(body, "### [Hana Lee]"))
}

func TestAssembleExcludedRecordYieldsNothing(t *testing.T) {
	trivia := &fakeTrivia{}
	a := NewAssembler(
		&fakeResolver{pages: map[string]*wiki.Page{"Theories": {ID: 9, Title: "Theories of Everything", URL: "https://w/wiki/T"}}},
		trivia,
		NewComposer(&fakeSections{}, testLinks),
		nil,
	)

	body, terms := a.Assemble(context.Background(), "`Theories`")
	assert.Empty(t, body, "excluded records never produce a reply")
	assert.Equal(t, []string{"Theories"}, terms)
	assert.Zero(t, trivia.calls, "excluded records skip the trivia fetch")
}

func TestAssembleUnresolvableTermYieldsNothing(t *testing.T) {
	a := newTestAssembler(nil, nil, nil)

	body, terms := a.Assemble(context.Background(), "`Nobody Here`")
	assert.Empty(t, body)
	assert.Equal(t, []string{"Nobody Here"}, terms)
}

func TestAssembleFailedTermDoesNotAbortSiblings(t *testing.T) {
	a := newTestAssembler(
		map[string]*wiki.Page{"Hana": hanaPage()},
		nil,
		hanaSections(),
	)

	body, _ := a.Assemble(context.Background(), "`Nobody` then `Hana`")
	assert.Contains(t, body, "### [Hana Lee]")
}

func TestAssembleNoTerms(t *testing.T) {
	a := newTestAssembler(nil, nil, nil)

	body, terms := a.Assemble(context.Background(), "just a regular message")
	assert.Empty(t, body)
	assert.Empty(t, terms)
}

func TestAssembleMultipleEntriesOrderedAndJoined(t *testing.T) {
	raydan := &wiki.Page{ID: 7, Title: "Raydan Maramis", URL: "https://w/wiki/Raydan_Maramis"}
	a := newTestAssembler(
		map[string]*wiki.Page{"Hana": hanaPage(), "Raydan": raydan},
		map[int64]string{7: "he is a whisperer"},
		hanaSections(),
	)

	body, _ := a.Assemble(context.Background(), "`Hana` and `Raydan`")
	hanaIdx := strings.Index(body, "### [Hana Lee]")
	raydanIdx := strings.Index(body, "### [Raydan Maramis]")
	require.GreaterOrEqual(t, hanaIdx, 0)
	require.Greater(t, raydanIdx, hanaIdx, "entries keep message order")
	assert.Contains(t, body, ">!he is a whisperer!<")
}
