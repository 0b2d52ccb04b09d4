// Package compose turns resolved wiki records into reply entries and
// assembles the final deduplicated reply body.
package compose

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/lorekeep/iris/src/iris/components/wiki"
	"github.com/microcosm-cc/bluemonday"
)

// ErrExcluded means the record is a meta or navigation page, not a subject
// worth an entry. Normal, not logged as an error.
var ErrExcluded = errors.New("record excluded by keyword filter")

// excludedKeywords flag meta/navigation pages by title substring.
var excludedKeywords = []string{"Theory", "Theories", "Choices", "Book", "Your "}

// Excluded reports whether a canonical name trips the keyword filter.
// Callers may check it early to skip work on records that can never
// become entries.
func Excluded(name string) bool {
	for _, keyword := range excludedKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// Links configures the derived outbound search links.
type Links struct {
	TumblrTag      string
	TwitterMention string
}

// Entry is one composed reply block. Heading is the dedupe key within a
// single reply.
type Entry struct {
	Heading string
	Body    string
}

// Composer builds reply entries from resolved records.
type Composer struct {
	sections wiki.SectionFetcher
	sanitize *bluemonday.Policy
	links    Links
}

func NewComposer(sections wiki.SectionFetcher, links Links) *Composer {
	return &Composer{
		sections: sections,
		sanitize: bluemonday.StrictPolicy(),
		links:    links,
	}
}

// Compose builds the entry for a record, with an optional trivia fact.
// ErrExcluded when the record's name trips the keyword filter.
func (c *Composer) Compose(ctx context.Context, page *wiki.Page, trivia string) (*Entry, error) {
	if Excluded(page.Title) {
		return nil, ErrExcluded
	}

	wikiURL := strings.ReplaceAll(page.URL, " ", "_")

	heading := fmt.Sprintf("### [%s](%s)", page.Title, wikiURL)
	if len(page.Images) > 0 {
		heading += fmt.Sprintf(" | [Image](%s)", page.Images[0])
	}

	parts := []string{heading}

	if summary := c.summary(ctx, page.ID); summary != "" {
		parts = append(parts, summary)
	}

	if trivia != "" {
		parts = append(parts, fmt.Sprintf("*Did You Know?* >!%s!<", c.clean(trivia)))
	}

	parts = append(parts, fmt.Sprintf("Links: [Wiki](%s) | [Tumblr](%s) | [Twitter](%s)",
		wikiURL, c.tumblrURL(page.Title), c.twitterURL(page.Title)))

	return &Entry{
		Heading: heading,
		Body:    strings.Join(parts, "\n\n"),
	}, nil
}

// summary is the leading text of the record's first top-level section.
// Optional: fetch failures degrade to an entry without a summary.
func (c *Composer) summary(ctx context.Context, pageID int64) string {
	sections, err := c.sections.Sections(ctx, pageID)
	if err != nil {
		log.Printf("compose: summary for page %d: %v", pageID, err)
		return ""
	}
	return c.clean(wiki.FirstSummary(sections))
}

func (c *Composer) tumblrURL(name string) string {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return fmt.Sprintf("https://www.tumblr.com/tagged/%s+%s", slug, c.links.TumblrTag)
}

// twitterURL searches on just the first word of a multi-word name.
func (c *Composer) twitterURL(name string) string {
	query := name
	if first, _, found := strings.Cut(name, " "); found {
		query = first
	}
	return fmt.Sprintf("https://twitter.com/search?f=tweets&q=%s%%20%s", c.links.TwitterMention, query)
}

func (c *Composer) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitize.Sanitize(text)))
}
