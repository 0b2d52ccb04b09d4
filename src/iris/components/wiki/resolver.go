package wiki

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
)

// ErrNotFound is returned when a term cannot be resolved to a record at any
// stage. Every underlying failure (no candidates, web fallback miss, fetch
// error) collapses to this so one bad term never aborts its siblings.
var ErrNotFound = errors.New("no reference record found")

// Lookup is the wiki-side surface the resolver needs.
type Lookup interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	PageDetails(ctx context.Context, title string) (*Page, error)
}

// WebSearcher is the scoped web-search fallback surface.
type WebSearcher interface {
	Search(ctx context.Context, query, site string, limit int) ([]string, error)
}

const searchLimit = 5

// Resolver turns a normalized search term into a canonical Page.
type Resolver struct {
	lookup Lookup
	web    WebSearcher
	domain string
}

func NewResolver(lookup Lookup, web WebSearcher, domain string) *Resolver {
	return &Resolver{lookup: lookup, web: web, domain: domain}
}

// Resolve finds the best wiki record for a term. A best candidate without an
// internal space is treated as a mis-ranked disambiguation title and resolved
// again through a site-scoped web search, deriving the canonical title from
// the top hit's URL path.
//
// NOTE: the no-space heuristic is inherited behavior with unknown
// false-positive rates on legitimately single-word titles; kept as is
// pending product review.
func (r *Resolver) Resolve(ctx context.Context, term string) (*Page, error) {
	results, err := r.lookup.Search(ctx, term, searchLimit)
	if err != nil {
		log.Printf("resolve %q: search: %v", term, err)
		return nil, ErrNotFound
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	best := results[0]
	if !strings.Contains(best, " ") {
		best, err = r.webTitle(ctx, term)
		if err != nil {
			log.Printf("resolve %q: web fallback: %v", term, err)
			return nil, ErrNotFound
		}
	}

	page, err := r.lookup.PageDetails(ctx, best)
	if err != nil {
		log.Printf("resolve %q: fetch %q: %v", term, best, err)
		return nil, ErrNotFound
	}

	return page, nil
}

func (r *Resolver) webTitle(ctx context.Context, term string) (string, error) {
	urls, err := r.web.Search(ctx, term, r.domain, 2)
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("no web results")
	}
	return TitleFromURL(urls[0])
}

// TitleFromURL derives a page title from a wiki article URL: the path
// segment after "wiki/", underscores restored to spaces.
func TitleFromURL(articleURL string) (string, error) {
	_, after, found := strings.Cut(articleURL, "wiki/")
	if !found || after == "" {
		return "", fmt.Errorf("not an article URL: %s", articleURL)
	}
	if i := strings.IndexAny(after, "?#"); i >= 0 {
		after = after[:i]
	}
	if decoded, err := url.PathUnescape(after); err == nil {
		after = decoded
	}
	return strings.ReplaceAll(after, "_", " "), nil
}
