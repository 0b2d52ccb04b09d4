package compose

import (
	"context"
	"errors"
	"log"

	"github.com/lorekeep/iris/src/iris/components/extract"
	"github.com/lorekeep/iris/src/iris/components/wiki"
	"github.com/lorekeep/iris/src/iris/metrics"
)

// Resolver resolves one search term to a wiki record.
type Resolver interface {
	Resolve(ctx context.Context, term string) (*wiki.Page, error)
}

// TriviaSource samples one trivia fact for a record.
type TriviaSource interface {
	Random(ctx context.Context, pageID int64) (string, error)
}

// Assembler runs the whole per-message pipeline: extract terms, resolve each,
// compose entries, dedupe, join.
type Assembler struct {
	resolver Resolver
	trivia   TriviaSource
	composer *Composer
	metrics  *metrics.Metrics
}

func NewAssembler(resolver Resolver, trivia TriviaSource, composer *Composer, m *metrics.Metrics) *Assembler {
	return &Assembler{
		resolver: resolver,
		trivia:   trivia,
		composer: composer,
		metrics:  m,
	}
}

// Assemble builds the reply body for a raw message. An empty body means
// nothing to send. Per-term failures are absorbed here: a term that cannot
// be resolved or composed is dropped without affecting its siblings.
func (a *Assembler) Assemble(ctx context.Context, messageBody string) (string, []string) {
	terms := extract.Terms(messageBody)
	if len(terms) == 0 {
		return "", nil
	}

	var entries []*Entry
	for _, term := range terms {
		page, err := a.resolver.Resolve(ctx, term)
		if err != nil {
			if !errors.Is(err, wiki.ErrNotFound) {
				log.Printf("assemble: resolve %q: %v", term, err)
			}
			if a.metrics != nil {
				a.metrics.ResolutionFailures.Inc()
			}
			continue
		}

		// Excluded records never become entries; skip the trivia fetch.
		if Excluded(page.Title) {
			continue
		}

		trivia, err := a.trivia.Random(ctx, page.ID)
		if err != nil && !errors.Is(err, wiki.ErrNoTrivia) {
			log.Printf("assemble: trivia for %q: %v", page.Title, err)
		}

		entry, err := a.composer.Compose(ctx, page, trivia)
		if err != nil {
			if !errors.Is(err, ErrExcluded) {
				log.Printf("assemble: compose %q: %v", page.Title, err)
			}
			continue
		}

		entries = append(entries, entry)
	}

	return joinUnique(entries), terms
}

// joinUnique deduplicates entries by heading, first occurrence wins, and
// joins the survivors with a blank line. Two passes: collect then filter,
// never mutate while iterating.
func joinUnique(entries []*Entry) string {
	seen := make(map[string]bool, len(entries))
	var body string
	for _, e := range entries {
		if seen[e.Heading] {
			continue
		}
		seen[e.Heading] = true
		if body != "" {
			body += "\n\n"
		}
		body += e.Body
	}
	return body
}
