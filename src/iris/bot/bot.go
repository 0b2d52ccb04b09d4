// Package bot wires the lookup pipeline together and supervises its
// lifecycle.
package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lorekeep/iris/src/iris/api"
	"github.com/lorekeep/iris/src/iris/components/compose"
	"github.com/lorekeep/iris/src/iris/components/consumer"
	"github.com/lorekeep/iris/src/iris/components/websearch"
	"github.com/lorekeep/iris/src/iris/components/wiki"
	"github.com/lorekeep/iris/src/iris/config"
	"github.com/lorekeep/iris/src/iris/data"
	"github.com/lorekeep/iris/src/iris/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const Version = "1.0.0"

const disclaimer = "\n\n---\n*Iris: a wiki reference bot. Wrap a name in backticks to look it up.*"

const pageCacheTTL = time.Hour

type Bot struct {
	consumer *consumer.Consumer
	feed     *consumer.Feed
	server   *api.Server
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client) (*Bot, error) {
	ctx, cancel := context.WithCancel(context.Background())

	m := metrics.New()
	registry := prometheus.NewRegistry()
	m.Register(registry)

	wikiClient := wiki.NewClient(cfg.WikiBaseURL)
	lookup := wiki.NewCachedLookup(wikiClient, rdb, pageCacheTTL)
	web := websearch.NewClient(cfg.WebSearchURL, cfg.WebSearchKey, cfg.WebSearchCX)

	resolver := wiki.NewResolver(lookup, web, cfg.WikiDomain)
	trivia := wiki.NewTriviaSelector(wikiClient)
	composer := compose.NewComposer(wikiClient, compose.Links{
		TumblrTag:      cfg.TumblrTag,
		TwitterMention: cfg.TwitterMention,
	})
	assembler := compose.NewAssembler(resolver, trivia, composer, m)

	cons := consumer.New(consumer.Config{
		ChannelIDs: cfg.ChannelIDs,
		Assembler:  assembler,
		Marks:      data.NewMarkStore(rdb, cfg.MarkTTL),
		Disclaimer: disclaimer,
		DB:         db,
		Metrics:    m,
	})

	return &Bot{
		consumer: cons,
		feed:     consumer.NewFeed(cfg.Token, cfg.Backoff, cons),
		server:   api.NewServer(cfg.HTTPAddr, cons, registry),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (b *Bot) Start() {
	b.server.Start()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.feed.Run(b.ctx)
	}()
}

func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("status server shutdown: %v", err)
	}
}
