// Package consumer runs the supervisory loop around the live message feed:
// pre-filter, idempotency, assembly, posting, and restart-on-fault.
package consumer

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lorekeep/iris/src/iris/data"
	"github.com/lorekeep/iris/src/iris/metrics"
	"github.com/lorekeep/iris/src/iris/types"
	"gorm.io/gorm"
)

// State is the consumer lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnected
	StateConsuming
	StateFaulted
	StateBackoffWait
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateConsuming:
		return "consuming"
	case StateFaulted:
		return "faulted"
	case StateBackoffWait:
		return "backoff_wait"
	default:
		return "unknown"
	}
}

// Message is the consumer's view of one feed message. AuthorID is empty when
// the author is absent (deleted account, system message).
type Message struct {
	ID         string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Body       string
}

// Assembler builds a reply body for a message. An empty body means nothing
// to send.
type Assembler interface {
	Assemble(ctx context.Context, messageBody string) (body string, terms []string)
}

// Poster posts a reply to a message.
type Poster interface {
	Reply(ctx context.Context, msg Message, body string) error
}

// Marks is the idempotency marker store.
type Marks interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	MarkOnce(ctx context.Context, messageID string) (bool, error)
}

type Config struct {
	SelfID     string
	ChannelIDs []string
	Assembler  Assembler
	Poster     Poster
	Marks      Marks
	Disclaimer string
	DB         *gorm.DB
	Metrics    *metrics.Metrics
}

// Consumer processes feed messages sequentially, one fully handled before
// the next is considered.
type Consumer struct {
	config   Config
	channels map[string]bool
	state    atomic.Int32
	cycleID  atomic.Value
}

func New(config Config) *Consumer {
	c := &Consumer{config: config}
	if len(config.ChannelIDs) > 0 {
		c.channels = make(map[string]bool, len(config.ChannelIDs))
		for _, id := range config.ChannelIDs {
			c.channels[id] = true
		}
	}
	c.cycleID.Store("")
	return c
}

// State returns the current lifecycle state.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// CycleID identifies the current connection cycle, for logs and /status.
func (c *Consumer) CycleID() string {
	id, _ := c.cycleID.Load().(string)
	return id
}

func (c *Consumer) setState(s State) {
	c.state.Store(int32(s))
}

// SetSelfID records the bot's own identity once the session is open.
func (c *Consumer) SetSelfID(id string) {
	c.config.SelfID = id
}

// SetPoster binds the reply sink for the current connection cycle.
func (c *Consumer) SetPoster(p Poster) {
	c.config.Poster = p
}

// Handle processes one message end to end. All per-message failures are
// absorbed here; nothing Handle does can fault the feed.
func (c *Consumer) Handle(ctx context.Context, msg Message) {
	m := c.config.Metrics

	// A panic anywhere in the pipeline is a per-message failure, not a
	// process fault; the next message must still be handled.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic handling message %s: %v", msg.ID, r)
			c.skip(m, "panic")
		}
	}()

	if m != nil {
		m.MessagesSeen.Inc()
	}

	if c.channels != nil && !c.channels[msg.ChannelID] {
		c.skip(m, "channel")
		return
	}

	// Fewer than two delimiters cannot contain a complete term pair.
	if strings.Count(msg.Body, "`") < 2 {
		c.skip(m, "delimiters")
		return
	}

	if msg.AuthorID == "" {
		c.skip(m, "no_author")
		return
	}

	if msg.AuthorID == c.config.SelfID {
		c.skip(m, "self")
		return
	}

	seen, err := c.config.Marks.Seen(ctx, msg.ID)
	if err != nil {
		// Without the marker we cannot rule out a duplicate reply, so we
		// prefer a missed one.
		log.Printf("mark check for %s: %v", msg.ID, err)
		c.skip(m, "mark_error")
		return
	}
	if seen {
		c.skip(m, "processed")
		return
	}

	// Commit point: marked before any reply work, so a crash from here on
	// can lose this reply but never duplicate it.
	first, err := c.config.Marks.MarkOnce(ctx, msg.ID)
	if err != nil {
		log.Printf("mark for %s: %v", msg.ID, err)
		c.skip(m, "mark_error")
		return
	}
	if !first {
		c.skip(m, "processed")
		return
	}

	if m != nil {
		m.MessagesProcessed.Inc()
	}

	body, terms := c.config.Assembler.Assemble(ctx, msg.Body)
	if body == "" {
		return
	}
	body += c.config.Disclaimer

	if err := c.config.Poster.Reply(ctx, msg, body); err != nil {
		// Already marked processed; not retried.
		if isRateLimit(err) {
			log.Printf("reply to %s rate limited: %v", msg.ID, err)
		} else {
			log.Printf("reply to %s failed: %v", msg.ID, err)
		}
		return
	}

	if m != nil {
		m.RepliesPosted.Inc()
	}

	data.RecordReply(c.config.DB, types.ReplyLog{
		MessageID:  msg.ID,
		ChannelID:  msg.ChannelID,
		Author:     msg.AuthorName,
		Terms:      strings.Join(terms, ", "),
		EntryCount: strings.Count(body, "### ["),
		CreatedAt:  time.Now(),
	})

	log.Printf("Replied to %s in channel %s with lookup data", msg.AuthorName, msg.ChannelID)
}

func (c *Consumer) skip(m *metrics.Metrics, reason string) {
	if m != nil {
		m.MessagesSkipped.WithLabelValues(reason).Inc()
	}
}
