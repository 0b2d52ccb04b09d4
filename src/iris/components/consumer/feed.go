package consumer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// feedBuffer bounds the handoff between the gateway reader and the single
// sequential worker. Overflow drops the message rather than stalling the
// gateway.
const feedBuffer = 1024

var errDisconnected = errors.New("gateway disconnected")

// Feed owns the Discord session for the lifetime of one connection cycle and
// drives the consumer's restart loop.
type Feed struct {
	token    string
	backoff  time.Duration
	consumer *Consumer
}

func NewFeed(token string, backoff time.Duration, c *Consumer) *Feed {
	return &Feed{token: token, backoff: backoff, consumer: c}
}

// Run cycles Idle -> Connected -> Consuming until ctx is cancelled. A feed
// fault tears the session down and reconnects after a fixed backoff; there
// is no retry limit, the loop runs forever.
func (f *Feed) Run(ctx context.Context) {
	for {
		f.consumer.setState(StateIdle)

		cycle := uuid.NewString()[:8]
		f.consumer.cycleID.Store(cycle)

		err := f.runCycle(ctx, cycle)
		if ctx.Err() != nil {
			return
		}

		f.consumer.setState(StateFaulted)
		if m := f.consumer.config.Metrics; m != nil {
			m.FeedFaults.Inc()
		}
		log.Printf("[cycle %s] feed fault: %v", cycle, err)

		f.consumer.setState(StateBackoffWait)
		log.Printf("[cycle %s] restarting in %s", cycle, f.backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(f.backoff):
		}
	}
}

func (f *Feed) runCycle(ctx context.Context, cycle string) error {
	session, err := discordgo.New("Bot " + f.token)
	if err != nil {
		return err
	}

	// The restart loop owns reconnection; the library must not race it.
	session.ShouldReconnectOnError = false
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	msgs := make(chan Message, feedBuffer)
	faults := make(chan error, 1)

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		select {
		case msgs <- fromDiscord(m):
		default:
			log.Printf("[cycle %s] feed buffer full, dropping message %s", cycle, m.ID)
		}
	})
	session.AddHandler(func(s *discordgo.Session, d *discordgo.Disconnect) {
		select {
		case faults <- errDisconnected:
		default:
		}
	})

	if err := session.Open(); err != nil {
		return err
	}
	defer session.Close()

	f.consumer.setState(StateConnected)
	f.consumer.SetSelfID(session.State.User.ID)
	f.consumer.SetPoster(&DiscordPoster{Session: session})
	log.Printf("[cycle %s] connected as %s", cycle, session.State.User.Username)

	f.consumer.setState(StateConsuming)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-faults:
			return err
		case msg := <-msgs:
			f.consumer.Handle(ctx, msg)
		}
	}
}

func fromDiscord(m *discordgo.MessageCreate) Message {
	msg := Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Body:      m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
	}
	return msg
}

// DiscordPoster posts replies through an open session.
type DiscordPoster struct {
	Session *discordgo.Session
}

func (p *DiscordPoster) Reply(ctx context.Context, msg Message, body string) error {
	_, err := p.Session.ChannelMessageSendReply(msg.ChannelID, body, &discordgo.MessageReference{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
	})
	return err
}
