// Package bot connects to a chat platform and points people asking for learning resources to the wiki
package bot

import (
	"context"
	"fmt"
	"github.com/freecodecampba/wikibot/config"
	"github.com/freecodecampba/wikibot/util"
	"golang.org/x/sync/errgroup"
	"log"
	"sync"
)

// Bot is the main struct that provides wikibot
type Bot struct {
	config    *config.Config
	conn      conn
	responder *responder
	identity  *Identity
	pending   []*messageEvent // messages received before the identity was resolved
	ctx       context.Context
	cancelFn  context.CancelFunc
	mu        sync.RWMutex
}

// New creates a new wikibot instance using the given configuration
func New(conf *config.Config) (*Bot, error) {
	var conn conn
	switch conf.Platform() {
	case config.Slack:
		conn = newSlackConn(conf)
	case config.Discord:
		conn = newDiscordConn(conf)
	case config.Sock:
		conn = newSockConn(conf)
	case config.Mem:
		conn = newMemConn(conf)
	default:
		return nil, fmt.Errorf("invalid type: %s", conf.Platform())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		config:    conf,
		conn:      conn,
		responder: newResponder(util.NewRandom()),
		pending:   make([]*messageEvent, 0),
		ctx:       ctx,
		cancelFn:  cancel,
	}, nil
}

// Run runs the bot in the foreground indefinitely or until Stop is called.
// This method does not return unless there is an error, or if gracefully shut down via Stop.
func (b *Bot) Run() error {
	defer b.cancelFn()
	eventChan, err := b.conn.Connect(b.ctx)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(b.ctx)
	g.Go(func() error {
		return b.handleEvents(ctx, eventChan)
	})
	g.Go(func() error {
		return b.shutdownListener(ctx)
	})
	return g.Wait()
}

// Stop gracefully shuts down the bot, closing the connection to the chat platform
func (b *Bot) Stop() {
	b.cancelFn()
}

// Identity returns the bot's own identity, or nil if it has not been resolved yet
func (b *Bot) Identity() *Identity {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.identity
}

func (b *Bot) handleEvents(ctx context.Context, eventChan <-chan event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-eventChan:
			if !ok {
				return errUnexpectedEnd
			}
			if err := b.handleEvent(ev); err != nil {
				return err
			}
		}
	}
}

func (b *Bot) handleEvent(e event) error {
	switch ev := e.(type) {
	case *startEvent:
		return b.handleStartEvent(ev)
	case *openEvent:
		log.Printf("Wikibot connected to %s", b.config.Platform())
		return nil
	case *messageEvent:
		b.handleMessageEvent(ev)
		return nil
	case *errorEvent:
		return ev.Error
	default:
		return nil // Ignore other events
	}
}

// handleStartEvent resolves the bot identity on the first start event, and replays all messages
// that arrived before. Start events after a reconnect do not change the identity.
func (b *Bot) handleStartEvent(ev *startEvent) error {
	if identity := b.Identity(); identity != nil {
		log.Printf("Reconnected as user %s/%s", identity.Name, identity.UserID)
		return nil
	}
	identity, err := resolveIdentity(b.conn.Directory(), b.config.Name, ev.UserID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.identity = identity
	pending := b.pending
	b.pending = make([]*messageEvent, 0)
	b.mu.Unlock()
	log.Printf("Bot identity resolved as user %s/%s", identity.Name, identity.UserID)
	if len(pending) > 0 {
		log.Printf("Processing %d message(s) received before identity was resolved", len(pending))
	}
	for _, m := range pending {
		b.respond(identity, m)
	}
	return nil
}

func (b *Bot) handleMessageEvent(ev *messageEvent) {
	identity := b.Identity()
	if identity == nil {
		b.queue(ev)
		return
	}
	b.respond(identity, ev)
}

// queue holds back a message until the identity is resolved; without it, messages
// sent by the bot itself cannot be told apart. The oldest message is dropped if the queue is full.
func (b *Bot) queue(ev *messageEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) > 0 && len(b.pending) >= b.config.MaxPendingMessages {
		dropped := b.pending[0]
		b.pending = b.pending[1:]
		log.Printf("[message %s] Identity not resolved yet and queue full, dropping message", dropped.ID)
	}
	b.pending = append(b.pending, ev)
}

func (b *Bot) respond(identity *Identity, ev *messageEvent) {
	if !b.responder.ShouldRespond(ev, identity) {
		return
	}
	reply, err := b.responder.BuildReply(ev, b.conn.Directory())
	if err != nil {
		log.Printf("[message %s] Cannot reply: %s", ev.ID, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, b.config.SendTimeout)
	defer cancel()
	if err := b.conn.Send(ctx, reply.Channel, reply.Text); err != nil {
		log.Printf("[message %s] Cannot send reply to channel %s: %s", ev.ID, reply.ChannelName, err.Error())
		return
	}
	log.Printf("[message %s] Replied to user %s in channel %s", ev.ID, ev.User, reply.ChannelName)
}

func (b *Bot) shutdownListener(ctx context.Context) error {
	<-ctx.Done()
	log.Printf("Closing connection")
	if err := b.conn.Close(); err != nil {
		log.Printf("warning: cannot close connection: %s", err.Error())
	}
	return nil
}
