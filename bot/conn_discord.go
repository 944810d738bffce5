package bot

import (
	"context"
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/freecodecampba/wikibot/config"
	"log"
	"sync"
)

type discordConn struct {
	config    *config.Config
	session   *discordgo.Session
	directory *memDirectory
	mu        sync.RWMutex
}

var _ directory = (*discordConn)(nil)

func newDiscordConn(conf *config.Config) *discordConn {
	return &discordConn{
		config:    conf,
		directory: newMemDirectory(),
	}
}

func (c *discordConn) Connect(ctx context.Context) (<-chan event, error) {
	discord, err := c.newSession()
	if err != nil {
		return nil, err
	}
	eventChan := make(chan event)
	emitIfNotNil := func(ev event) {
		if ev != nil {
			emit(ctx, eventChan, ev)
		}
	}
	discord.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		emitIfNotNil(c.handleReadyEvent(r))
	})
	discord.AddHandler(func(s *discordgo.Session, _ *discordgo.Connect) {
		emit(ctx, eventChan, &openEvent{})
	})
	discord.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		emitIfNotNil(c.translateMessageEvent(m))
	})
	discord.AddHandler(func(s *discordgo.Session, ch *discordgo.ChannelCreate) {
		c.addChannel(ch.Channel)
	})
	discord.AddHandler(func(s *discordgo.Session, ch *discordgo.ChannelUpdate) {
		c.addChannel(ch.Channel)
	})
	c.mu.Lock()
	c.session = discord
	c.mu.Unlock()
	if err := discord.Open(); err != nil {
		return nil, err
	}
	return eventChan, nil
}

// newSession creates a session that is not yet connected. REST calls do not take a context,
// so the send timeout is applied to the session's HTTP client.
func (c *discordConn) newSession() (*discordgo.Session, error) {
	discord, err := discordgo.New(fmt.Sprintf("Bot %s", c.config.Token))
	if err != nil {
		return nil, err
	}
	if c.config.Debug {
		discord.LogLevel = discordgo.LogDebug
	}
	discord.Client.Timeout = c.config.SendTimeout
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages
	return discord, nil
}

func (c *discordConn) Send(ctx context.Context, channel string, message string) error {
	session := c.currentSession()
	if session == nil {
		return &TransportError{Op: "send message", Err: errors.New("not connected")}
	} else if err := ctx.Err(); err != nil {
		return &TransportError{Op: "send message", Err: err}
	}
	if _, err := session.ChannelMessageSend(channel, message); err != nil {
		return &TransportError{Op: "send message", Err: err}
	}
	return nil
}

func (c *discordConn) Directory() directory {
	return c
}

// UserName looks up the user in the local directory, and asks Discord if it is not there
func (c *discordConn) UserName(userID string) (string, error) {
	if name, err := c.directory.UserName(userID); err == nil {
		return name, nil
	}
	session := c.currentSession()
	if session == nil {
		return "", &LookupError{Kind: lookupKindUser, Key: userID}
	}
	user, err := session.User(userID)
	if err != nil || user == nil {
		return "", &LookupError{Kind: lookupKindUser, Key: userID}
	}
	c.directory.SetUser(user.ID, user.Username)
	return user.Username, nil
}

// ChannelName looks up the channel in the local directory, then in the session state, and
// finally asks Discord
func (c *discordConn) ChannelName(channelID string) (string, error) {
	if name, err := c.directory.ChannelName(channelID); err == nil {
		return name, nil
	}
	session := c.currentSession()
	if session == nil {
		return "", &LookupError{Kind: lookupKindChannel, Key: channelID}
	}
	ch, err := session.State.Channel(channelID)
	if err != nil {
		ch, err = session.Channel(channelID)
		if err != nil {
			return "", &LookupError{Kind: lookupKindChannel, Key: channelID}
		}
	}
	c.addChannel(ch)
	return discordChannelName(ch), nil
}

func (c *discordConn) UserID(name string) (string, error) {
	return c.directory.UserID(name)
}

func (c *discordConn) Close() error {
	session := c.currentSession()
	if session == nil {
		return nil
	}
	return session.Close()
}

func (c *discordConn) handleReadyEvent(r *discordgo.Ready) event {
	if r.User == nil || r.User.ID == "" {
		return &errorEvent{errors.New("missing user info in ready event")}
	}
	c.directory.SetUser(r.User.ID, r.User.Username)
	for _, ch := range r.PrivateChannels {
		c.addChannel(ch)
	}
	for _, guild := range r.Guilds {
		for _, ch := range guild.Channels {
			c.addChannel(ch)
		}
		for _, member := range guild.Members {
			if member.User != nil {
				c.directory.SetUser(member.User.ID, member.User.Username)
			}
		}
	}
	log.Printf("Discord connected as user %s/%s", r.User.Username, r.User.ID)
	return &startEvent{UserID: r.User.ID, UserName: r.User.Username}
}

func (c *discordConn) translateMessageEvent(m *discordgo.MessageCreate) event {
	if m.Author == nil {
		return nil
	}
	c.directory.SetUser(m.Author.ID, m.Author.Username)
	return &messageEvent{
		ID:          m.ID,
		Type:        discordMessageType(m.Type),
		Channel:     m.ChannelID,
		ChannelType: c.channelType(m),
		User:        m.Author.ID,
		Message:     m.Content,
	}
}

func (c *discordConn) addChannel(ch *discordgo.Channel) {
	if ch != nil {
		c.directory.SetChannel(ch.ID, discordChannelName(ch))
	}
}

func (c *discordConn) channelType(m *discordgo.MessageCreate) channelType {
	if m.GuildID == "" {
		return channelTypeDM
	}
	return channelTypeChannel
}

func (c *discordConn) currentSession() *discordgo.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func discordMessageType(t discordgo.MessageType) string {
	if t == discordgo.MessageTypeDefault {
		return messageEventType
	}
	return fmt.Sprintf("discord_%d", t)
}

// discordChannelName returns the display name of a channel; private channels
// have no name, so their ID is used
func discordChannelName(ch *discordgo.Channel) string {
	if ch.Name == "" {
		return ch.ID
	}
	return ch.Name
}
