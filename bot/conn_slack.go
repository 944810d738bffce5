package bot

import (
	"context"
	"errors"
	"fmt"
	"github.com/freecodecampba/wikibot/config"
	"github.com/slack-go/slack"
	"log"
	"strings"
	"sync"
)

const (
	slackConversationsPageSize = 200
)

var (
	slackConversationTypes = []string{"public_channel", "private_channel", "im", "mpim"}
)

type slackConn struct {
	rtm       *slack.RTM
	config    *config.Config
	directory *memDirectory
	loaded    bool // directory was loaded at least once
	mu        sync.RWMutex
}

var _ directory = (*slackConn)(nil)

func newSlackConn(conf *config.Config) *slackConn {
	return &slackConn{
		config:    conf,
		directory: newMemDirectory(),
	}
}

func (c *slackConn) Connect(ctx context.Context) (<-chan event, error) {
	eventChan := make(chan event)
	rtm := slack.New(c.config.Token, slack.OptionDebug(c.config.Debug)).NewRTM()
	c.mu.Lock()
	c.rtm = rtm
	c.mu.Unlock()
	go rtm.ManageConnection()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-rtm.IncomingEvents:
				if ev := c.translateEvent(ctx, e); ev != nil {
					emit(ctx, eventChan, ev)
				}
			}
		}
	}()
	return eventChan, nil
}

func (c *slackConn) Send(ctx context.Context, channel string, message string) error {
	rtm := c.currentRTM()
	if rtm == nil {
		return &TransportError{Op: "post message", Err: errors.New("not connected")}
	}
	_, _, err := rtm.PostMessageContext(ctx, channel, slack.MsgOptionText(message, false), slack.MsgOptionAsUser(true))
	if err != nil {
		return &TransportError{Op: "post message", Err: err}
	}
	return nil
}

func (c *slackConn) Directory() directory {
	return c
}

// UserName looks up the user in the local directory, and asks Slack if it is not there
func (c *slackConn) UserName(userID string) (string, error) {
	if name, err := c.directory.UserName(userID); err == nil {
		return name, nil
	}
	rtm := c.currentRTM()
	if rtm == nil {
		return "", &LookupError{Kind: lookupKindUser, Key: userID}
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.config.SendTimeout)
	defer cancel()
	user, err := rtm.GetUserInfoContext(ctx, userID)
	if err != nil || user == nil {
		return "", &LookupError{Kind: lookupKindUser, Key: userID}
	}
	c.directory.SetUser(user.ID, user.Name)
	return user.Name, nil
}

// ChannelName looks up the conversation in the local directory, and asks Slack if it is not there.
// Conversations opened after the directory was loaded are found this way.
func (c *slackConn) ChannelName(channelID string) (string, error) {
	if name, err := c.directory.ChannelName(channelID); err == nil {
		return name, nil
	}
	rtm := c.currentRTM()
	if rtm == nil {
		return "", &LookupError{Kind: lookupKindChannel, Key: channelID}
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.config.SendTimeout)
	defer cancel()
	ch, err := rtm.GetConversationInfoContext(ctx, channelID, false)
	if err != nil || ch == nil {
		return "", &LookupError{Kind: lookupKindChannel, Key: channelID}
	}
	name := slackChannelName(ch)
	c.directory.SetChannel(ch.ID, name)
	return name, nil
}

func (c *slackConn) UserID(name string) (string, error) {
	return c.directory.UserID(name)
}

func (c *slackConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rtm == nil {
		return nil
	}
	return c.rtm.Disconnect()
}

func (c *slackConn) translateEvent(ctx context.Context, event slack.RTMEvent) event {
	switch ev := event.Data.(type) {
	case *slack.ConnectedEvent:
		return c.handleConnectedEvent(ctx, ev)
	case *slack.HelloEvent:
		return &openEvent{}
	case *slack.MessageEvent:
		return c.handleMessageEvent(ev)
	case *slack.UserChangeEvent:
		c.directory.SetUser(ev.User.ID, ev.User.Name)
		return nil
	case *slack.TeamJoinEvent:
		c.directory.SetUser(ev.User.ID, ev.User.Name)
		return nil
	case *slack.ChannelCreatedEvent:
		c.directory.SetChannel(ev.Channel.ID, slackCreatedChannelName(&ev.Channel))
		return nil
	case *slack.ChannelRenameEvent:
		c.directory.SetChannel(ev.Channel.ID, ev.Channel.Name)
		return nil
	case *slack.ChannelJoinedEvent:
		c.directory.SetChannel(ev.Channel.ID, slackChannelName(&ev.Channel))
		return nil
	case *slack.GroupJoinedEvent:
		c.directory.SetChannel(ev.Channel.ID, slackChannelName(&ev.Channel))
		return nil
	case *slack.IMCreatedEvent:
		c.directory.SetChannel(ev.Channel.ID, slackCreatedChannelName(&ev.Channel))
		return nil
	case *slack.LatencyReport:
		return c.handleLatencyReportEvent(ev)
	case *slack.RTMError:
		return c.handleErrorEvent(ev)
	case *slack.ConnectionErrorEvent:
		return c.handleErrorEvent(ev)
	case *slack.InvalidAuthEvent:
		return &errorEvent{errors.New("invalid credentials")}
	default:
		return nil // Ignore other events
	}
}

func (c *slackConn) handleMessageEvent(ev *slack.MessageEvent) event {
	return &messageEvent{
		ID:          ev.Timestamp,
		Type:        ev.Type,
		Channel:     ev.Channel,
		ChannelType: c.channelType(ev.Channel),
		Thread:      ev.ThreadTimestamp,
		User:        ev.User,
		Message:     ev.Text,
	}
}

// handleConnectedEvent (re-)loads the directory. It is called on every (re-)connect. Only the
// first load is required to succeed; if a reload fails, the previous directory is kept.
func (c *slackConn) handleConnectedEvent(ctx context.Context, ev *slack.ConnectedEvent) event {
	if err := c.loadDirectory(ctx); err != nil {
		if !c.directoryLoaded() {
			return &errorEvent{fmt.Errorf("cannot load directory: %w", err)}
		}
		log.Printf("warning: cannot reload directory, keeping %d user(s) and %d channel(s) from previous load: %s",
			c.directory.Users(), c.directory.Channels(), err.Error())
	} else {
		c.mu.Lock()
		c.loaded = true
		c.mu.Unlock()
	}
	start := &startEvent{}
	if ev.Info != nil && ev.Info.User != nil {
		start.UserID = ev.Info.User.ID
		start.UserName = ev.Info.User.Name
	}
	log.Printf("Slack connected as user %s/%s, %d user(s) and %d channel(s) in directory",
		start.UserName, start.UserID, c.directory.Users(), c.directory.Channels())
	return start
}

func (c *slackConn) loadDirectory(ctx context.Context) error {
	rtm := c.currentRTM()
	users, err := rtm.GetUsersContext(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		c.directory.SetUser(user.ID, user.Name)
	}
	cursor := ""
	for {
		channels, nextCursor, err := rtm.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Cursor: cursor,
			Limit:  slackConversationsPageSize,
			Types:  slackConversationTypes,
		})
		if err != nil {
			return err
		}
		for i := range channels {
			c.directory.SetChannel(channels[i].ID, slackChannelName(&channels[i]))
		}
		if nextCursor == "" {
			return nil
		}
		cursor = nextCursor
	}
}

func (c *slackConn) handleErrorEvent(err error) event {
	log.Printf("Error: %s\n", err.Error())
	return nil
}

func (c *slackConn) handleLatencyReportEvent(ev *slack.LatencyReport) event {
	if c.config.Debug {
		log.Printf("Current latency: %v\n", ev.Value)
	}
	return nil
}

func (c *slackConn) channelType(ch string) channelType {
	if strings.HasPrefix(ch, "C") || strings.HasPrefix(ch, "G") {
		return channelTypeChannel
	} else if strings.HasPrefix(ch, "D") {
		return channelTypeDM
	}
	return channelTypeUnknown
}

// slackChannelName returns the display name of a conversation; direct message
// conversations have no name, so their ID is used
func slackChannelName(ch *slack.Channel) string {
	if ch.Name == "" {
		return ch.ID
	}
	return ch.Name
}

// slackCreatedChannelName is like slackChannelName, for channel and IM creation events
func slackCreatedChannelName(ch *slack.ChannelCreatedInfo) string {
	if ch.Name == "" {
		return ch.ID
	}
	return ch.Name
}

func (c *slackConn) currentRTM() *slack.RTM {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rtm
}

func (c *slackConn) directoryLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
