package bot

import (
	"context"
	"github.com/freecodecampba/wikibot/config"
	"github.com/freecodecampba/wikibot/util"
	"log"
	"strconv"
	"sync"
	"time"
)

type memConn struct {
	config    *config.Config
	eventChan chan event
	directory *memDirectory
	messages  map[string]*messageEvent
	currentID int
	sendErr   error
	mu        sync.RWMutex
}

func newMemConn(conf *config.Config) *memConn {
	return &memConn{
		config:    conf,
		eventChan: make(chan event, 10),
		directory: newMemDirectory(),
		messages:  make(map[string]*messageEvent),
		currentID: 0,
	}
}

func (c *memConn) Connect(ctx context.Context) (<-chan event, error) {
	return c.eventChan, nil
}

func (c *memConn) Send(ctx context.Context, channel string, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return &TransportError{Op: "send", Err: c.sendErr}
	}
	c.currentID++
	c.messages[strconv.Itoa(c.currentID)] = &messageEvent{
		ID:      strconv.Itoa(c.currentID),
		Type:    messageEventType,
		Channel: channel,
		Message: message,
	}
	return nil
}

func (c *memConn) Directory() directory {
	return c.directory
}

func (c *memConn) Close() error {
	return nil
}

func (c *memConn) Event(e event) {
	c.eventChan <- e
}

func (c *memConn) AddUser(userID, name string) {
	c.directory.SetUser(userID, name)
}

func (c *memConn) AddChannel(channelID, name string) {
	c.directory.SetChannel(channelID, name)
}

// FailSends makes all following sends fail with the given error, or succeed again if err is nil
func (c *memConn) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

func (c *memConn) Message(id string) messageEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.messages[id]
	if !ok {
		return messageEvent{}
	}
	return *m // copy!
}

func (c *memConn) MessageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

func (c *memConn) MessageContainsWait(id string, needle string) (contains bool) {
	haystackFn := func() string {
		c.mu.Lock()
		defer c.mu.Unlock()
		m, ok := c.messages[id]
		if !ok {
			return ""
		}
		return m.Message
	}
	return util.StringContainsWait(haystackFn, needle, time.Second)
}

func (c *memConn) LogMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	log.Printf("Messages:")
	for k, m := range c.messages {
		log.Printf("- %s: %s", k, m.Message)
	}
}
