package bot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/freecodecampba/wikibot/config"
	"github.com/freecodecampba/wikibot/util"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	sockChannel     = "main"
	sockDefaultUser = "default"
)

// sockConn is a local connection over a Unix socket, to try out the bot without a chat platform.
// Connect to it with 'nc -U <socket>'; every connected client is a user in the "main" channel.
type sockConn struct {
	config    *config.Config
	directory *memDirectory
	conns     map[string]net.Conn
	sock      string
	listener  net.Listener
	messageID int64
	mu        sync.RWMutex
}

func newSockConn(conf *config.Config) *sockConn {
	return &sockConn{
		config:    conf,
		directory: newMemDirectory(),
		conns:     make(map[string]net.Conn),
	}
}

func (c *sockConn) Connect(ctx context.Context) (<-chan event, error) {
	c.sock = c.config.SocketFile()
	if c.sock == "" {
		c.sock = fmt.Sprintf("%s/wikibot%s.sock", os.TempDir(), util.RandomString(5))
	}
	listener, err := net.Listen("unix", c.sock)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.listener = listener
	c.mu.Unlock()
	c.directory.SetUser(c.config.Name, c.config.Name)
	c.directory.SetChannel(sockChannel, sockChannel)
	eventChan := make(chan event)
	go c.shutdownListener(ctx)
	go func() {
		emit(ctx, eventChan, &startEvent{UserID: c.config.Name, UserName: c.config.Name})
		emit(ctx, eventChan, &openEvent{})
		c.handleConns(ctx, listener, eventChan)
	}()
	log.Printf("Test socket connection ready. Run 'nc -U %s' to connect locally.", c.sock)
	return eventChan, nil
}

func (c *sockConn) Send(ctx context.Context, channel string, message string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for user, conn := range c.conns {
		if _, err := io.WriteString(conn, fmt.Sprintf("%s\n%s> ", message, user)); err != nil {
			log.Printf("cannot send to user %s: %s", user, err.Error())
		}
	}
	return nil
}

func (c *sockConn) Directory() directory {
	return c.directory
}

func (c *sockConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener == nil {
		return nil
	}
	err := c.listener.Close()
	c.listener = nil
	os.Remove(c.sock)
	return err
}

func (c *sockConn) shutdownListener(ctx context.Context) {
	<-ctx.Done()
	if err := c.Close(); err != nil {
		log.Printf("cannot close socket: %s", err.Error())
	}
}

func (c *sockConn) handleConns(ctx context.Context, listener net.Listener, eventChan chan event) {
	for {
		conn, err := listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		} else if err != nil {
			log.Printf("err accepting: %s", err.Error())
			continue
		}
		go func() {
			if err := c.handleConn(ctx, conn, eventChan); err != nil {
				log.Printf("connection error: %s", err)
			}
		}()
	}
}

func (c *sockConn) handleConn(ctx context.Context, conn net.Conn, eventChan chan event) error {
	defer conn.Close()
	rd := bufio.NewReader(conn)
	if _, err := io.WriteString(conn, "Username (default)> "); err != nil {
		return err
	}
	line, err := rd.ReadString('\n')
	if err != nil {
		return err
	}
	user := util.SanitizeNonAlphanumeric(strings.TrimSpace(line))
	if user == "" {
		user = sockDefaultUser
	}
	c.mu.Lock()
	if _, ok := c.conns[user]; ok || user == c.config.Name {
		c.mu.Unlock()
		_, err := io.WriteString(conn, "Username taken, choose different name.\n")
		return err
	}
	c.conns[user] = conn
	c.mu.Unlock()
	c.directory.SetUser(user, user)
	log.Printf("User %s connected", user)

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.conns, user)
		log.Printf("User %s disconnected", user)
	}()

	if _, err := io.WriteString(conn, fmt.Sprintf("%s> ", user)); err != nil {
		return err
	}
	for {
		line, err := rd.ReadString('\n')
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		emit(ctx, eventChan, &messageEvent{
			ID:          strconv.FormatInt(atomic.AddInt64(&c.messageID, 1), 10),
			Type:        messageEventType,
			Channel:     sockChannel,
			ChannelType: channelTypeChannel,
			User:        user,
			Message:     strings.TrimSpace(line),
		})
	}
}
