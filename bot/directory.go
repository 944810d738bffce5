package bot

import (
	"sync"
)

// directory is the registry of known users and channels of a connection
type directory interface {
	UserName(userID string) (string, error)
	ChannelName(channelID string) (string, error)
	UserID(name string) (string, error)
}

type memDirectory struct {
	users    map[string]string // user ID -> name
	channels map[string]string // channel ID -> name
	mu       sync.RWMutex
}

var _ directory = (*memDirectory)(nil)

func newMemDirectory() *memDirectory {
	return &memDirectory{
		users:    make(map[string]string),
		channels: make(map[string]string),
	}
}

func (d *memDirectory) UserName(userID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.users[userID]
	if !ok {
		return "", &LookupError{Kind: lookupKindUser, Key: userID}
	}
	return name, nil
}

func (d *memDirectory) ChannelName(channelID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.channels[channelID]
	if !ok {
		return "", &LookupError{Kind: lookupKindChannel, Key: channelID}
	}
	return name, nil
}

// UserID returns the ID of the user with the given name. If several users share
// the name, any one of them may be returned.
func (d *memDirectory) UserID(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for id, userName := range d.users {
		if userName == name {
			return id, nil
		}
	}
	return "", &LookupError{Kind: lookupKindUser, Key: name}
}

func (d *memDirectory) SetUser(userID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[userID] = name
}

func (d *memDirectory) SetChannel(channelID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[channelID] = name
}

func (d *memDirectory) Users() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

func (d *memDirectory) Channels() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.channels)
}
