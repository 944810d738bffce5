package bot

import (
	"errors"
	"fmt"
)

var (
	errIdentityUnresolved = errors.New("cannot resolve bot identity, bot user not found in directory")
	errUnexpectedEnd      = errors.New("unexpected end of incoming events stream")
)

// Kinds of directory entries, used in LookupError
const (
	lookupKindUser    = "user"
	lookupKindChannel = "channel"
)

// LookupError is returned if a user or channel cannot be found in the directory
type LookupError struct {
	Kind string
	Key  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %s not found in directory", e.Kind, e.Key)
}

// TransportError wraps failures of the underlying chat platform connection
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
