// Package util is a collection of helpers shared by the bot and the CLI
package util

import (
	"math/rand"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

var (
	random                       = rand.New(rand.NewSource(time.Now().UnixNano()))
	randomMutex                  = sync.Mutex{}
	charsetRandomID              = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	nonAlphanumericCharsRegex    = regexp.MustCompile(`[^a-zA-Z0-9]`)
	stringContainsWaitPollPeriod = 50 * time.Millisecond
)

// NewRandom returns a new random source, seeded with the current time
func NewRandom() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// RandomString generates a random string with a given length
func RandomString(length int) string {
	return RandomStringWithCharset(length, charsetRandomID)
}

// RandomStringWithCharset returns a random string with a given length, using the defined charset
func RandomStringWithCharset(length int, charset string) string {
	randomMutex.Lock()
	defer randomMutex.Unlock()
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[random.Intn(len(charset))]
	}
	return string(b)
}

// SanitizeNonAlphanumeric replaces all non-alphanumeric characters with an underscore
func SanitizeNonAlphanumeric(s string) string {
	return nonAlphanumericCharsRegex.ReplaceAllString(s, "_")
}

// FileExists returns true if a file with the given filename exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// StringContainsWait polls haystackFn until the returned string contains needle, or until
// maxWait is reached. It is mostly useful in tests.
func StringContainsWait(haystackFn func() string, needle string, maxWait time.Duration) (contains bool) {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		if strings.Contains(haystackFn(), needle) {
			return true
		}
		time.Sleep(stringContainsWaitPollPeriod)
	}
	return strings.Contains(haystackFn(), needle)
}
