package util

import (
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestSanitizeNonAlphanumeric(t *testing.T) {
	assert.Equal(t, "abc_def_", SanitizeNonAlphanumeric("abc:def?"))
	assert.Equal(t, "_", SanitizeNonAlphanumeric("\U0001F970"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "testfile")
	if err := os.WriteFile(file, []byte("hi there"), 0600); err != nil {
		t.Fatal(err)
	}
	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "not-a-file")))
}

func TestRandomString(t *testing.T) {
	s1 := RandomString(10)
	s2 := RandomString(10)
	assert.Len(t, s1, 10)
	assert.NotEqual(t, s1, s2)
}

func TestStringContainsWait(t *testing.T) {
	var mu sync.Mutex
	haystack := "nothing yet"
	go func() {
		time.Sleep(100 * time.Millisecond)
		mu.Lock()
		haystack = "hola a todos"
		mu.Unlock()
	}()
	haystackFn := func() string {
		mu.Lock()
		defer mu.Unlock()
		return haystack
	}
	assert.True(t, StringContainsWait(haystackFn, "todos", time.Second))
	assert.False(t, StringContainsWait(haystackFn, "wikibot", 100*time.Millisecond))
}
