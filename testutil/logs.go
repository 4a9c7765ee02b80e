package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/reactive/logger"
)

// LogBuffer collects the JSON log lines of one component.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Contains reports whether any log line contains s.
func (b *LogBuffer) Contains(s string) bool {
	return strings.Contains(b.String(), s)
}

// CaptureLogs pins a debug-level logger writing to the returned buffer for
// the named component until the test ends. Loggers resolved before the call
// keep writing where they did.
func CaptureLogs(tb testing.TB, component string) *LogBuffer {
	tb.Helper()
	b := &LogBuffer{}
	logger.Register(component, logger.NewWriter(b, "debug").WithComponent(component))
	tb.Cleanup(func() { logger.Unregister(component) })
	return b
}
