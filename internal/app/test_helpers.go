package app

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/nodedge/nodedge/internal/config"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance logging at debug level into the
// returned buffer. modify may adjust the default configuration.
func SetupAppTest(t *testing.T, modify func(*config.Config), modules ...registry.Module) (*App, *SafeBuffer) {
	t.Helper()

	cfg := config.Default()
	cfg.LogLevel = "debug"
	if modify != nil {
		modify(&cfg)
	}

	logBuffer := &SafeBuffer{}
	testApp, err := NewApp(context.Background(), logBuffer, cfg, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, testApp.Close())
		if os.Getenv("NODEDGE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
