package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/phydrago/internal/config"
	"github.com/vk/phydrago/internal/registry"
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

// SetupAppTest creates a new app instance for system testing. It returns
// the log buffer and the buffer that receives stdout results.
func SetupAppTest(t *testing.T, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	logBuffer, resultBuffer := &SafeBuffer{}, &SafeBuffer{}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	testApp := NewApp(logBuffer, resultBuffer, cfg, loader, modules...)

	t.Cleanup(func() {
		if os.Getenv("PHYDRAGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer, resultBuffer
}
