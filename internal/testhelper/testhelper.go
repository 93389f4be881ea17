// Package testhelper provides shared helpers for revd's tests.
package testhelper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gitlab.com/revstore/revd/internal/helper/perm"
	"gitlab.com/revstore/revd/internal/log"
)

// Run sets up required testing state and executes the test suite. Goroutine
// leaks fail the suite.
func Run(m *testing.M) int {
	defer mustHaveNoGoroutines()

	return m.Run()
}

func mustHaveNoGoroutines() {
	if err := goleak.Find(
		// The HTTP server's graceful shutdown may leave the keep-alive
		// poller running briefly after Shutdown returns.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	); err != nil {
		panic(err)
	}
}

// Context returns a context that is canceled when the test finishes.
func Context(tb testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx
}

// NewLogger returns a logger suitable for tests. It discards all output.
func NewLogger(tb testing.TB) log.Logger {
	return log.NewNopLogger()
}

// WriteFiles writes the given files below root. The map keys are paths
// relative to root; parent directories are created as needed.
func WriteFiles(tb testing.TB, root string, files map[string]string) {
	tb.Helper()

	for relativePath, content := range files {
		path := filepath.Join(root, relativePath)
		require.NoError(tb, os.MkdirAll(filepath.Dir(path), perm.SharedDir))
		require.NoError(tb, os.WriteFile(path, []byte(content), perm.SharedFile))
	}
}
