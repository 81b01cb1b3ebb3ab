package scenario

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/cardlinks/internal/testutil"
)

func TestWatch_ReportsChangedFile(t *testing.T) {
	path := testutil.TempFile(t, "watched.yaml", validDoc)
	other := filepath.Join(filepath.Dir(path), "other.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var changed []string
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{path}, testutil.Logger(), func(p string) {
			mu.Lock()
			changed = append(changed, p)
			mu.Unlock()
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte(validDoc+"\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(validDoc+"\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(validDoc+"\n\n"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{path}, changed, "writes in one burst are reported once")
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), []string{"/nonexistent-cardlinks-dir/s.yaml"}, testutil.Logger(), func(string) {})
	assert.Error(t, err)
}
