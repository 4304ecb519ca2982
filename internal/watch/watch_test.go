package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresFiles(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}

func TestNewRejectsMixedDirectories(t *testing.T) {
	a := filepath.Join(t.TempDir(), "a.db")
	b := filepath.Join(t.TempDir(), "b.db")
	_, err := New(0, a, b)
	assert.Error(t, err)
}

func TestRunCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "skinlog.db")
	other := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0600))

	w, err := New(50*time.Millisecond, target, target+"-wal")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { calls <- struct{}{} })
	}()

	// Give the watcher a moment to settle before writing.
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0600))
	}

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change callback")
	}

	// Writes to files outside the set are ignored.
	time.Sleep(150 * time.Millisecond)
	drain(calls)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0600))
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, calls, 0)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func drain(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
