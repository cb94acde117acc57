package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		panic("unreachable")
	}
}

func TestWatch_EmitsInitialSnapshot(t *testing.T) {
	notifier := NewNotifier()
	out, cancel := Watch(context.Background(), notifier, func() ([]string, error) {
		return []string{"a"}, nil
	})
	defer cancel()

	assert.Equal(t, []string{"a"}, receive(t, out))
}

func TestWatch_EmitsAfterEveryNotify(t *testing.T) {
	notifier := NewNotifier()
	var mu sync.Mutex
	state := []string{"a"}

	out, cancel := Watch(context.Background(), notifier, func() ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		snapshot := make([]string, len(state))
		copy(snapshot, state)
		return snapshot, nil
	})
	defer cancel()

	assert.Equal(t, []string{"a"}, receive(t, out))

	mu.Lock()
	state = append(state, "b")
	mu.Unlock()
	notifier.Notify()

	assert.Equal(t, []string{"a", "b"}, receive(t, out))
}

func TestWatch_CancelClosesChannel(t *testing.T) {
	notifier := NewNotifier()
	out, cancel := Watch(context.Background(), notifier, func() (int, error) {
		return 1, nil
	})

	receive(t, out)
	cancel()

	select {
	case _, ok := <-out:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Subscription is removed so later writes go nowhere.
	assert.Eventually(t, func() bool {
		return notifier.SubscriberCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_QueryErrorKeepsStreamAlive(t *testing.T) {
	notifier := NewNotifier()
	var mu sync.Mutex
	fail := true

	out, cancel := Watch(context.Background(), notifier, func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return "", errors.New("boom")
		}
		return "recovered", nil
	})
	defer cancel()

	mu.Lock()
	fail = false
	mu.Unlock()
	notifier.Notify()

	assert.Equal(t, "recovered", receive(t, out))
}

func TestNotifier_NotifyDoesNotBlockWithoutReaders(t *testing.T) {
	notifier := NewNotifier()
	_, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			notifier.Notify()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked")
	}
}

func TestNotifier_UnsubscribeIsIdempotent(t *testing.T) {
	notifier := NewNotifier()
	_, unsubscribe := notifier.Subscribe()

	unsubscribe()
	unsubscribe()

	assert.Equal(t, 0, notifier.SubscriberCount())
}
