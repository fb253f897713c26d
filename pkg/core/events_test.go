package core_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notaspat/notaspat/pkg/core"
)

func TestBroadcaster_OrderPreserved(t *testing.T) {
	bc := core.NewBroadcaster(16)
	defer bc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := bc.Subscribe(ctx)

	for i := 0; i < 10; i++ {
		bc.Publish([]core.Change{{Key: fmt.Sprintf("note_%d", i)}})
	}

	for i := 0; i < 10; i++ {
		select {
		case batch := <-stream:
			require.Len(t, batch, 1)
			assert.Equal(t, fmt.Sprintf("note_%d", i), batch[0].Key)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for batch %d", i)
		}
	}
}

func TestBroadcaster_Decoupling(t *testing.T) {
	// A subscriber that never reads must not block the publisher while the
	// buffer has room.
	bc := core.NewBroadcaster(5)
	defer bc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = bc.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			bc.Publish([]core.Change{{Key: "note_1"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a buffered subscriber")
	}
}

func TestBroadcaster_CancelledSubscriberDropped(t *testing.T) {
	bc := core.NewBroadcaster(1)
	defer bc.Close()

	subCtx, subCancel := context.WithCancel(context.Background())
	stream := bc.Subscribe(subCtx)
	subCancel()

	// Publishing after cancellation must close the channel, not hang.
	bc.Publish([]core.Change{{Key: "note_1", New: json.RawMessage(`{}`)}})
	bc.Publish([]core.Change{{Key: "note_2"}})

	select {
	case _, ok := <-stream:
		if ok {
			// First batch may still land depending on timing; the channel
			// must close right after.
			_, ok = <-stream
			assert.False(t, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber channel never closed")
	}
}

func TestBroadcaster_CloseEndsSubscriptions(t *testing.T) {
	bc := core.NewBroadcaster(1)
	stream := bc.Subscribe(context.Background())
	bc.Close()

	_, ok := <-stream
	assert.False(t, ok)

	// Publish and Subscribe after Close are safe no-ops.
	bc.Publish([]core.Change{{Key: "note_1"}})
	_, ok = <-bc.Subscribe(context.Background())
	assert.False(t, ok)
}

func TestBroadcaster_EmptyBatchIgnored(t *testing.T) {
	bc := core.NewBroadcaster(1)
	defer bc.Close()

	stream := bc.Subscribe(context.Background())
	bc.Publish(nil)

	select {
	case <-stream:
		t.Fatal("empty batch must not be delivered")
	case <-time.After(50 * time.Millisecond):
	}
}
