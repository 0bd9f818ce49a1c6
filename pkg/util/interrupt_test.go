package util

import (
	"context"
	"testing"
	"time"
)

func TestInterruptContextFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := InterruptContext(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected context to be cancelled with its parent")
	}
}
