package mq

import (
	"context"
	"testing"
)

func TestDetachOutlivesRequestCancellation(t *testing.T) {
	type key struct{}

	parent, cancel := context.WithCancel(context.Background())
	parent = context.WithValue(parent, key{}, "order-1")

	detached := detach(parent)
	cancel()

	if err := detached.Err(); err != nil {
		t.Fatalf("detached context cancelled with parent: %v", err)
	}
	select {
	case <-detached.Done():
		t.Fatal("detached context done after parent cancel")
	default:
	}
	if got := detached.Value(key{}); got != "order-1" {
		t.Fatalf("detached context lost value, got %v", got)
	}
}
