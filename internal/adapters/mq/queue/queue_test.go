package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
)

func ballCommand(matchID, eventID string) Command {
	c := NewCommand(CommandApplyBall, matchID)
	c.Ball = &scoring.BallInput{EventID: eventID, Tag: "1"}
	return c
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if !q.Enqueue(ctx, ballCommand("m-1", "e1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	c := <-q.Dequeue(ctx)
	if c.Ball == nil || c.Ball.EventID != "e1" {
		t.Errorf("expected e1, got %+v", c)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !q.Enqueue(ctx, ballCommand("m-1", fmt.Sprint(i))) {
			t.Fatalf("enqueue %d should succeed", i)
		}
	}
	if q.Enqueue(ctx, ballCommand("m-1", "overflow")) {
		t.Error("expected enqueue to fail when the queue is full")
	}
}

func TestInMemoryQueue_Order(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 10; i++ {
		q.Enqueue(ctx, ballCommand("m-1", fmt.Sprint(i)))
	}
	out := q.Dequeue(ctx)
	for i := 0; i < 10; i++ {
		c := <-out
		if c.Ball.EventID != fmt.Sprint(i) {
			t.Fatalf("expected command %d, got %s", i, c.Ball.EventID)
		}
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q.Enqueue(ctx, ballCommand("m", fmt.Sprintf("%d-%d", g, i)))
			}
		}(g)
	}
	wg.Wait()

	if l := q.Len(ctx); l != 500 {
		t.Errorf("expected 500 queued commands, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	q.Enqueue(ctx, ballCommand("m-1", "pending"))
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, ballCommand("m-1", "late")) {
		t.Error("expected enqueue to fail after close")
	}

	out := q.Dequeue(ctx)
	select {
	case c, ok := <-out:
		if !ok || c.Ball.EventID != "pending" {
			t.Errorf("expected the pending command to drain, got %+v ok=%v", c, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out draining the queue")
	}
	if _, ok := <-out; ok {
		t.Error("expected dequeue channel to close after draining")
	}
}

func TestCommand_Respond(t *testing.T) {
	c := NewCommand(CommandAbandon, "m-1")
	c.Respond(model.Snapshot{}, nil)
	c.Respond(model.Snapshot{}, nil) // reply slot already full; must not block

	res := <-c.Reply
	if res.Err != nil {
		t.Errorf("unexpected error %v", res.Err)
	}

	var orphan Command
	orphan.Respond(model.Snapshot{}, nil)
}
