package core

import (
	"context"
	"testing"
	"time"
)

func TestNewJobQueue_DefaultCapacity(t *testing.T) {
	q := NewJobQueue(nil, nil, 0, nil)
	if cap(q.items) != 256 {
		t.Errorf("capacity = %d, want 256", cap(q.items))
	}
}

func TestJobQueue_Submit(t *testing.T) {
	q := NewJobQueue(nil, nil, 2, nil)

	if !q.Submit("job-1", "conn") {
		t.Fatal("Submit() = false, want true for first item")
	}
	if !q.Submit("job-2", "conn") {
		t.Fatal("Submit() = false, want true for second item")
	}
	if q.Submit("job-3", "conn") {
		t.Fatal("Submit() = true, want false once the queue is full")
	}
}

func TestJobQueue_RunShutdown(t *testing.T) {
	q := NewJobQueue(nil, nil, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go q.Run(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		q.WaitForShutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForShutdown() did not return after context cancellation")
	}
}
