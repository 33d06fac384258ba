package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
}

func (p *countingProcessor) ProcessJobs(ctx context.Context) error {
	p.calls.Add(1)
	return p.err
}

func TestWorkerProcessesOnInterval(t *testing.T) {
	processor := &countingProcessor{}
	worker := NewWorker(processor, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, processor.calls.Load(), int32(2))
}

func TestWorkerKeepsRunningAfterError(t *testing.T) {
	processor := &countingProcessor{err: errors.New("transient failure")}
	worker := NewWorker(processor, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, processor.calls.Load(), int32(2), "errors must not stop the loop")
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	processor := &countingProcessor{}
	worker := NewWorker(processor, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
