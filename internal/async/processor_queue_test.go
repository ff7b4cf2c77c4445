package async_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joseph-ayodele/b2breeze/internal/async"
	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeProcessor struct {
	mu      sync.Mutex
	seen    []uuid.UUID
	block   chan struct{}
	started chan struct{}
	fail    map[uuid.UUID]bool
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, id uuid.UUID) (pipeline.Outcome, error) {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return pipeline.Outcome{FileID: id}, ctx.Err()
		}
	}
	f.mu.Lock()
	f.seen = append(f.seen, id)
	f.mu.Unlock()
	if f.fail[id] {
		return pipeline.Outcome{FileID: id}, errors.New("boom")
	}
	return pipeline.Outcome{FileID: id, JobID: uuid.New()}, nil
}

func (f *fakeProcessor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func TestProcessorQueue_DrainsOnShutdown(t *testing.T) {
	bad := uuid.New()
	proc := &fakeProcessor{fail: map[uuid.UUID]bool{bad: true}}

	var failures atomic.Int32
	q := async.NewProcessorQueue(proc, nil,
		async.WithWorkers(3),
		async.WithQueueSize(4),
		async.WithTelemetry(telemetry.NewProvider()),
		async.WithResultFunc(func(_ async.Job, _ pipeline.Outcome, err error) {
			if err != nil {
				failures.Add(1)
			}
		}),
	)

	ctx := context.Background()
	for i := 0; i < 9; i++ {
		require.NoError(t, q.Enqueue(ctx, async.Job{FileID: uuid.New()}))
	}
	require.NoError(t, q.Enqueue(ctx, async.Job{FileID: bad}))

	require.NoError(t, q.Shutdown(ctx))
	assert.Equal(t, 10, proc.count())
	assert.Equal(t, int32(1), failures.Load())
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := async.NewProcessorQueue(&fakeProcessor{}, nil, async.WithWorkers(1))
	require.NoError(t, q.Shutdown(context.Background()))

	err := q.Enqueue(context.Background(), async.Job{FileID: uuid.New()})
	assert.ErrorIs(t, err, async.ErrQueueClosed)

	// second shutdown is a no-op
	assert.NoError(t, q.Shutdown(context.Background()))
}

func TestProcessorQueue_FullQueueRespectsContext(t *testing.T) {
	proc := &fakeProcessor{block: make(chan struct{}), started: make(chan struct{}, 1)}
	q := async.NewProcessorQueue(proc, nil, async.WithWorkers(1), async.WithQueueSize(1))

	bg := context.Background()
	// one job held by the worker, one in the buffer
	require.NoError(t, q.Enqueue(bg, async.Job{FileID: uuid.New()}))
	<-proc.started
	require.NoError(t, q.Enqueue(bg, async.Job{FileID: uuid.New()}))

	ctx, cancel := context.WithTimeout(bg, 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, async.Job{FileID: uuid.New()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(proc.block)
	require.NoError(t, q.Shutdown(bg))
	assert.Equal(t, 2, proc.count())
}

func TestProcessorQueue_ShutdownTimeoutCancelsInFlight(t *testing.T) {
	proc := &fakeProcessor{block: make(chan struct{})}
	q := async.NewProcessorQueue(proc, nil, async.WithWorkers(1), async.WithProcessTimeout(time.Minute))
	require.NoError(t, q.Enqueue(context.Background(), async.Job{FileID: uuid.New()}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, proc.count())
}
