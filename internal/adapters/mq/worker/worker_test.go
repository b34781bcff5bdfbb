package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/okian/birdplot/internal/adapters/mq/queue"
	worker "github.com/okian/birdplot/internal/adapters/mq/worker"
	model "github.com/okian/birdplot/internal/domain/model"
)

// recordingProcessor remembers every job it saw and fails on chosen paths.
type recordingProcessor struct {
	mu     sync.Mutex
	seen   []string
	failOn map[string]bool
	delay  time.Duration
}

func (p *recordingProcessor) Process(ctx context.Context, j model.Job) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, j.Path)
	if p.failOn[j.Path] {
		return errors.New("tool failed")
	}
	return nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func fill(ctx context.Context, q *queue.InMemoryQueue, n int) {
	for i := 0; i < n; i++ {
		_ = q.Enqueue(ctx, model.Job{ID: fmt.Sprint(i), Path: fmt.Sprintf("/img/%d.png", i)})
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a single worker over a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		proc := &recordingProcessor{failOn: map[string]bool{"/img/1.png": true}}
		w := worker.NewInMemoryWorker(q, proc, worker.WithName("test-worker"))

		convey.Convey("When jobs are queued and the queue is closed", func() {
			fill(ctx, q, 3)
			_ = q.Close()

			done := make(chan struct{})
			go func() {
				w.Run(ctx)
				close(done)
			}()

			convey.Convey("Then every job is processed in order and the worker returns", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					convey.So("worker did not return", convey.ShouldBeEmpty)
				}
				convey.So(proc.seen, convey.ShouldResemble, []string{"/img/0.png", "/img/1.png", "/img/2.png"})
			})
		})

		convey.Convey("When the worker is shut down while idle", func() {
			go w.Run(ctx)
			sctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			convey.Convey("Then Shutdown returns without error", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the worker never started", func() {
			sctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()

			convey.Convey("Then Shutdown times out", func() {
				err := w.Shutdown(sctx)
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		proc := &recordingProcessor{failOn: map[string]bool{"/img/7.png": true}}
		pool := worker.NewPool(4, q, proc)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When more jobs than the queue holds are fed and the queue is closed", func() {
			pool.Start(ctx)
			fill(ctx, q, 50)
			_ = q.Close()
			pool.Wait()

			convey.Convey("Then every job was processed once despite a failing one", func() {
				convey.So(proc.count(), convey.ShouldEqual, 50)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive size", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), &recordingProcessor{})

		convey.Convey("Then it still has workers", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given a running pool with slow jobs", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		proc := &recordingProcessor{delay: 5 * time.Millisecond}
		pool := worker.NewPool(2, q, proc)
		pool.Start(ctx)
		fill(ctx, q, 100)

		convey.Convey("When the pool is shut down", func() {
			err := pool.Shutdown(ctx)

			convey.Convey("Then it stops early and the queue refuses new jobs", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(proc.count(), convey.ShouldBeLessThan, 100)
				convey.So(errors.Is(q.Enqueue(ctx, model.Job{}), queue.ErrClosed), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool started with a cancellable context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		proc := &recordingProcessor{}
		pool := worker.NewPool(1, q, proc)
		pool.Start(ctx)
		fill(ctx, q, 2)

		convey.Convey("When the context is cancelled", func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
			pool.Wait()

			convey.Convey("Then Wait returns", func() {
				convey.So(proc.count(), convey.ShouldBeLessThanOrEqualTo, 2)
			})
		})
	})
}
