package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/pkg/obs"
)

const sendTimeout = 30 * time.Second

// LocalQueue is a bounded in-process worker pool.
type LocalQueue struct {
	mailer  Mailer
	logger  *slog.Logger
	metrics *obs.Metrics

	tasks chan domain.EmailTask
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*LocalQueue)(nil)

// NewLocalQueue starts workers goroutines draining a buffer of size depth.
func NewLocalQueue(mailer Mailer, logger *slog.Logger, metrics *obs.Metrics, workers, depth int) *LocalQueue {
	if workers <= 0 {
		workers = 1
	}
	if depth <= 0 {
		depth = 100
	}
	q := &LocalQueue{
		mailer:  mailer,
		logger:  logger,
		metrics: metrics,
		tasks:   make(chan domain.EmailTask, depth),
	}
	for range workers {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

func (q *LocalQueue) Enqueue(_ context.Context, task domain.EmailTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- task:
		q.metrics.JobEvent(kindEmail, "enqueued")
		return nil
	default:
		q.metrics.JobEvent(kindEmail, "dropped")
		return ErrQueueFull
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (q *LocalQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

func (q *LocalQueue) work() {
	defer q.wg.Done()
	for task := range q.tasks {
		q.deliver(task)
	}
}

func (q *LocalQueue) deliver(task domain.EmailTask) {
	l := q.logger.With(slog.String("task_id", task.ID), slog.String("template", string(task.Template)))

	body, err := RenderBody(task)
	if err != nil {
		l.Error("render email", slog.Any("error", err))
		q.metrics.JobEvent(kindEmail, "failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := q.mailer.Send(ctx, task.To, task.Subject, body); err != nil {
		l.Error("send email", slog.Any("error", err))
		q.metrics.JobEvent(kindEmail, "failed")
		return
	}
	q.metrics.JobEvent(kindEmail, "sent")
}
