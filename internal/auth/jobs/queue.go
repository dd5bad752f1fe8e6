// Package jobs hands email work off the request path. LocalQueue delivers
// in-process through a Mailer; MQTTQueue publishes tasks for an external
// worker.
package jobs

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

var (
	ErrQueueFull   = errors.New("jobs: queue full")
	ErrQueueClosed = errors.New("jobs: queue closed")
)

const kindEmail = "email"

// Queue accepts tasks without waiting for delivery.
type Queue interface {
	Enqueue(ctx context.Context, task domain.EmailTask) error
	Close() error
}
