package mail

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/yoyda/auth-service/pkg/circuit"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
	"github.com/yoyda/auth-service/pkg/redis"
)

const dequeueTimeout = 5 * time.Second

// Worker drains the delivery queue. Sends go through a circuit breaker so a
// down SMTP relay does not burn a connection attempt per queued message;
// messages that fail to send are logged and dropped rather than requeued.
type Worker struct {
	queue    *redis.Client
	key      string
	renderer *Renderer
	sender   Sender
	breaker  *circuit.Breaker
}

func NewWorker(queue *redis.Client, key string, renderer *Renderer, sender Sender) *Worker {
	return &Worker{
		queue:    queue,
		key:      key,
		renderer: renderer,
		sender:   sender,
		breaker:  circuit.NewBreaker("smtp", circuit.DefaultConfig(), logger.GetLogger()),
	}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ctx = ctxutil.NewContext(ctx, "mail", "Worker")

	logger.InfoWithContext(ctx, "Mail worker started").
		String("queue", w.key).
		Log()

	for {
		select {
		case <-ctx.Done():
			logger.InfoWithContext(ctx, "Mail worker stopped").Log()
			return
		default:
		}

		payload, err := w.queue.Dequeue(ctx, w.key, dequeueTimeout)
		if err != nil {
			if errors.Is(err, redis.ErrQueueEmpty) || errors.Is(err, context.Canceled) {
				continue
			}
			logger.ErrorWithContext(ctx, "Failed to dequeue mail").
				Err(err).
				Log()
			time.Sleep(time.Second)
			continue
		}

		w.deliver(ctx, payload)
	}
}

func (w *Worker) deliver(ctx context.Context, payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.ErrorWithContext(ctx, "Discarding malformed mail payload").
			Err(err).
			Log()
		return
	}

	subject, body, err := w.renderer.Render(msg)
	if err != nil {
		logger.ErrorWithContext(ctx, "Discarding unrenderable mail").
			String("template", msg.Template).
			Err(err).
			Log()
		return
	}

	start := time.Now()
	err = w.breaker.Execute(func() error {
		return w.sender.Send(msg.To, subject, body)
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Mail delivery failed").
			String("template", msg.Template).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return
	}

	logger.InfoWithContext(ctx, "Mail delivered").
		String("template", msg.Template).
		Duration(time.Since(start)).
		Log()
}
