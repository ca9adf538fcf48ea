package mail

import (
	"context"
	"encoding/json"

	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
	"github.com/yoyda/auth-service/pkg/redis"
)

// Enqueuer pushes messages onto the Redis delivery queue. Callers treat a
// failed enqueue as non-fatal; the user-facing operation already succeeded.
type Enqueuer struct {
	queue *redis.Client
	key   string
}

func NewEnqueuer(queue *redis.Client, key string) *Enqueuer {
	return &Enqueuer{queue: queue, key: key}
}

func (e *Enqueuer) Enqueue(ctx context.Context, msg Message) error {
	ctx = ctxutil.NewContext(ctx, "mail", "Enqueue")

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := e.queue.Enqueue(ctx, e.key, payload); err != nil {
		logger.ErrorWithContext(ctx, "Failed to enqueue mail").
			String("template", msg.Template).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Mail enqueued").
		String("template", msg.Template).
		Log()

	return nil
}
