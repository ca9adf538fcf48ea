// Package redis wraps the go-redis client with the small surface the service
// needs: connection lifecycle and list-based queue operations for the mail
// worker boundary.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Dequeue when the wait times out with no job.
var ErrQueueEmpty = errors.New("queue empty")

type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Client struct {
	rdb *redis.Client
}

func NewClient(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	client := &Client{rdb: rdb}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Enqueue pushes a payload onto the named list queue.
func (c *Client) Enqueue(ctx context.Context, queue string, payload []byte) error {
	if err := c.rdb.LPush(ctx, queue, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue to %s: %w", queue, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next payload on the named queue.
// BRPOP needs a read timeout longer than the block timeout, so callers
// should configure ReadTimeout accordingly or pass a short block window.
func (c *Client) Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	result, err := c.rdb.BRPop(ctx, timeout, queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("failed to dequeue from %s: %w", queue, err)
	}
	// BRPOP returns [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(result))
	}
	return []byte(result[1]), nil
}

// QueueLength reports the number of pending payloads, for health reporting.
func (c *Client) QueueLength(ctx context.Context, queue string) (int64, error) {
	n, err := c.rdb.LLen(ctx, queue).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get length of %s: %w", queue, err)
	}
	return n, nil
}
