package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suryansh-23/logmask/internal/config"
)

const redisWriteTimeout = 5 * time.Second

// RedisClient is the subset of the go-redis client the sink depends on.
type RedisClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var _ RedisClient = (*redis.Client)(nil)

// Redis appends each written line to a Redis stream as one entry.
// It is not safe for concurrent writers.
type Redis struct {
	client RedisClient
	stream string
	field  string
	maxLen int64

	pending []byte
	entries int
}

// NewRedis connects to the server named by cfg.URL and checks it with PING.
func NewRedis(ctx context.Context, cfg config.Redis) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisWithClient(client, cfg)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client RedisClient, cfg config.Redis) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if cfg.Stream == "" {
		return nil, errors.New("redis stream name is required")
	}
	field := cfg.Field
	if field == "" {
		field = "line"
	}
	return &Redis{
		client: client,
		stream: cfg.Stream,
		field:  field,
		maxLen: cfg.MaxLen,
	}, nil
}

// Write publishes every complete line in p. A trailing partial line is held
// until the next newline or Close.
func (r *Redis) Write(p []byte) (int, error) {
	r.pending = append(r.pending, p...)
	for {
		idx := bytes.IndexByte(r.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimSuffix(r.pending[:idx], []byte("\r")))
		r.pending = r.pending[idx+1:]
		if err := r.add(line); err != nil {
			return 0, err
		}
	}
	if len(r.pending) == 0 {
		r.pending = nil
	}
	return len(p), nil
}

// Entries returns how many stream entries were added.
func (r *Redis) Entries() int {
	return r.entries
}

// Close publishes any pending partial line and closes the client.
func (r *Redis) Close() error {
	var addErr error
	if len(r.pending) > 0 {
		addErr = r.add(string(r.pending))
		r.pending = nil
	}
	return errors.Join(addErr, r.client.Close())
}

func (r *Redis) add(line string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{r.field: line},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	r.entries++
	return nil
}
