package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// IngestedQueueKey receives the id of every newly archived item.
const IngestedQueueKey = "archive:queue:ingested"

type Queue struct {
	client *redis.Client
	key    string
}

func OpenQueue(ctx context.Context, redisURL string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Queue{client: client, key: IngestedQueueKey}, nil
}

// PublishInserted pushes an item id for downstream consumers.
func (q *Queue) PublishInserted(ctx context.Context, id int64) error {
	return q.client.LPush(ctx, q.key, strconv.FormatInt(id, 10)).Err()
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
