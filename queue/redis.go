package queue

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "cursapp:video_processing"

type Redis struct {
	rdb     *goredis.Client
	key     string
	timeout time.Duration
}

func NewRedis(rdb *goredis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{rdb: rdb, key: key, timeout: 5 * time.Second}
}

func (r *Redis) Enqueue(ctx context.Context, t Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.rdb.LPush(ctx, r.key, raw).Err()
}

func (r *Redis) Dequeue(ctx context.Context) (Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}
		res, err := r.rdb.BRPop(ctx, r.timeout, r.key).Result()
		if err == goredis.Nil {
			continue
		}
		if err != nil {
			return Task{}, err
		}
		// BRPOP replies with [key, value]
		var t Task
		if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
			return Task{}, err
		}
		return t, nil
	}
}
