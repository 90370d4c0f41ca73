package session

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with per-key TTL.
type RedisStore struct {
    client *redis.Client
    ttl    time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
    opt, err := redis.ParseURL(redisURL)
    if err != nil {
        return nil, err
    }
    c := redis.NewClient(opt)
    if err := c.Ping(context.Background()).Err(); err != nil {
        return nil, err
    }
    return &RedisStore{client: c, ttl: ttl}, nil
}

func (s *RedisStore) key(id string) string { return fmt.Sprintf("session:%s", id) }

func (s *RedisStore) Set(ctx context.Context, sess Session) error {
    b, err := json.Marshal(sess)
    if err != nil {
        return err
    }
    return s.client.Set(ctx, s.key(sess.ID), b, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, bool, error) {
    b, err := s.client.Get(ctx, s.key(id)).Bytes()
    if err == redis.Nil {
        return Session{}, false, nil
    }
    if err != nil {
        return Session{}, false, err
    }
    var sess Session
    if err := json.Unmarshal(b, &sess); err != nil {
        return Session{}, false, err
    }
    return sess, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
    return s.client.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
