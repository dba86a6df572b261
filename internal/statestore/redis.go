package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "prisoner-profile:"

// RedisStore is the production Store.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore wraps a redis client. It panics on a nil client.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("statestore: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("prisoner-profile.internal.statestore"),
	}
}

func (s *RedisStore) Save(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, span := s.tracer.Start(ctx, "statestore.save", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("statestore: marshal %s: %w", key, err)
	}
	if err := s.redis.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("statestore: save %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string, out any) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "statestore.load", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	data, err := s.redis.Get(ctx, keyPrefix+key).Bytes()
	return s.decode(span, key, data, err, out)
}

// Consume uses GETDEL so two concurrent readers cannot both see the record.
func (s *RedisStore) Consume(ctx context.Context, key string, out any) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "statestore.consume", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	data, err := s.redis.GetDel(ctx, keyPrefix+key).Bytes()
	return s.decode(span, key, data, err, out)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("statestore: delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) decode(span trace.Span, key string, data []byte, err error, out any) (bool, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("statestore: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("statestore: decode %s: %w", key, err)
	}
	return true, nil
}
