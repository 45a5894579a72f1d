package session

import (
	"context"
	"errors"
	"fmt"

	"pricecompare-bot/pkg/redis"
)

// RedisStore keeps sessions in Redis as JSON with the client TTL.
type RedisStore struct {
	redis       *redis.Client
	defaultRows int
}

func NewRedisStore(client *redis.Client, defaultRows int) *RedisStore {
	return &RedisStore{
		redis:       client,
		defaultRows: defaultRows,
	}
}

func (s *RedisStore) Get(ctx context.Context, chatID int64) (Session, error) {
	var sess Session
	err := s.redis.LoadJSON(ctx, buildSessionKey(chatID), &sess)
	if errors.Is(err, redis.ErrNotFound) {
		return New(s.defaultRows), nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}

	if sess.Sheet.Len() == 0 {
		sess.Sheet.Rows = New(s.defaultRows).Sheet.Rows
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, chatID int64, sess Session) error {
	if err := s.redis.SaveJSON(ctx, buildSessionKey(chatID), sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.redis.Del(ctx, buildSessionKey(chatID)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func buildSessionKey(chatID int64) string {
	return fmt.Sprintf("session:%d", chatID)
}
