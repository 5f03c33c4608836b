package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/model"
	"telegram-merchant-pay/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps merchant conversational state in Redis so a restart
// doesn't drop mid-flow merchants.
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func (s *SessionRepo) sessionKey(chatID int64) string {
	return fmt.Sprintf("conv_state:%d", chatID)
}

func (s *SessionRepo) Get(ctx context.Context, chatID int64) (*model.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(chatID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionRepo) Set(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(sess.ChatID), data, s.ttl)
}

func (s *SessionRepo) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.sessionKey(chatID))
}
