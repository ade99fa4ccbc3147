package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerifierStore хранит PKCE-верификаторы между началом OAuth-потока
// и callback-ом. На пользователя хранится один верификатор: повторный
// старт потока перезаписывает предыдущий, делая его URL недействительным.
type VerifierStore struct {
	db  *redis.Client
	ttl time.Duration
}

// NewVerifierStore создаёт хранилище верификаторов поверх существующего
// Redis-подключения кэша.
func NewVerifierStore(c *Cache, ttl time.Duration) *VerifierStore {
	return &VerifierStore{db: c.Db, ttl: ttl}
}

func verifierKey(userUID string) string {
	return "canva:verifier:" + userUID
}

// Put сохраняет верификатор пользователя с TTL.
func (s *VerifierStore) Put(ctx context.Context, userUID, verifier string) error {
	const op = "cache.VerifierStore.Put"

	if err := s.db.Set(ctx, verifierKey(userUID), verifier, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Take извлекает и удаляет верификатор одним запросом: верификатор
// одноразовый, повторный callback не должен его увидеть. Возвращает
// пустую строку, если верификатор истёк или не создавался.
func (s *VerifierStore) Take(ctx context.Context, userUID string) (string, error) {
	const op = "cache.VerifierStore.Take"

	val, err := s.db.GetDel(ctx, verifierKey(userUID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}
