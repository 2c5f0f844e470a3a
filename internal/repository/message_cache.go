package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tush00nka/chattik/internal/model"

	"github.com/redis/go-redis/v9"
)

// DefaultMessageCacheTTL - время жизни закешированной ленты сообщений
const DefaultMessageCacheTTL = 24 * time.Hour

// MessageCacheRepository интерфейс кеша ленты сообщений чата (cache-aside).
// Пустой результат с hit=false означает промах. version - поколение ленты
// на момент чтения: SetMessages записывает ленту, только если с тех пор
// не было Invalidate.
type MessageCacheRepository interface {
	GetMessages(ctx context.Context, chatID uint) (messages []model.Message, version int64, hit bool, err error)
	SetMessages(ctx context.Context, chatID uint, version int64, messages []model.Message) error
	Invalidate(ctx context.Context, chatID uint) error
}

// NewRedisClient создает клиента Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// messageCacheRepository реализация MessageCacheRepository поверх списков Redis
type messageCacheRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMessageCacheRepository создает новый экземпляр репозитория кеша
func NewMessageCacheRepository(rdb *redis.Client, ttl time.Duration) MessageCacheRepository {
	if ttl <= 0 {
		ttl = DefaultMessageCacheTTL
	}
	return &messageCacheRepository{rdb: rdb, ttl: ttl}
}

// getMessageKey возвращает ключ для хранения сообщений чата
func (r *messageCacheRepository) getMessageKey(chatID uint) string {
	return fmt.Sprintf("chat:%d:messages", chatID)
}

// getGenerationKey возвращает ключ счетчика поколений ленты чата
func (r *messageCacheRepository) getGenerationKey(chatID uint) string {
	return fmt.Sprintf("chat:%d:messages:gen", chatID)
}

// errStaleFill лента устарела, пока ее читали из базы
var errStaleFill = errors.New("message cache generation changed")

// generation читает поколение ленты, отсутствующий ключ - нулевое поколение
func generation(ctx context.Context, c redis.Cmdable, key string) (int64, error) {
	gen, err := c.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// GetMessages получает сообщения из кеша вместе с текущим поколением ленты
func (r *messageCacheRepository) GetMessages(ctx context.Context, chatID uint) ([]model.Message, int64, bool, error) {
	if chatID == 0 {
		return nil, 0, false, fmt.Errorf("chatID cannot be zero")
	}

	// Поколение читаем до ленты: заполнение после промаха сверяется с ним
	version, err := generation(ctx, r.rdb, r.getGenerationKey(chatID))
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to get cache generation: %w", err)
	}

	values, err := r.rdb.LRange(ctx, r.getMessageKey(chatID), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, version, false, nil
		}
		return nil, version, false, fmt.Errorf("failed to get messages from redis: %w", err)
	}
	if len(values) == 0 {
		return nil, version, false, nil
	}

	messages := make([]model.Message, 0, len(values))
	for _, v := range values {
		var msg model.Message
		if err := json.Unmarshal([]byte(v), &msg); err != nil {
			// Битая запись - считаем промахом, лента перечитается из базы
			return nil, version, false, nil
		}
		messages = append(messages, msg)
	}

	return messages, version, true, nil
}

// SetMessages заменяет закешированную ленту чата. Если поколение ушло
// вперед от version, запись молча пропускается.
func (r *messageCacheRepository) SetMessages(ctx context.Context, chatID uint, version int64, messages []model.Message) error {
	if chatID == 0 {
		return fmt.Errorf("chatID cannot be zero")
	}
	if len(messages) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := r.getMessageKey(chatID)
	genKey := r.getGenerationKey(chatID)
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.RPush(ctx, key, values...)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("failed to save messages to redis: %w", err)
	}
}

// Invalidate очищает ленту чата и сдвигает поколение
func (r *messageCacheRepository) Invalidate(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return fmt.Errorf("chatID cannot be zero")
	}

	genKey := r.getGenerationKey(chatID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, r.ttl)
		pipe.Del(ctx, r.getMessageKey(chatID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}

type nopMessageCache struct{}

// NewNopMessageCache возвращает кеш, который всегда промахивается.
// Используется, когда Redis не настроен.
func NewNopMessageCache() MessageCacheRepository {
	return nopMessageCache{}
}

func (nopMessageCache) GetMessages(context.Context, uint) ([]model.Message, int64, bool, error) {
	return nil, 0, false, nil
}

func (nopMessageCache) SetMessages(context.Context, uint, int64, []model.Message) error {
	return nil
}

func (nopMessageCache) Invalidate(context.Context, uint) error {
	return nil
}
