// Package cache — кэш результатов прогноза. Движок детерминирован:
// одинаковый снимок входных данных всегда дает одинаковый результат,
// поэтому результат можно безопасно кэшировать по хэшу снимка.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache — хранилище сериализованных результатов прогноза.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Key строит детерминированный ключ из канонического JSON снимка
// входных данных. Любое изменение счетов, определений или параметров
// прогноза меняет ключ.
func Key(prefix string, input interface{}) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	return prefix + ":" + hex.EncodeToString(sum[:]), nil
}
