package storage

import (
	"context"
	"io"
	"strings"
)

// DefaultPublicURL - базовый адрес, под которым отдаются загруженные файлы
const DefaultPublicURL = "https://storage.example.com/chattik"

// Storage интерфейс хранилища загруженных файлов
type Storage interface {
	// Save сохраняет файл под ключом key
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// URL возвращает публичную ссылку на файл
	URL(key string) string
}

func joinURL(base, key string) string {
	if base == "" {
		base = DefaultPublicURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
