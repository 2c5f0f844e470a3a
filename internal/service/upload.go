package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UploadInput struct {
	// File - base64, допускается префикс data URL ("data:image/png;base64,")
	File        string
	Filename    string
	ContentType string
}

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

type uploadService struct {
	storage storage.Storage
	logger  *zap.Logger
}

// NewUploadService создает новый экземпляр UploadService
func NewUploadService(store storage.Storage, logger *zap.Logger) UploadService {
	return &uploadService{storage: store, logger: logger}
}

func (s *uploadService) Upload(ctx context.Context, input UploadInput) (*model.FileMetadata, error) {
	payload := strings.TrimSpace(input.File)
	if i := strings.IndexByte(payload, ','); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	// base64 из MIME-кодировщиков приходит с переносами строк
	if strings.ContainsAny(payload, "\r\n") {
		payload = lineBreaks.Replace(payload)
	}
	if payload == "" {
		return nil, invalid("No file data provided")
	}

	// Проверяем размер до декодирования, чтобы не тратить память
	if base64.StdEncoding.DecodedLen(len(payload)) > model.MaxUploadSize+2 {
		return nil, ErrFileTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalid("file is not valid base64")
	}
	if len(data) > model.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := uuid.NewString() + "." + extension(input.Filename)
	if err := s.storage.Save(ctx, key, bytes.NewReader(data), contentType); err != nil {
		s.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.logger.Info("file uploaded", zap.String("key", key), zap.Int("size", len(data)))

	return &model.FileMetadata{
		URL:         s.storage.URL(key),
		Filename:    input.Filename,
		ContentType: input.ContentType,
		Size:        int64(len(data)),
		Key:         key,
	}, nil
}

// extension возвращает расширение файла без точки, "bin" если его нет
func extension(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return "bin"
	}
	return strings.ToLower(ext)
}
