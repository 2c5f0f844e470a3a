package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tush00nka/chattik/internal/pkg/openai"

	"go.uber.org/zap"
)

const (
	AISystemPrompt = "Ты - Chattik AI, дружелюбный помощник в мессенджере Chattik. Отвечай кратко, по-дружески и на русском языке."

	AIUnavailableReply = "AI временно недоступен. Добавьте OPENAI_API_KEY в настройках проекта."
	AIFallbackReply    = "Извините, произошла ошибка. Попробуйте позже."

	aiMaxTokens   = 500
	aiTemperature = 0.7
)

// Completer - внешний сервис генерации ответа
type Completer interface {
	Chat(ctx context.Context, history []openai.Message, options ...openai.Option) (string, error)
}

type aiService struct {
	client Completer
	logger *zap.Logger
}

// NewAIService создает AIService. client == nil означает, что ключ API
// не настроен: внешних вызовов не будет.
func NewAIService(client Completer, logger *zap.Logger) AIService {
	return &aiService{client: client, logger: logger}
}

func (s *aiService) Reply(ctx context.Context, text string) (string, error) {
	if s.client == nil {
		return "", ErrAIUnavailable
	}

	reply, err := s.client.Chat(ctx, []openai.Message{
		{Role: openai.RoleSystem, Content: AISystemPrompt},
		{Role: openai.RoleUser, Content: text},
	}, openai.WithMaxTokens(aiMaxTokens), openai.WithTemperature(aiTemperature))
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", errors.New("completion returned empty reply")
	}
	return reply, nil
}

func (s *aiService) Respond(ctx context.Context, text string) string {
	reply, err := s.Reply(ctx, text)
	switch {
	case errors.Is(err, ErrAIUnavailable):
		return AIUnavailableReply
	case err != nil:
		s.logger.Warn("ai reply failed", zap.Error(err))
		return AIFallbackReply
	}
	return reply
}
