package service

import (
	"context"
	"errors"
	"strings"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/repository"

	"go.uber.org/zap"
)

// MaxMessages - жесткий предел выдачи сообщений; курсора нет
const MaxMessages = 100

type SendMessageInput struct {
	ChatID   uint
	SenderID uint
	Content  string
	IsAI     bool
	// ShouldReply просит AI ответить в тот же чат
	ShouldReply bool
}

type SendMessageResult struct {
	Message *model.Message `json:"message"`
	AIReply *model.Message `json:"ai_reply,omitempty"`
}

type messageService struct {
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	cache       repository.MessageCacheRepository
	ai          AIService
	logger      *zap.Logger
}

// NewMessageService создает новый экземпляр MessageService
func NewMessageService(
	messageRepo repository.MessageRepository,
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	cache repository.MessageCacheRepository,
	ai AIService,
	logger *zap.Logger,
) MessageService {
	if cache == nil {
		cache = repository.NewNopMessageCache()
	}
	return &messageService{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		cache:       cache,
		ai:          ai,
		logger:      logger,
	}
}

// SendMessage сохраняет сообщение и, если попросили, ответ AI.
// Ошибка AI не влияет на результат: ответ просто не добавляется.
func (s *messageService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.ChatID == 0 {
		return nil, invalid("chat_id is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, invalid("message cannot be empty")
	}
	if !input.IsAI && input.SenderID == 0 {
		return nil, invalid("sender_id is required")
	}

	if _, err := s.chatRepo.FindByID(ctx, input.ChatID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	msg := &model.Message{
		ChatID:  input.ChatID,
		Content: input.Content,
		IsAI:    input.IsAI,
	}
	if !input.IsAI {
		if err := requireUsers(ctx, s.userRepo, input.SenderID); err != nil {
			return nil, err
		}
		sender := input.SenderID
		msg.SenderID = &sender
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ChatID)

	result := &SendMessageResult{Message: msg}
	if input.ShouldReply && !input.IsAI && s.ai != nil {
		result.AIReply = s.autoReply(ctx, input.ChatID, input.Content)
	}

	return result, nil
}

func (s *messageService) autoReply(ctx context.Context, chatID uint, text string) *model.Message {
	reply, err := s.ai.Reply(ctx, text)
	if err != nil {
		s.logger.Warn("ai auto-reply dropped", zap.Uint("chat_id", chatID), zap.Error(err))
		return nil
	}

	msg := &model.Message{ChatID: chatID, Content: reply, IsAI: true}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.logger.Error("failed to save ai reply", zap.Uint("chat_id", chatID), zap.Error(err))
		return nil
	}
	s.invalidate(ctx, chatID)

	return msg
}

// ListMessages возвращает первые сообщения чата по возрастанию времени.
// limit вне 1..MaxMessages приводится к MaxMessages.
func (s *messageService) ListMessages(ctx context.Context, chatID uint, limit int) ([]model.Message, error) {
	if chatID == 0 {
		return nil, invalid("chat_id is required")
	}
	if limit <= 0 || limit > MaxMessages {
		limit = MaxMessages
	}

	messages, version, hit, err := s.cache.GetMessages(ctx, chatID)
	if err != nil {
		s.logger.Warn("message cache read failed", zap.Uint("chat_id", chatID), zap.Error(err))
	}

	if !hit {
		messages, err = s.messageRepo.ListByChat(ctx, chatID, MaxMessages)
		if err != nil {
			return nil, err
		}
		// отправка после чтения сдвинет поколение, и устаревшая лента не запишется
		if err := s.cache.SetMessages(ctx, chatID, version, messages); err != nil {
			s.logger.Warn("message cache write failed", zap.Uint("chat_id", chatID), zap.Error(err))
		}
	}

	if messages == nil {
		messages = []model.Message{}
	}
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (s *messageService) invalidate(ctx context.Context, chatID uint) {
	if err := s.cache.Invalidate(ctx, chatID); err != nil {
		s.logger.Warn("message cache invalidation failed", zap.Uint("chat_id", chatID), zap.Error(err))
	}
}
