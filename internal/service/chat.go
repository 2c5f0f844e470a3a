package service

import (
	"context"
	"strings"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/repository"

	"go.uber.org/zap"
)

type CreateGroupInput struct {
	Name        string
	Description string
	Avatar      string
	CreatorID   uint
	MemberIDs   []uint
}

type chatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, logger *zap.Logger) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListChats возвращает чаты пользователя, свежие сверху
func (s *chatService) ListChats(ctx context.Context, userID uint) ([]model.ChatSummary, error) {
	if userID == 0 {
		return nil, invalid("user_id is required")
	}

	chats, err := s.chatRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []model.ChatSummary{}
	}
	return chats, nil
}

// CreatePrivateChat находит или создает личный чат двух пользователей
func (s *chatService) CreatePrivateChat(ctx context.Context, userID, contactID uint) (*model.Chat, error) {
	if userID == 0 || contactID == 0 {
		return nil, invalid("user_id and contact_id are required")
	}
	if userID == contactID {
		return nil, invalid("userIDs must be different")
	}

	if err := requireUsers(ctx, s.userRepo, userID, contactID); err != nil {
		return nil, err
	}

	chat, created, err := s.chatRepo.FindOrCreatePrivate(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("private chat created",
			zap.Uint("chat_id", chat.ID),
			zap.Uint("user_id", userID),
			zap.Uint("contact_id", contactID),
		)
	}
	return chat, nil
}

// CreateAIChat находит или создает AI-чат пользователя
func (s *chatService) CreateAIChat(ctx context.Context, userID uint) (*model.Chat, error) {
	if userID == 0 {
		return nil, invalid("user_id is required")
	}

	if err := requireUsers(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	chat, created, err := s.chatRepo.FindOrCreateAI(ctx, userID)
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("ai chat created", zap.Uint("chat_id", chat.ID), zap.Uint("user_id", userID))
	}
	return chat, nil
}

// CreateGroup создает группу вместе с чатом. Повторы в списке участников
// и сам создатель среди них схлопываются.
func (s *chatService) CreateGroup(ctx context.Context, input CreateGroupInput) (*model.Group, *model.Chat, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, invalid("group name cannot be empty")
	}
	if input.CreatorID == 0 {
		return nil, nil, invalid("creator_id is required")
	}

	members := uniqueIDs(input.MemberIDs, input.CreatorID)
	if err := requireUsers(ctx, s.userRepo, append([]uint{input.CreatorID}, members...)...); err != nil {
		return nil, nil, err
	}

	avatar := strings.TrimSpace(input.Avatar)
	if avatar == "" {
		avatar = model.DefaultGroupAvatar
	}

	group := &model.Group{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Avatar:      avatar,
		CreatedBy:   input.CreatorID,
	}

	chat, err := s.chatRepo.CreateGroup(ctx, group, members)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("group created",
		zap.Uint("group_id", group.ID),
		zap.Uint("chat_id", chat.ID),
		zap.Int("members", len(members)+1),
	)
	return group, chat, nil
}

// CreateGenericChat - старый способ создания чата: имя, флаг группы и список участников.
// Личный чат возможен только на двоих и идет через CreatePrivateChat.
func (s *chatService) CreateGenericChat(ctx context.Context, name string, isGroup bool, memberIDs []uint) (*model.Chat, error) {
	members := uniqueIDs(memberIDs, 0)
	if len(members) == 0 {
		return nil, invalid("members are required")
	}

	if !isGroup {
		if len(members) != 2 {
			return nil, invalid("private chat needs exactly two members")
		}
		return s.CreatePrivateChat(ctx, members[0], members[1])
	}

	if err := requireUsers(ctx, s.userRepo, members...); err != nil {
		return nil, err
	}

	chat := &model.Chat{Type: model.ChatTypeGroup, Name: strings.TrimSpace(name)}
	if err := s.chatRepo.Create(ctx, chat, members); err != nil {
		return nil, err
	}

	s.logger.Info("chat created", zap.Uint("chat_id", chat.ID), zap.Bool("is_group", isGroup))
	return chat, nil
}

// uniqueIDs убирает нули, повторы и exclude, сохраняя порядок
func uniqueIDs(ids []uint, exclude uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
