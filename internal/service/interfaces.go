package service

import (
	"context"

	"tush00nka/chattik/internal/model"
)

type UserService interface {
	Register(ctx context.Context, phone, name, avatar string) (*model.User, error)
	SetOnlineStatus(ctx context.Context, userID uint, online bool) error
	SearchByPhone(ctx context.Context, phone string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, exceptUserID uint) ([]model.User, error)
}

type ContactService interface {
	AddContact(ctx context.Context, userID, contactUserID uint) error
	ListContacts(ctx context.Context, userID uint) ([]model.User, error)
}

type ChatService interface {
	ListChats(ctx context.Context, userID uint) ([]model.ChatSummary, error)
	CreatePrivateChat(ctx context.Context, userID, contactID uint) (*model.Chat, error)
	CreateAIChat(ctx context.Context, userID uint) (*model.Chat, error)
	CreateGroup(ctx context.Context, input CreateGroupInput) (*model.Group, *model.Chat, error)
	CreateGenericChat(ctx context.Context, name string, isGroup bool, memberIDs []uint) (*model.Chat, error)
}

type MessageService interface {
	SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error)
	ListMessages(ctx context.Context, chatID uint, limit int) ([]model.Message, error)
}

type AIService interface {
	// Reply возвращает ответ модели или ошибку; без ключа API - ErrAIUnavailable
	Reply(ctx context.Context, text string) (string, error)
	// Respond не возвращает ошибок: сбои превращаются в фиксированные строки
	Respond(ctx context.Context, text string) string
}

type UploadService interface {
	Upload(ctx context.Context, input UploadInput) (*model.FileMetadata, error)
}
