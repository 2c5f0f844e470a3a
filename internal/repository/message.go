package repository

import (
	"context"
	"fmt"

	"tush00nka/chattik/internal/model"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ListByChat(ctx context.Context, chatID uint, limit int) ([]model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create сохраняет сообщение, время создания проставляет сервер
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	message.ID = 0
	message.CreatedAt = r.db.NowFunc()
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByChat возвращает первые limit сообщений чата по возрастанию времени
// вместе с именем и аватаром отправителя (NULL у сообщений AI).
func (r *messageRepository) ListByChat(ctx context.Context, chatID uint, limit int) ([]model.Message, error) {
	db := r.db.WithContext(ctx)

	var messages []model.Message
	err := db.Table(table(db, &model.Message{})+" m").
		Select("m.*, u.name AS sender_name, u.avatar AS sender_avatar").
		Joins(fmt.Sprintf("LEFT JOIN %s u ON u.id = m.sender_id", table(db, &model.User{}))).
		Where("m.chat_id = ?", chatID).
		Order("m.created_at ASC").
		Order("m.id ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
