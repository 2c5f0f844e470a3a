package repository

import (
	"context"
	"fmt"

	"tush00nka/chattik/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Chat, error)
	ListForUser(ctx context.Context, userID uint) ([]model.ChatSummary, error)
	FindOrCreatePrivate(ctx context.Context, userA, userB uint) (*model.Chat, bool, error)
	FindOrCreateAI(ctx context.Context, userID uint) (*model.Chat, bool, error)
	CreateGroup(ctx context.Context, group *model.Group, memberIDs []uint) (*model.Chat, error)
	Create(ctx context.Context, chat *model.Chat, memberIDs []uint) error
	ParticipantIDs(ctx context.Context, chatID uint) ([]uint, error)
	GroupMembers(ctx context.Context, groupID uint) ([]model.GroupMember, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindByID(ctx context.Context, id uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).First(&chat, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

// ListForUser собирает список чатов пользователя: имя и аватар зависят от
// типа чата, последнее сообщение берется одним подзапросом на чат.
// Чаты без сообщений идут в конце.
func (r *chatRepository) ListForUser(ctx context.Context, userID uint) ([]model.ChatSummary, error) {
	db := r.db.WithContext(ctx)

	query := fmt.Sprintf(`
		SELECT c.id, c.type, c.created_at,
		       CASE
		           WHEN c.type = @group THEN COALESCE(g.name, c.name)
		           WHEN c.type = @ai THEN CAST(@ai_name AS TEXT)
		           ELSE COALESCE((
		               SELECT u.name FROM %[2]s p2
		               JOIN %[4]s u ON u.id = p2.user_id
		               WHERE p2.chat_id = c.id AND p2.user_id <> @user_id
		               ORDER BY p2.user_id
		               LIMIT 1
		           ), c.name)
		       END AS name,
		       CASE
		           WHEN c.type = @group THEN COALESCE(g.avatar, '')
		           WHEN c.type = @ai THEN CAST(@ai_avatar AS TEXT)
		           ELSE COALESCE((
		               SELECT u.avatar FROM %[2]s p2
		               JOIN %[4]s u ON u.id = p2.user_id
		               WHERE p2.chat_id = c.id AND p2.user_id <> @user_id
		               ORDER BY p2.user_id
		               LIMIT 1
		           ), '')
		       END AS avatar,
		       lm.content AS last_message,
		       lm.created_at AS last_message_time,
		       0 AS unread
		FROM %[1]s c
		LEFT JOIN %[3]s g ON g.id = c.group_id
		LEFT JOIN %[5]s lm ON lm.id = (
		    SELECT m.id FROM %[5]s m
		    WHERE m.chat_id = c.id
		    ORDER BY m.created_at DESC, m.id DESC
		    LIMIT 1
		)
		WHERE EXISTS (
		    SELECT 1 FROM %[2]s p
		    WHERE p.chat_id = c.id AND p.user_id = @user_id
		)
		ORDER BY CASE WHEN lm.created_at IS NULL THEN 1 ELSE 0 END,
		         lm.created_at DESC,
		         c.id DESC`,
		table(db, &model.Chat{}),
		table(db, &model.ChatParticipant{}),
		table(db, &model.Group{}),
		table(db, &model.User{}),
		table(db, &model.Message{}),
	)

	var chats []model.ChatSummary
	err := db.Raw(query, map[string]interface{}{
		"user_id":   userID,
		"group":     model.ChatTypeGroup,
		"ai":        model.ChatTypeAI,
		"ai_name":   model.AIChatName,
		"ai_avatar": model.AIChatAvatar,
	}).Scan(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// FindOrCreatePrivate возвращает единственный личный чат пары пользователей,
// создавая его при необходимости. Второй результат - был ли чат создан.
func (r *chatRepository) FindOrCreatePrivate(ctx context.Context, userA, userB uint) (*model.Chat, bool, error) {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	key := fmt.Sprintf("private:%d:%d", lo, hi)

	return r.findOrCreate(ctx, model.ChatTypePrivate, key, []uint{lo, hi})
}

// FindOrCreateAI возвращает AI-чат пользователя, создавая его при необходимости.
func (r *chatRepository) FindOrCreateAI(ctx context.Context, userID uint) (*model.Chat, bool, error) {
	key := fmt.Sprintf("ai:%d", userID)

	return r.findOrCreate(ctx, model.ChatTypeAI, key, []uint{userID})
}

func (r *chatRepository) findOrCreate(ctx context.Context, chatType model.ChatType, key string, userIDs []uint) (*model.Chat, bool, error) {
	var (
		chat    model.Chat
		created bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findByParticipants(tx, chatType, userIDs)
		if err != nil {
			return err
		}
		if found != nil {
			chat = *found
			return nil
		}

		chat = model.Chat{Type: chatType, DedupeKey: &key}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&chat)
		if res.Error != nil {
			return res.Error
		}

		// Параллельный запрос успел создать чат с тем же ключом
		if res.RowsAffected == 0 {
			var existing model.Chat
			if err := tx.Where("dedupe_key = ?", key).First(&existing).Error; err != nil {
				return err
			}
			chat = existing
			return nil
		}

		participants := make([]model.ChatParticipant, 0, len(userIDs))
		for _, id := range userIDs {
			participants = append(participants, model.ChatParticipant{ChatID: chat.ID, UserID: id})
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &chat, created, nil
}

// findByParticipants ищет самый старый чат заданного типа, состав которого
// ровно userIDs: все перечисленные и никого больше. Находит и чаты без dedupe_key.
func findByParticipants(tx *gorm.DB, chatType model.ChatType, userIDs []uint) (*model.Chat, error) {
	q := tx.Model(&model.Chat{}).
		Where("type = ?", chatType).
		Where("id IN (?)", tx.Model(&model.ChatParticipant{}).
			Select("chat_id").
			Group("chat_id").
			Having("COUNT(*) = ?", len(userIDs)))
	for _, id := range userIDs {
		q = q.Where("id IN (?)",
			tx.Model(&model.ChatParticipant{}).Select("chat_id").Where("user_id = ?", id))
	}

	var chats []model.Chat
	if err := q.Order("id ASC").Limit(1).Find(&chats).Error; err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, nil
	}
	return &chats[0], nil
}

// CreateGroup атомарно создает группу, ее чат и членство: создатель - admin,
// остальные - member, для каждого есть строка chat_participants.
// memberIDs не должны содержать создателя и повторов.
func (r *chatRepository) CreateGroup(ctx context.Context, group *model.Group, memberIDs []uint) (*model.Chat, error) {
	var chat model.Chat

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		chat = model.Chat{
			Type:    model.ChatTypeGroup,
			GroupID: &group.ID,
			Name:    group.Name,
		}
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}

		members := []model.GroupMember{{GroupID: group.ID, UserID: group.CreatedBy, Role: model.GroupRoleAdmin}}
		participants := []model.ChatParticipant{{ChatID: chat.ID, UserID: group.CreatedBy}}
		for _, id := range memberIDs {
			members = append(members, model.GroupMember{GroupID: group.ID, UserID: id, Role: model.GroupRoleMember})
			participants = append(participants, model.ChatParticipant{ChatID: chat.ID, UserID: id})
		}

		if err := tx.Create(&members).Error; err != nil {
			return err
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}

	return &chat, nil
}

// Create сохраняет чат и по строке участника на каждого пользователя в одной транзакции.
func (r *chatRepository) Create(ctx context.Context, chat *model.Chat, memberIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}

		participants := make([]model.ChatParticipant, 0, len(memberIDs))
		for _, id := range memberIDs {
			participants = append(participants, model.ChatParticipant{ChatID: chat.ID, UserID: id})
		}
		return tx.Create(&participants).Error
	})
}

func (r *chatRepository) ParticipantIDs(ctx context.Context, chatID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.ChatParticipant{}).
		Where("chat_id = ?", chatID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *chatRepository) GroupMembers(ctx context.Context, groupID uint) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
