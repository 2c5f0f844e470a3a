package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEndToEndPrivateConversation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	a := env.register(t, "+1", "A")
	b := env.register(t, "+2", "B")

	chat, err := env.chats.CreatePrivateChat(ctx, a.ID, b.ID)
	require.NoError(t, err)

	sent, err := env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: a.ID, Content: "hi"})
	require.NoError(t, err)
	require.NotNil(t, sent.Message)
	assert.NotZero(t, sent.Message.ID)
	assert.False(t, sent.Message.CreatedAt.IsZero())
	assert.Nil(t, sent.AIReply)

	messages, err := env.messages.ListMessages(ctx, chat.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, sent.Message.ID, messages[0].ID)
	assert.Equal(t, "hi", messages[0].Content)

	chats, err := env.chats.ListChats(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, chat.ID, chats[0].ID)
	assert.Equal(t, "B", chats[0].Name)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "hi", *chats[0].LastMessage)
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	a := env.register(t, "+1", "A")
	chat, err := env.chats.CreateAIChat(ctx, a.ID)
	require.NoError(t, err)

	_, err = env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: a.ID, Content: "  "})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, Content: "no sender"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = env.messages.SendMessage(ctx, SendMessageInput{ChatID: 9999, SenderID: a.ID, Content: "x"})
	assert.ErrorIs(t, err, ErrChatNotFound)

	_, err = env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: 777, Content: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	ai, err := env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, Content: "from ai", IsAI: true})
	require.NoError(t, err)
	assert.Nil(t, ai.Message.SenderID)
	assert.True(t, ai.Message.IsAI)
}

func TestSendMessageAutoReply(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	a := env.register(t, "+1", "A")
	chat, err := env.chats.CreateAIChat(ctx, a.ID)
	require.NoError(t, err)

	res, err := env.messages.SendMessage(ctx, SendMessageInput{
		ChatID:      chat.ID,
		SenderID:    a.ID,
		Content:     "Как дела?",
		ShouldReply: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.AIReply)
	assert.Equal(t, "Привет! Чем помочь?", res.AIReply.Content)
	assert.True(t, res.AIReply.IsAI)
	assert.Nil(t, res.AIReply.SenderID)
	assert.Equal(t, chat.ID, res.AIReply.ChatID)

	require.Len(t, env.ai.history, 2)
	assert.Equal(t, AISystemPrompt, env.ai.history[0].Content)
	assert.Equal(t, "Как дела?", env.ai.history[1].Content)

	messages, err := env.messages.ListMessages(ctx, chat.ID, 100)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, res.Message.ID, messages[0].ID)
	assert.Equal(t, res.AIReply.ID, messages[1].ID)
	assert.Nil(t, messages[1].SenderName)
}

func TestSendMessageAutoReplyFailureIsDropped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.ai.err = errBoom
	a := env.register(t, "+1", "A")
	chat, err := env.chats.CreateAIChat(ctx, a.ID)
	require.NoError(t, err)

	res, err := env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: a.ID, Content: "hello", ShouldReply: true})
	require.NoError(t, err)
	assert.NotZero(t, res.Message.ID)
	assert.Nil(t, res.AIReply)

	messages, err := env.messages.ListMessages(ctx, chat.ID, 100)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestAIAuthoredMessageDoesNotTriggerReply(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	a := env.register(t, "+1", "A")
	chat, err := env.chats.CreateAIChat(ctx, a.ID)
	require.NoError(t, err)

	res, err := env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, Content: "ai text", IsAI: true, ShouldReply: true})
	require.NoError(t, err)
	assert.Nil(t, res.AIReply)
	assert.Zero(t, env.ai.calls)
}

func TestListMessagesHardCap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	a := env.register(t, "+1", "A")
	chat, err := env.chats.CreateAIChat(ctx, a.ID)
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	batch := make([]model.Message, 0, MaxMessages+5)
	for i := 0; i < MaxMessages+5; i++ {
		batch = append(batch, model.Message{
			ChatID:    chat.ID,
			SenderID:  &a.ID,
			Content:   fmt.Sprintf("m%03d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, env.db.CreateInBatches(&batch, 50).Error)

	messages, err := env.messages.ListMessages(ctx, chat.ID, 1000)
	require.NoError(t, err)
	require.Len(t, messages, MaxMessages)
	assert.Equal(t, "m000", messages[0].Content)
	assert.Equal(t, "m099", messages[MaxMessages-1].Content)

	few, err := env.messages.ListMessages(ctx, chat.ID, 3)
	require.NoError(t, err)
	require.Len(t, few, 3)
	assert.Equal(t, "m002", few[2].Content)
}

func TestListMessagesUsesCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := newTestEnv(t, repository.NewMessageCacheRepository(rdb, time.Hour))
	a := env.register(t, "+1", "A")
	chat, err := env.chats.CreateAIChat(ctx, a.ID)
	require.NoError(t, err)
	key := fmt.Sprintf("chat:%d:messages", chat.ID)

	_, err = env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: a.ID, Content: "one"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	first, err := env.messages.ListMessages(ctx, chat.ID, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mr.Exists(key))

	// запись мимо сервиса не видна, пока кеш жив
	require.NoError(t, env.db.Create(&model.Message{ChatID: chat.ID, Content: "hidden", IsAI: true}).Error)
	cached, err := env.messages.ListMessages(ctx, chat.ID, 0)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// отправка сбрасывает кеш
	_, err = env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: a.ID, Content: "two"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	fresh, err := env.messages.ListMessages(ctx, chat.ID, 0)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

// hookedMessageRepo выполняет afterList один раз сразу после чтения ленты из базы
type hookedMessageRepo struct {
	repository.MessageRepository
	afterList func()
}

func (r *hookedMessageRepo) ListByChat(ctx context.Context, chatID uint, limit int) ([]model.Message, error) {
	messages, err := r.MessageRepository.ListByChat(ctx, chatID, limit)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return messages, err
}

func TestListMessagesDoesNotCacheStaleFeed(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := newTestEnv(t, nil)
	a := env.register(t, "+1", "A")
	b := env.register(t, "+2", "B")
	chat, err := env.chats.CreatePrivateChat(ctx, a.ID, b.ID)
	require.NoError(t, err)

	log := zap.NewNop()
	messages := &hookedMessageRepo{MessageRepository: repository.NewMessageRepository(env.db)}
	svc := NewMessageService(
		messages,
		repository.NewChatRepository(env.db),
		repository.NewUserRepository(env.db),
		repository.NewMessageCacheRepository(rdb, time.Hour),
		NewAIService(env.ai, log),
		log,
	)

	_, err = svc.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: a.ID, Content: "one"})
	require.NoError(t, err)

	// вторая отправка попадает между чтением из базы и заполнением кеша
	messages.afterList = func() {
		_, err := svc.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: b.ID, Content: "two"})
		require.NoError(t, err)
	}

	first, err := svc.ListMessages(ctx, chat.ID, 0)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.False(t, mr.Exists(fmt.Sprintf("chat:%d:messages", chat.ID)))

	second, err := svc.ListMessages(ctx, chat.ID, 0)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "two", second[1].Content)
}

func TestListMessagesFallsBackWhenCacheIsDown(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	env := newTestEnv(t, repository.NewMessageCacheRepository(rdb, time.Hour))
	a := env.register(t, "+1", "A")
	chat, err := env.chats.CreateAIChat(ctx, a.ID)
	require.NoError(t, err)

	mr.SetError("LOADING")

	_, err = env.messages.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: a.ID, Content: "still works"})
	require.NoError(t, err)

	messages, err := env.messages.ListMessages(ctx, chat.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "still works", messages[0].Content)
}
