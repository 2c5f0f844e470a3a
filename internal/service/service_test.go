package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/pkg/openai"
	"tush00nka/chattik/internal/pkg/testdb"
	"tush00nka/chattik/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	history []openai.Message
}

func (f *fakeCompleter) Chat(ctx context.Context, history []openai.Message, options ...openai.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.history = history
	return f.reply, f.err
}

type testEnv struct {
	db       *gorm.DB
	users    UserService
	contacts ContactService
	chats    ChatService
	messages MessageService
	ai       *fakeCompleter
}

func newTestEnv(t *testing.T, cache repository.MessageCacheRepository) *testEnv {
	t.Helper()

	db := testdb.New(t)
	log := zap.NewNop()
	completer := &fakeCompleter{reply: "Привет! Чем помочь?"}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)

	return &testEnv{
		db:       db,
		users:    NewUserService(userRepo, log),
		contacts: NewContactService(repository.NewContactRepository(db), userRepo, log),
		chats:    NewChatService(chatRepo, userRepo, log),
		messages: NewMessageService(
			repository.NewMessageRepository(db),
			chatRepo,
			userRepo,
			cache,
			NewAIService(completer, log),
			log,
		),
		ai: completer,
	}
}

func (e *testEnv) register(t *testing.T, phone, name string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), phone, name, "")
	require.NoError(t, err)
	return u
}

var errBoom = errors.New("boom")
