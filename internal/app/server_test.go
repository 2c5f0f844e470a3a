package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tush00nka/chattik/internal/config"
	"tush00nka/chattik/internal/handler"
	"tush00nka/chattik/internal/pkg/openai"
	"tush00nka/chattik/internal/pkg/storage"
	"tush00nka/chattik/internal/pkg/testdb"
	"tush00nka/chattik/internal/repository"
	"tush00nka/chattik/internal/service"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db := testdb.New(t)
	log := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	ai := service.NewAIService(nil, log)

	h := handler.NewHandler(
		service.NewUserService(userRepo, log),
		service.NewContactService(repository.NewContactRepository(db), userRepo, log),
		service.NewChatService(chatRepo, userRepo, log),
		service.NewMessageService(repository.NewMessageRepository(db), chatRepo, userRepo, nil, ai, log),
		ai,
		log,
	)

	store, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	return NewServer(log, h, handler.NewUploadHandler(service.NewUploadService(store, log), log))
}

func TestCORSPreflightRequest(t *testing.T) {
	server := newTestServer(t)

	for _, target := range []string{"/messages", "/api", "/upload", "/anything"} {
		req := httptest.NewRequest(http.MethodOptions, target, nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		rr := httptest.NewRecorder()
		server.Handler().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, target)
		assert.Empty(t, rr.Body.String(), target)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Type, X-User-Id", rr.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "86400", rr.Header().Get("Access-Control-Max-Age"))
	}
}

func TestCORSWithActualRequest(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name   string
		method string
		target string
		origin string
		status int
	}{
		{"with origin", http.MethodGet, "/ping", "http://example.com", http.StatusOK},
		{"without origin", http.MethodGet, "/ping", "", http.StatusOK},
		{"error response", http.MethodGet, "/api", "", http.StatusBadRequest},
		{"method not allowed", http.MethodPut, "/messages", "", http.StatusMethodNotAllowed},
		{"swagger doc", http.MethodGet, "/swagger/doc.json", "http://example.com", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			server.Handler().ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSwaggerDocIsServed(t *testing.T) {
	server := newTestServer(t)

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"swagger"`)
	assert.Contains(t, rr.Body.String(), "/messages")
}

func TestRecoveryHandler(t *testing.T) {
	server := newTestServer(t)
	server.router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	server := &Server{router: mux.NewRouter(), handler: http.NotFoundHandler(), logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, server.Run(ctx, "0"))
}

func TestNewCompleterRequiresKey(t *testing.T) {
	assert.Nil(t, newCompleter(&config.Config{}))
	assert.NotNil(t, newCompleter(&config.Config{OpenAIAPIKey: "sk-test", OpenAIModel: "gpt-3.5-turbo"}))
}

func TestNewStorageDefaultsToLocal(t *testing.T) {
	store, err := newStorage(context.Background(), &config.Config{UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, store)
}

func TestNewMessageCacheWithoutRedis(t *testing.T) {
	cache, err := newMessageCache(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.NotNil(t, cache)
}

func TestWriteTimeoutCoversAI(t *testing.T) {
	assert.Greater(t, writeTimeoutFor(30*time.Second), 30*time.Second)
	assert.Greater(t, writeTimeoutFor(2*time.Minute), 2*time.Minute)
	assert.Greater(t, writeTimeoutFor(0), openai.DefaultTimeout)
	assert.Equal(t, defaultWriteTimeout, writeTimeoutFor(time.Second))

	srv := newTestServer(t)
	assert.Equal(t, defaultWriteTimeout, srv.writeTimeout)
}
