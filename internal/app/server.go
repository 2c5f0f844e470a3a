package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tush00nka/chattik/docs"
	"tush00nka/chattik/internal/handler"
	"tush00nka/chattik/internal/pkg/logger"
	"tush00nka/chattik/internal/pkg/openai"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	shutdownTimeout     = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	// запас сверх ожидания AI на запись в базу и ответ клиенту
	writeTimeoutMargin = 10 * time.Second
)

var (
	allowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	allowedHeaders = []string{"Content-Type", handler.UserIDHeader}
)

type Server struct {
	router       *mux.Router
	handler      http.Handler
	logger       *zap.Logger
	writeTimeout time.Duration
}

func NewServer(log *zap.Logger, h *handler.Handler, uploadHandler *handler.UploadHandler) *Server {
	router := mux.NewRouter()
	router.Use(logger.Middleware(log))

	// Routes
	router.HandleFunc("/ping", handler.Ping).Methods(http.MethodGet)
	h.RegisterRoutes(router)
	uploadHandler.RegisterRoutes(router)

	// doc.json регистрируем раньше префикса, иначе его перехватит UI
	router.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
	})
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods(allowedMethods),
		handlers.AllowedHeaders(allowedHeaders),
		handlers.MaxAge(86400),
		handlers.IgnoreOptions(),
	)

	chain := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log}),
		handlers.PrintRecoveryStack(true),
	)(preflight(cors(router)))

	return &Server{router: router, handler: chain, logger: log, writeTimeout: defaultWriteTimeout}
}

// writeTimeoutFor подбирает WriteTimeout так, чтобы send_message в AI-чат
// успевал дождаться ответа модели
func writeTimeoutFor(aiTimeout time.Duration) time.Duration {
	if aiTimeout <= 0 {
		aiTimeout = openai.DefaultTimeout
	}
	if t := aiTimeout + writeTimeoutMargin; t > defaultWriteTimeout {
		return t
	}
	return defaultWriteTimeout
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает порт до отмены ctx, затем дает активным запросам завершиться
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Handler:      s.handler,
		Addr:         ":" + port,
		WriteTimeout: s.writeTimeout,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// preflight отвечает на любой OPTIONS пустым 200 и проставляет
// Access-Control-Allow-Origin всем остальным ответам
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type recoveryLogger struct {
	log *zap.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("panic recovered", zap.Any("panic", v))
}
