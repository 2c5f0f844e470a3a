package repository

import (
	"errors"
	"fmt"
	"time"

	"tush00nka/chattik/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// ErrNotFound возвращается, когда запись не найдена
var ErrNotFound = errors.New("record not found")

// Options настраивает подключение к базе
type Options struct {
	// Schema - схема Postgres, в которой живут таблицы; пусто - схема по умолчанию
	Schema   string
	LogLevel logger.LogLevel
}

func NewDB(dsn string, opts Options) (*gorm.DB, error) {
	db, err := Open(postgres.Open(dsn), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Schema != "" {
		if err := db.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, opts.Schema)).Error; err != nil {
			return nil, fmt.Errorf("failed to create schema %s: %w", opts.Schema, err)
		}
	}

	// Настройка пула соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)           // Максимальное количество бездействующих соединений
	sqlDB.SetMaxOpenConns(100)          // Максимальное количество открытых соединений
	sqlDB.SetConnMaxLifetime(time.Hour) // Максимальное время жизни соединения

	return db, nil
}

// Open открывает gorm.DB поверх произвольного диалекта. Схема задается
// явно через префикс таблиц, а не через search_path соединения.
func Open(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	naming := schema.NamingStrategy{}
	if opts.Schema != "" {
		naming.TablePrefix = opts.Schema + "."
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		NamingStrategy: naming,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Migrate создает или обновляет таблицы
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Chat{},
		&model.ChatParticipant{},
		&model.GroupMember{},
		&model.Message{},
		&model.Contact{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// table возвращает экранированное имя таблицы модели с учетом схемы,
// для сырых запросов.
func table(db *gorm.DB, value interface{}) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(value); err != nil {
		return ""
	}
	return db.Statement.Quote(stmt.Schema.Table)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
