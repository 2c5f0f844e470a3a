// Package testdb открывает для тестов SQLite в памяти с готовой схемой.
package testdb

import (
	"fmt"
	"testing"

	"tush00nka/chattik/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New возвращает изолированную базу с полной схемой и включенными внешними ключами.
// Соединение одно, поэтому внутри транзакции все запросы должны идти через tx.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := repository.Open(sqlite.Open(dsn), repository.Options{LogLevel: logger.Silent})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, repository.Migrate(db))
	return db
}
