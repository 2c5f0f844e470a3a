package repository

import (
	"context"
	"time"

	"tush00nka/chattik/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	SetOnline(ctx context.Context, id uint, online bool) error
	ListExcept(ctx context.Context, id uint) ([]model.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert создает пользователя или, если телефон уже занят, обновляет
// имя, аватар и отметку присутствия. Возвращает итоговую строку.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	db := r.db.WithContext(ctx)

	user.IsOnline = true
	user.LastSeen = db.NowFunc()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "avatar", "is_online", "last_seen"}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}

	return r.FindByPhone(ctx, user.Phone)
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SetOnline не считает ошибкой отсутствие пользователя: ноль затронутых строк - норма.
func (r *userRepository) SetOnline(ctx context.Context, id uint, online bool) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online": online,
			"last_seen": time.Now().UTC(),
		}).Error
}

func (r *userRepository) ListExcept(ctx context.Context, id uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", id).
		Order("name ASC").
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
