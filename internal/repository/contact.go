package repository

import (
	"context"
	"fmt"

	"tush00nka/chattik/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactRepository interface {
	Add(ctx context.Context, userID, contactUserID uint) (bool, error)
	ListUsers(ctx context.Context, userID uint) ([]model.User, error)
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Add добавляет контакт; повторное добавление ничего не меняет.
// Первый результат - была ли вставлена новая строка.
func (r *contactRepository) Add(ctx context.Context, userID, contactUserID uint) (bool, error) {
	contact := model.Contact{UserID: userID, ContactUserID: contactUserID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&contact)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListUsers возвращает пользователей, добавленных в контакты, по имени
func (r *contactRepository) ListUsers(ctx context.Context, userID uint) ([]model.User, error) {
	db := r.db.WithContext(ctx)

	var users []model.User
	err := db.Table(table(db, &model.User{})+" u").
		Select("u.*").
		Joins(fmt.Sprintf("JOIN %s c ON c.contact_user_id = u.id", table(db, &model.Contact{}))).
		Where("c.user_id = ?", userID).
		Order("u.name ASC").
		Order("u.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
