package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/repository"

	"go.uber.org/zap"
)

// DefaultUserName - имя нового пользователя, если оно не передано
const DefaultUserName = "Пользователь"

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService создает новый экземпляр UserService
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger, now: time.Now}
}

// Register регистрирует пользователя по телефону или обновляет существующего
func (s *userService) Register(ctx context.Context, phone, name, avatar string) (*model.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, invalid("phone is required")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultUserName
	}

	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		r, _ := utf8.DecodeRuneInString(name)
		avatar = strings.ToUpper(string(r))
	}

	user, err := s.userRepo.Upsert(ctx, &model.User{Phone: phone, Name: name, Avatar: avatar})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", phone, err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	user.ResolvePresence(s.now())
	return user, nil
}

func (s *userService) SetOnlineStatus(ctx context.Context, userID uint, online bool) error {
	if userID == 0 {
		return invalid("user_id is required")
	}
	return s.userRepo.SetOnline(ctx, userID, online)
}

func (s *userService) SearchByPhone(ctx context.Context, phone string) (*model.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, invalid("phone is required")
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.ResolvePresence(s.now())
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, invalid("user_id is required")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.ResolvePresence(s.now())
	return user, nil
}

// ListUsers возвращает всех пользователей, кроме указанного
func (s *userService) ListUsers(ctx context.Context, exceptUserID uint) ([]model.User, error) {
	users, err := s.userRepo.ListExcept(ctx, exceptUserID)
	if err != nil {
		return nil, err
	}

	model.ResolvePresenceAll(users, s.now())
	return users, nil
}

// requireUsers проверяет, что все пользователи существуют
func requireUsers(ctx context.Context, repo repository.UserRepository, ids ...uint) error {
	for _, id := range ids {
		ok, err := repo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrUserNotFound, id)
		}
	}
	return nil
}
