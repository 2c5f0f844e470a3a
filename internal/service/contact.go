package service

import (
	"context"
	"time"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/repository"

	"go.uber.org/zap"
)

type contactService struct {
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewContactService создает новый экземпляр ContactService
func NewContactService(contactRepo repository.ContactRepository, userRepo repository.UserRepository, logger *zap.Logger) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		userRepo:    userRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// AddContact добавляет контакт; повторный вызов ничего не меняет
func (s *contactService) AddContact(ctx context.Context, userID, contactUserID uint) error {
	if userID == 0 || contactUserID == 0 {
		return invalid("user_id and contact_user_id are required")
	}
	if userID == contactUserID {
		return invalid("cannot add yourself as a contact")
	}

	if err := requireUsers(ctx, s.userRepo, userID, contactUserID); err != nil {
		return err
	}

	added, err := s.contactRepo.Add(ctx, userID, contactUserID)
	if err != nil {
		return err
	}
	if added {
		s.logger.Debug("contact added", zap.Uint("user_id", userID), zap.Uint("contact_user_id", contactUserID))
	}
	return nil
}

func (s *contactService) ListContacts(ctx context.Context, userID uint) ([]model.User, error) {
	if userID == 0 {
		return nil, invalid("user_id is required")
	}

	users, err := s.contactRepo.ListUsers(ctx, userID)
	if err != nil {
		return nil, err
	}

	model.ResolvePresenceAll(users, s.now())
	return users, nil
}
