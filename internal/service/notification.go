package service

import (
	"context"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository, userRepo repository.UserRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo, userRepo: userRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

func (s *notificationService) RegisterDeviceToken(ctx context.Context, userID int32, token string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.AddDeviceToken(ctx, userID, token)
}
