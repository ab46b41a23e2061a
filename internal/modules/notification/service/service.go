package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"newera.app/reentry/internal/entity"
	notifRepo "newera.app/reentry/internal/modules/notification/repository"
	"newera.app/reentry/pkg/apperror"
)

const maxPageSize = 100

// Channel is the redis pub/sub channel a staff member's websocket listens on.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	NotifyReferralAccessed(ctx context.Context, referral *entity.Referral, resource *entity.Resource) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, logger *zap.Logger) NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			err = s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err()
		}
		if err != nil {
			s.logger.Warn("failed to publish notification", zap.String("user_id", notification.UserID.String()), zap.Error(err))
		}
	}

	return nil
}

// NotifyReferralAccessed tells the referring staff member their client opened a resource link.
func (s *notificationService) NotifyReferralAccessed(ctx context.Context, referral *entity.Referral, resource *entity.Resource) error {
	if referral == nil || referral.UserID == nil {
		return nil
	}

	client := "Your client"
	if referral.CaseUser != nil {
		client = referral.CaseUser.FullName()
	}

	n := &entity.Notification{
		UserID:     *referral.UserID,
		ReferralID: referral.ID,
		Type:       entity.NotificationReferralAccessed,
		Message:    fmt.Sprintf("%s opened the referral sent on %s", client, referral.ReferralDate.Format("Jan 2, 2006")),
	}
	if resource != nil {
		n.ResourceID = resource.ID
		n.Message = fmt.Sprintf("%s opened %s from the referral sent on %s",
			client, resource.Name, referral.ReferralDate.Format("Jan 2, 2006"))
	}

	return s.CreateNotification(ctx, n)
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
