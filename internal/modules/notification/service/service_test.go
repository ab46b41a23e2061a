package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/pkg/apperror"
)

type memNotificationRepo struct {
	items []entity.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	n.ID = uuid.New()
	r.items = append(r.items, *n)
	return nil
}

func (r *memNotificationRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	var out []entity.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) MarkAsRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	for i := range r.items {
		if r.items[i].UserID == userID {
			r.items[i].IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func TestNotifyReferralAccessed(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil)
	staffID := uuid.New()
	ctx := context.Background()

	referral := &entity.Referral{
		ID:           5,
		UserID:       &staffID,
		ReferralDate: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		CaseUser:     &entity.CaseLoadUser{FirstName: "Sam", LastName: "Reed"},
	}
	require.NoError(t, svc.NotifyReferralAccessed(ctx, referral, &entity.Resource{ID: 7, Name: "Food Bank"}))

	require.Len(t, repo.items, 1)
	n := repo.items[0]
	assert.Equal(t, staffID, n.UserID)
	assert.Equal(t, uint(5), n.ReferralID)
	assert.Equal(t, uint(7), n.ResourceID)
	assert.Equal(t, entity.NotificationReferralAccessed, n.Type)
	assert.Equal(t, "Sam Reed opened Food Bank from the referral sent on Mar 5, 2024", n.Message)

	count, err := svc.UnreadCount(ctx, staffID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotifyWithoutReferrerIsNoop(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil)

	require.NoError(t, svc.NotifyReferralAccessed(context.Background(), &entity.Referral{ID: 1}, nil))
	assert.Empty(t, repo.items)
}

func TestMarkAsReadIsScopedToOwner(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	require.NoError(t, svc.CreateNotification(ctx, &entity.Notification{UserID: owner, Type: entity.NotificationReferralAccessed}))
	require.NoError(t, svc.CreateNotification(ctx, &entity.Notification{UserID: owner, Type: entity.NotificationReferralAccessed}))
	id := repo.items[0].ID

	assert.ErrorIs(t, svc.MarkAsRead(ctx, id, other), apperror.ErrNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, id, owner))

	count, _ := svc.UnreadCount(ctx, owner)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.MarkAllAsRead(ctx, owner))
	count, _ = svc.UnreadCount(ctx, owner)
	assert.Zero(t, count)

	list, err := svc.GetNotifications(ctx, owner, 0, -1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
