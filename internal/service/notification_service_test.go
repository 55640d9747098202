package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

func newNotificationService(db *gorm.DB, redisClient *redis.Client) NotificationService {
	return NewNotificationService(
		repository.NewNotificationRepository(db),
		redisClient,
		"hackmate",
		nil,
		zerolog.Nop(),
	)
}

func TestSendSanitizesAndFansOut(t *testing.T) {
	db := openTestDB(t)

	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	svc := newNotificationService(db, redisClient)

	svc.Send(context.Background(), models.Notification{
		UserID:      7,
		HackathonID: 1,
		Type:        models.NotificationTypeShortlist,
		Message:     `You advanced! <script>alert("x")</script>`,
	})

	require.Eventually(t, func() bool {
		var count int64
		if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
			return false
		}
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	var stored models.Notification
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, "You advanced!", stored.Message)
	require.False(t, stored.Read)

	require.Eventually(t, func() bool {
		length, err := redisClient.XLen(context.Background(), "hackmate:notifications").Result()
		return err == nil && length == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSendDropsEmptyAndAnonymousMessages(t *testing.T) {
	db := openTestDB(t)
	svc := newNotificationService(db, nil)

	// Markup-only messages sanitize to nothing and are never stored.
	svc.Send(context.Background(), models.Notification{
		UserID: 7, HackathonID: 1, Type: models.NotificationTypeShortlist,
		Message: "<img src=x onerror=alert(1)>",
	})
	svc.Send(context.Background(), models.Notification{
		HackathonID: 1, Type: models.NotificationTypeShortlist, Message: "No recipient",
	})

	time.Sleep(100 * time.Millisecond)
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	db := openTestDB(t)
	svc := newNotificationService(db, nil)

	notification := models.Notification{
		UserID: 7, HackathonID: 1,
		Type: models.NotificationTypeShortlist, Message: "You advanced",
	}
	require.NoError(t, db.Create(&notification).Error)

	_, err := svc.MarkRead(context.Background(), notification.ID, 8)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	response, err := svc.MarkRead(context.Background(), notification.ID, 7)
	require.NoError(t, err)
	require.True(t, response.Read)

	_, err = svc.MarkRead(context.Background(), 999, 7)
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestListNotificationsPaginates(t *testing.T) {
	db := openTestDB(t)
	svc := newNotificationService(db, nil)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Notification{
			UserID: 7, HackathonID: 1,
			Type:      models.NotificationTypeShortlist,
			Message:   "Update",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}).Error)
	}
	require.NoError(t, db.Create(&models.Notification{
		UserID: 8, HackathonID: 1,
		Type: models.NotificationTypeShortlist, Message: "Someone else",
	}).Error)

	page, err := svc.List(context.Background(), 7, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)

	rest, err := svc.List(context.Background(), 7, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
}

func TestClearByTypeRemovesStaleAnnouncements(t *testing.T) {
	db := openTestDB(t)
	svc := newNotificationService(db, nil)

	require.NoError(t, db.Create(&models.Notification{
		UserID: 7, HackathonID: 1,
		Type: models.NotificationTypeWinnerAnnouncement, Message: "You won",
	}).Error)
	require.NoError(t, db.Create(&models.Notification{
		UserID: 7, HackathonID: 1,
		Type: models.NotificationTypeShortlist, Message: "You advanced",
	}).Error)

	removed, err := svc.ClearByType(context.Background(), 1, models.NotificationTypeWinnerAnnouncement)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
