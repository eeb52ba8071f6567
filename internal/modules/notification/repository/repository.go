package repository

import (
	"errors"
	"time"

	"anoa.com/apotekpos/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryRow is one grouped count over a user's unread notifications.
// The service layer reduces rows into the dashboard summary.
type SummaryRow struct {
	Priority       string
	ActionRequired bool
	Kind           string
	Count          int64
}

type NotificationRepository interface {
	Create(notification *model.Notification) error
	GetByUserID(userID uuid.UUID, limit, offset int) ([]model.Notification, error)
	// GetRecent returns the user's notifications created at or after since,
	// newest first. Feeds the cooldown filter.
	GetRecent(userID uuid.UUID, since time.Time) ([]model.Notification, error)
	MarkAsRead(id uuid.UUID) error
	MarkAllAsRead(userID uuid.UUID) error
	CountUnread(userID uuid.UUID) (int64, error)
	Delete(id uuid.UUID, userID uuid.UUID) error
	DeleteOlderThan(cutoff time.Time) (int64, error)
	SummaryRows(userID uuid.UUID) ([]SummaryRow, error)
	GetPreferences(userID uuid.UUID) (*model.NotificationPreference, error)
	SavePreferences(pref *model.NotificationPreference) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) GetByUserID(userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) GetRecent(userID uuid.UUID, since time.Time) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at desc").
		Find(&notifications).Error
	return notifications, err
}

// MarkAsRead is idempotent: is_read only ever moves to true and read_at is
// set on the first call only.
func (r *notificationRepository) MarkAsRead(id uuid.UUID) error {
	return r.db.Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("COALESCE(read_at, ?)", time.Now()),
		}).Error
}

func (r *notificationRepository) MarkAllAsRead(userID uuid.UUID) error {
	return r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("COALESCE(read_at, ?)", time.Now()),
		}).Error
}

func (r *notificationRepository) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) Delete(id uuid.UUID, userID uuid.UUID) error {
	// Scoped to the owner so one user cannot dismiss another's notification.
	return r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Notification{}).Error
}

func (r *notificationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) SummaryRows(userID uuid.UUID) ([]SummaryRow, error) {
	var rows []SummaryRow
	err := r.db.Model(&model.Notification{}).
		Select("priority, action_required, kind, count(*) as count").
		Where("user_id = ? AND is_read = ?", userID, false).
		Group("priority, action_required, kind").
		Scan(&rows).Error
	return rows, err
}

func (r *notificationRepository) GetPreferences(userID uuid.UUID) (*model.NotificationPreference, error) {
	var pref model.NotificationPreference
	err := r.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *notificationRepository) SavePreferences(pref *model.NotificationPreference) error {
	return r.db.Save(pref).Error
}
