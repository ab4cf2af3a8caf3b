package dao

import (
	"context"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/model"
	"github.com/notepadplus/notepad-collab-service/pkg/timex"

	"gorm.io/gorm"
)

// notificationRepository 实现 domain.NotificationRepository 接口
type notificationRepository struct {
	dao *Dao
}

// NewNotificationRepository 创建 NotificationRepository 实例
func NewNotificationRepository(dao *Dao) domain.NotificationRepository {
	return &notificationRepository{dao: dao}
}

func (r *notificationRepository) notification(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceMigrate(ctx, "Notification")
}

func (r *notificationRepository) toDomain(m *model.Notification) *domain.Notification {
	if m == nil {
		return nil
	}
	return &domain.Notification{
		ID:        m.ID,
		UID:       m.UID,
		NoteID:    m.NoteID,
		Type:      domain.NotificationType(m.Type),
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: time.Time(m.CreatedAt),
	}
}

// GetByID 根据ID获取通知
func (r *notificationRepository) GetByID(ctx context.Context, id, uid int64) (*domain.Notification, error) {
	var m model.Notification
	err := r.notification(ctx).Where("id = ? AND uid = ?", id, uid).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建通知
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	m := &model.Notification{
		UID:       n.UID,
		NoteID:    n.NoteID,
		Type:      int(n.Type),
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: timex.Now(),
	}
	err := r.notification(ctx).Create(m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// List 获取用户的通知列表，按创建时间倒序
func (r *notificationRepository) List(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Notification, error) {
	var ms []*model.Notification
	q := r.notification(ctx).Where("uid = ?", uid).Order("created_at DESC")
	if pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Notification, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// ListCount 获取用户的通知数量
func (r *notificationRepository) ListCount(ctx context.Context, uid int64) (int64, error) {
	var count int64
	err := r.notification(ctx).Model(&model.Notification{}).Where("uid = ?", uid).Count(&count).Error
	return count, err
}

// UnreadCount 获取用户的未读通知数量
func (r *notificationRepository) UnreadCount(ctx context.Context, uid int64) (int64, error) {
	var count int64
	err := r.notification(ctx).Model(&model.Notification{}).
		Where("uid = ? AND is_read = ?", uid, false).Count(&count).Error
	return count, err
}

// MarkRead 标记单条通知为已读
func (r *notificationRepository) MarkRead(ctx context.Context, id, uid int64) error {
	result := r.notification(ctx).Model(&model.Notification{}).
		Where("id = ? AND uid = ?", id, uid).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead 标记用户全部通知为已读
func (r *notificationRepository) MarkAllRead(ctx context.Context, uid int64) error {
	return r.notification(ctx).Model(&model.Notification{}).
		Where("uid = ? AND is_read = ?", uid, false).
		Update("is_read", true).Error
}

// DeleteReadBefore 删除指定时间前的已读通知
func (r *notificationRepository) DeleteReadBefore(ctx context.Context, timestamp int64) (int64, error) {
	result := r.notification(ctx).
		Where("is_read = ? AND created_at < ?", true, timex.Time(time.Unix(timestamp, 0))).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

// 确保 notificationRepository 实现了 domain.NotificationRepository 接口
var _ domain.NotificationRepository = (*notificationRepository)(nil)
