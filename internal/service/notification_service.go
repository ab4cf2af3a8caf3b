package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	"github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"
	"github.com/notepadplus/notepad-collab-service/pkg/mailer"
	"github.com/notepadplus/notepad-collab-service/pkg/timex"
	"github.com/notepadplus/notepad-collab-service/pkg/util"
	"github.com/notepadplus/notepad-collab-service/pkg/workerpool"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService 定义通知业务服务接口
type NotificationService interface {
	// List 获取用户的通知列表
	List(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NotificationDTO, int, error)

	// UnreadCount 获取用户的未读通知数量
	UnreadCount(ctx context.Context, uid int64) (int64, error)

	// MarkRead 标记单条通知为已读
	MarkRead(ctx context.Context, uid int64, params *dto.NotificationMarkReadRequest) error

	// MarkAllRead 标记全部通知为已读
	MarkAllRead(ctx context.Context, uid int64) error

	// CleanupRead 删除超过保留期的已读通知，返回删除数量
	CleanupRead(ctx context.Context) (int64, error)
}

// notificationService 实现 NotificationService 接口
// 同时作为 NoteEventNotifier 承担共享与公开事件的分发
type notificationService struct {
	notificationRepo domain.NotificationRepository
	userRepo         domain.UserRepository
	pool             *workerpool.Pool
	mail             *mailer.Mailer
	logger           *zap.Logger
	config           *ServiceConfig
}

var _ NotificationService = (*notificationService)(nil)
var _ NoteEventNotifier = (*notificationService)(nil)

// NewNotificationService 创建 NotificationService 实例
// pool 与 mail 允许为 nil，为 nil 时分发退化为同步写库、不发邮件
func NewNotificationService(
	notificationRepo domain.NotificationRepository,
	userRepo domain.UserRepository,
	pool *workerpool.Pool,
	mail *mailer.Mailer,
	logger *zap.Logger,
	config *ServiceConfig,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pool:             pool,
		mail:             mail,
		logger:           logger,
		config:           config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *notificationService) domainToDTO(n *domain.Notification) *dto.NotificationDTO {
	if n == nil {
		return nil
	}
	return &dto.NotificationDTO{
		ID:        n.ID,
		NoteID:    n.NoteID,
		Type:      int(n.Type),
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: timex.Time(n.CreatedAt),
	}
}

// List 获取用户的通知列表
func (s *notificationService) List(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NotificationDTO, int, error) {
	count, err := s.notificationRepo.ListCount(ctx, uid)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	notifications, err := s.notificationRepo.List(ctx, uid, pager.Page, pager.PageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	list := make([]*dto.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		list = append(list, s.domainToDTO(n))
	}
	return list, int(count), nil
}

// UnreadCount 获取用户的未读通知数量
func (s *notificationService) UnreadCount(ctx context.Context, uid int64) (int64, error) {
	count, err := s.notificationRepo.UnreadCount(ctx, uid)
	if err != nil {
		return 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return count, nil
}

// MarkRead 标记单条通知为已读
func (s *notificationService) MarkRead(ctx context.Context, uid int64, params *dto.NotificationMarkReadRequest) error {
	if err := s.notificationRepo.MarkRead(ctx, params.ID, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorNotificationNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	return nil
}

// MarkAllRead 标记全部通知为已读
func (s *notificationService) MarkAllRead(ctx context.Context, uid int64) error {
	if err := s.notificationRepo.MarkAllRead(ctx, uid); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	return nil
}

// CleanupRead 删除超过保留期的已读通知
func (s *notificationService) CleanupRead(ctx context.Context) (int64, error) {
	if s.config == nil || s.config.App.NotificationRetention == "" {
		return 0, nil
	}
	retention, err := util.ParseDuration(s.config.App.NotificationRetention)
	if err != nil || retention <= 0 {
		return 0, nil
	}
	return s.notificationRepo.DeleteReadBefore(ctx, time.Now().Add(-retention).Unix())
}

// NotifyNoteShared 向被授权用户发送共享通知
func (s *notificationService) NotifyNoteShared(ctx context.Context, note *domain.Note, targetUID int64) {
	message := fmt.Sprintf("笔记《%s》已共享给你", note.Title)
	s.dispatch(ctx, &domain.Notification{
		UID:     targetUID,
		NoteID:  note.ID,
		Type:    domain.NotificationNoteShared,
		Message: message,
	})
}

// NotifyNotePublished 向所有其他用户广播公开通知
func (s *notificationService) NotifyNotePublished(ctx context.Context, note *domain.Note) {
	uids, err := s.userRepo.GetAllUIDs(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("notification publish fanout failed",
				zap.Int64("noteId", note.ID),
				zap.Error(err),
			)
		}
		return
	}

	message := fmt.Sprintf("笔记《%s》已公开", note.Title)
	for _, uid := range uids {
		if uid == note.OwnerUID {
			continue
		}
		s.dispatch(ctx, &domain.Notification{
			UID:     uid,
			NoteID:  note.ID,
			Type:    domain.NotificationNewPublicNote,
			Message: message,
		})
	}
}

// dispatch 将通知写库并按需发送邮件
// 有协程池时异步执行，避免阻塞请求链路
func (s *notificationService) dispatch(ctx context.Context, n *domain.Notification) {
	task := func(taskCtx context.Context) error {
		created, err := s.notificationRepo.Create(taskCtx, n)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("notification create failed",
					zap.Int64("uid", n.UID),
					zap.Int64("noteId", n.NoteID),
					zap.Error(err),
				)
			}
			return err
		}
		s.sendMail(taskCtx, created)
		return nil
	}

	if s.pool != nil && !s.pool.IsClosed() {
		if err := s.pool.SubmitAsync(context.WithoutCancel(ctx), task); err == nil {
			return
		}
	}
	_ = task(ctx)
}

// sendMail 给开启邮箱的用户发送通知邮件
func (s *notificationService) sendMail(ctx context.Context, n *domain.Notification) {
	if s.mail == nil || !s.mail.IsEnabled() {
		return
	}
	user, err := s.userRepo.GetByUID(ctx, n.UID)
	if err != nil || !user.HasEmail() {
		return
	}
	if err := s.mail.Send(user.Email, "笔记通知", n.Message); err != nil && s.logger != nil {
		s.logger.Warn("notification mail send failed",
			zap.Int64("uid", n.UID),
			zap.Error(err),
		)
	}
}
