package task

import (
	"context"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/app"
	"github.com/notepadplus/notepad-collab-service/internal/service"
	"github.com/notepadplus/notepad-collab-service/pkg/util"

	"go.uber.org/zap"
)

// init 自动注册通知清理任务
func init() {
	Register(NewNotificationCleanupTask)
}

// NotificationCleanupTask 定期删除超过保留期的已读通知
type NotificationCleanupTask struct {
	svc      service.NotificationService
	logger   *zap.Logger
	interval time.Duration
}

// NewNotificationCleanupTask 创建通知清理任务
// 保留期未配置或为零时任务被禁用
func NewNotificationCleanupTask(a *app.App) (Task, error) {
	retentionStr := a.Config().App.NotificationRetention
	if retentionStr == "" {
		return nil, nil
	}
	duration, err := util.ParseDuration(retentionStr)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, nil
	}

	return &NotificationCleanupTask{
		svc:      a.NotificationService,
		logger:   a.Logger(),
		interval: time.Hour,
	}, nil
}

// Name 返回任务名称
func (t *NotificationCleanupTask) Name() string {
	return "NotificationCleanupTask"
}

// Run 执行清理任务
func (t *NotificationCleanupTask) Run(ctx context.Context) error {
	count, err := t.svc.CleanupRead(ctx)
	if err != nil {
		t.logger.Error(t.Name()+" failed", zap.Error(err))
		return err
	}
	if count > 0 {
		t.logger.Info(t.Name()+" completed", zap.Int64("deleted", count))
	}
	return nil
}

// LoopInterval 返回执行间隔
func (t *NotificationCleanupTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 是否立即执行一次
func (t *NotificationCleanupTask) IsStartupRun() bool {
	return true
}
