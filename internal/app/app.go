// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/collab"
	"github.com/notepadplus/notepad-collab-service/internal/dao"
	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/model"
	"github.com/notepadplus/notepad-collab-service/internal/service"
	pkgapp "github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/mailer"
	"github.com/notepadplus/notepad-collab-service/pkg/util"
	"github.com/notepadplus/notepad-collab-service/pkg/workerpool"
	"github.com/notepadplus/notepad-collab-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	UserRepo         domain.UserRepository
	NoteRepo         domain.NoteRepository
	GrantRepo        domain.GrantRepository
	NotificationRepo domain.NotificationRepository

	// Service 层
	UserService         service.UserService
	NoteService         service.NoteService
	NotificationService service.NotificationService

	// 协作会话注册表
	Collab *collab.Registry

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	Mailer       *mailer.Mailer

	// StartTime 服务启动时间
	StartTime time.Time
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 创建 DatabaseConfig 用于 DAO
	dbConfig := &dao.DatabaseConfig{
		Type:         cfg.Database.Type,
		Path:         cfg.Database.Path,
		UserName:     cfg.Database.UserName,
		Password:     cfg.Database.Password,
		Host:         cfg.Database.Host,
		Name:         cfg.Database.Name,
		TablePrefix:  cfg.Database.TablePrefix,
		AutoMigrate:  cfg.Database.AutoMigrate,
		Charset:      cfg.Database.Charset,
		ParseTime:    cfg.Database.ParseTime,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		RunMode:      cfg.Server.RunMode,
	}
	if d, err := util.ParseDuration(cfg.Database.ConnMaxLifetime); err == nil {
		dbConfig.ConnMaxLifetime = d
	}
	if d, err := util.ParseDuration(cfg.Database.ConnMaxIdleTime); err == nil {
		dbConfig.ConnMaxIdleTime = d
	}

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(dbConfig),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
	)

	// 启动时迁移全部表，保证跨表事务可用
	if dbConfig.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, fmt.Errorf("auto migrate failed: %w", err)
		}
	}

	// 初始化 TokenManager
	tokenConfig := pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    "notepad-collab-service",
		Expiry:    cfg.GetTokenExpiry(),
	}
	a.TokenManager = pkgapp.NewTokenManager(tokenConfig)

	// 初始化邮件发送器
	a.Mailer = mailer.New(cfg.Email)

	// 初始化 Repository 层
	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.GrantRepo = dao.NewGrantRepository(a.Dao)
	a.NotificationRepo = dao.NewNotificationRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
		},
		App: service.AppServiceConfig{
			NotificationRetention: cfg.App.NotificationRetention,
			TypingTimeout:         cfg.App.TypingTimeout,
		},
	}

	// 初始化协作会话注册表
	a.Collab = collab.NewRegistry(logger)

	// 初始化 Service 层（依赖注入）
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger, svcConfig)
	a.NotificationService = service.NewNotificationService(a.NotificationRepo, a.UserRepo, a.workerPool, a.Mailer, logger, svcConfig)
	notifier, _ := a.NotificationService.(service.NoteEventNotifier)
	a.NoteService = service.NewNoteService(a.NoteRepo, a.GrantRepo, a.UserRepo, notifier, a.Collab, logger, svcConfig)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTask 提交任务到 Worker Pool
// 返回错误如果池已满或已关闭
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// SubmitTaskAsync 异步提交任务到 Worker Pool（不等待结果）
// 返回错误如果池已满或已关闭
func (a *App) SubmitTaskAsync(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, task)
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsReturnSuccess 是否返回成功响应
func (a *App) IsReturnSuccess() bool {
	return a.config.App.IsReturnSussess
}

// GetAuthTokenKey 获取 Token 密钥
func (a *App) GetAuthTokenKey() string {
	return a.config.Security.AuthTokenKey
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// ExecuteWrite 执行写操作（通过 Write Queue 按笔记串行化）
func (a *App) ExecuteWrite(ctx context.Context, noteID int64, fn func() error) error {
	return a.writeQueueMgr.Execute(ctx, noteID, fn)
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}
