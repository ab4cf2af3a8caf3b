// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/model"
	"github.com/notepadplus/notepad-collab-service/pkg/fileurl"
	"github.com/notepadplus/notepad-collab-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RunMode         string
}

// Dao 数据访问对象，持有数据库连接与写队列
type Dao struct {
	db         *gorm.DB
	ctx        context.Context
	config     *DatabaseConfig
	logger     *zap.Logger
	writeQueue *writequeue.Manager

	migrateOnce sync.Map // map[string]*sync.Once
}

// Option Dao 配置项
type Option func(*Dao)

// WithConfig 注入数据库配置
func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) {
		d.config = c
	}
}

// WithLogger 注入日志器
func WithLogger(lg *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = lg
	}
}

// WithWriteQueueManager 注入写队列管理器
func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) {
		d.writeQueue = m
	}
}

// New 创建 Dao 实例
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{
		db:  db,
		ctx: ctx,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// DB 获取底层 gorm 连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// WithContext 获取绑定上下文的会话
func (d *Dao) WithContext(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// UseWithOnceMigrate 获取会话并按模型键执行一次 AutoMigrate
func (d *Dao) UseWithOnceMigrate(ctx context.Context, key string) *gorm.DB {
	if d.config == nil || d.config.AutoMigrate {
		onceVal, _ := d.migrateOnce.LoadOrStore(key, &sync.Once{})
		onceVal.(*sync.Once).Do(func() {
			if err := model.AutoMigrate(d.db, key); err != nil {
				d.logger.Error("auto migrate failed", zap.String("model", key), zap.Error(err))
			}
		})
	}
	return d.db.WithContext(ctx)
}

// ExecuteWrite 通过笔记写队列串行化写操作
// 写队列未注入时直接执行
func (d *Dao) ExecuteWrite(ctx context.Context, noteID int64, fn func() error) error {
	if d.writeQueue == nil {
		return fn()
	}
	return d.writeQueue.Execute(ctx, noteID, fn)
}

// NewDBEngine 初始化 GORM 连接
func NewDBEngine(c *DatabaseConfig) (*gorm.DB, error) {

	db, err := gorm.Open(dialector(c), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, err
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	} else {
		db.Config.Logger = logger.Default.LogMode(logger.Silent)
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SetMaxIdleConns 用于设置连接池中空闲连接的最大数量。
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)

	// SetMaxOpenConns 设置打开数据库连接的最大数量。
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)

	// SetConnMaxLifetime 设置了连接可复用的最大时间。
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Minute * 10)
	}
	if c.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	return db, nil
}

func dialector(c *DatabaseConfig) gorm.Dialector {
	if c.Type == "mysql" {
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		))
	} else if c.Type == "sqlite" {

		if !fileurl.IsExist(c.Path) {
			fileurl.CreatePath(c.Path, os.ModePerm)
		}
		return sqlite.Open(c.Path)
	}
	return nil
}
