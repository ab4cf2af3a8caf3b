// Package domain 定义领域模型和接口
package domain

import "context"

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// UpdatePassword 更新用户密码
	UpdatePassword(ctx context.Context, password string, uid int64) error

	// GetAllUIDs 获取所有用户UID
	GetAllUIDs(ctx context.Context) ([]int64, error)

	// Search 按用户名或邮箱模糊搜索未删除用户
	Search(ctx context.Context, term string, limit int) ([]*User, error)
}

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, id int64) (*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update 更新笔记内容字段，不改变状态与所有者
	Update(ctx context.Context, note *Note) (*Note, error)

	// UpdateStatus 更新笔记可见性状态
	UpdateStatus(ctx context.Context, status NoteStatus, id int64) error

	// Delete 物理删除笔记
	Delete(ctx context.Context, id int64) error

	// ListByOwner 获取用户拥有的笔记，按更新时间倒序
	ListByOwner(ctx context.Context, uid int64, page, pageSize int) ([]*Note, error)

	// ListByOwnerCount 获取用户拥有的笔记数量
	ListByOwnerCount(ctx context.Context, uid int64) (int64, error)

	// ListSharedWith 获取共享给用户的笔记（持有授权且状态为 shared），按更新时间倒序
	ListSharedWith(ctx context.Context, uid int64, page, pageSize int) ([]*Note, error)

	// ListSharedWithCount 获取共享给用户的笔记数量
	ListSharedWithCount(ctx context.Context, uid int64) (int64, error)

	// ListPublic 获取公开笔记，按更新时间倒序
	ListPublic(ctx context.Context, page, pageSize int) ([]*Note, error)

	// ListPublicCount 获取公开笔记数量
	ListPublicCount(ctx context.Context) (int64, error)

	// ShareTx 在单个事务中追加授权并迁移状态，保证不出现半应用状态
	ShareTx(ctx context.Context, noteID int64, status NoteStatus, grant *NoteGrant) error

	// DeleteTx 在单个事务中删除笔记及其授权记录
	DeleteTx(ctx context.Context, noteID int64) error
}

// GrantRepository 授权仓储接口
type GrantRepository interface {
	// Get 获取指定用户对指定笔记的授权
	Get(ctx context.Context, noteID, uid int64) (*NoteGrant, error)

	// ListByNote 获取笔记的全部授权
	ListByNote(ctx context.Context, noteID int64) ([]*NoteGrant, error)

	// ListByUser 获取用户持有的全部授权
	ListByUser(ctx context.Context, uid int64) ([]*NoteGrant, error)

	// Create 创建授权，同一 (noteID, uid) 幂等
	Create(ctx context.Context, grant *NoteGrant) (*NoteGrant, error)

	// DeleteByNote 删除笔记的全部授权
	DeleteByNote(ctx context.Context, noteID int64) error
}

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	// GetByID 根据ID获取通知
	GetByID(ctx context.Context, id, uid int64) (*Notification, error)

	// Create 创建通知
	Create(ctx context.Context, n *Notification) (*Notification, error)

	// List 获取用户的通知列表，按创建时间倒序
	List(ctx context.Context, uid int64, page, pageSize int) ([]*Notification, error)

	// ListCount 获取用户的通知数量
	ListCount(ctx context.Context, uid int64) (int64, error)

	// UnreadCount 获取用户的未读通知数量
	UnreadCount(ctx context.Context, uid int64) (int64, error)

	// MarkRead 标记单条通知为已读
	MarkRead(ctx context.Context, id, uid int64) error

	// MarkAllRead 标记用户全部通知为已读
	MarkAllRead(ctx context.Context, uid int64) error

	// DeleteReadBefore 删除指定时间前的已读通知
	DeleteReadBefore(ctx context.Context, timestamp int64) (int64, error)
}
