package domain

import (
	"time"

	"github.com/pkg/errors"
)

// NoteStatus 笔记可见性状态
type NoteStatus string

const (
	// NoteStatusPersonal 仅所有者可见
	NoteStatusPersonal NoteStatus = "personal"
	// NoteStatusShared 所有者与被授权用户可见
	NoteStatusShared NoteStatus = "shared"
	// NoteStatusPublic 任意已登录用户可读，不可逆
	NoteStatusPublic NoteStatus = "public"
)

var (
	// ErrInvalidTransition 非法的可见性状态迁移
	ErrInvalidTransition = errors.New("invalid note status transition")
)

// Note 笔记领域模型
type Note struct {
	ID          int64
	OwnerUID    int64
	Title       string
	Content     string
	ContentHash string
	Category    string
	Status      NoteStatus
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPersonal 判断笔记是否为私有
func (n *Note) IsPersonal() bool {
	return n.Status == NoteStatusPersonal
}

// IsShared 判断笔记是否处于共享状态
func (n *Note) IsShared() bool {
	return n.Status == NoteStatusShared
}

// IsPublic 判断笔记是否已公开
func (n *Note) IsPublic() bool {
	return n.Status == NoteStatusPublic
}

// IsValidStatus 判断状态值是否合法
func IsValidStatus(s NoteStatus) bool {
	switch s {
	case NoteStatusPersonal, NoteStatusShared, NoteStatusPublic:
		return true
	}
	return false
}

// TransitionShare 计算共享动作后的状态
// personal/shared -> shared；public 已是终态，共享不再改变可见性
func TransitionShare(current NoteStatus) (NoteStatus, error) {
	switch current {
	case NoteStatusPersonal, NoteStatusShared:
		return NoteStatusShared, nil
	case NoteStatusPublic:
		// 公开后仍可追加授权，状态保持 public
		return NoteStatusPublic, nil
	}
	return current, ErrInvalidTransition
}

// TransitionPublish 计算发布动作后的状态
// personal/shared -> public；public -> public（幂等）
func TransitionPublish(current NoteStatus) (NoteStatus, error) {
	switch current {
	case NoteStatusPersonal, NoteStatusShared, NoteStatusPublic:
		return NoteStatusPublic, nil
	}
	return current, ErrInvalidTransition
}

// CanUnpublish 公开状态不可回退
func CanUnpublish(current NoteStatus) bool {
	return false
}
