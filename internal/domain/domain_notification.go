package domain

import "time"

// NotificationType 通知事件类型
type NotificationType int

const (
	// NotificationNewPublicNote 笔记被公开
	NotificationNewPublicNote NotificationType = 0
	// NotificationNoteShared 笔记被共享给当前用户
	NotificationNoteShared NotificationType = 1
)

// Notification 通知领域模型
type Notification struct {
	ID        int64
	UID       int64
	NoteID    int64
	Type      NotificationType
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// MarkRead 标记为已读
func (n *Notification) MarkRead() {
	n.IsRead = true
}
