package dto

import "github.com/notepadplus/notepad-collab-service/pkg/timex"

// NotificationDTO 通知数据传输对象
type NotificationDTO struct {
	ID        int64      `json:"id"`
	NoteID    int64      `json:"noteId"`
	Type      int        `json:"type"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"isRead"`
	CreatedAt timex.Time `json:"createdAt"`
}

// NotificationMarkReadRequest 标记单条通知已读的请求参数
type NotificationMarkReadRequest struct {
	ID int64 `json:"id" form:"id" binding:"required"`
}
