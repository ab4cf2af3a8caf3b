package model

import "github.com/notepadplus/notepad-collab-service/pkg/timex"

const TableNameNotification = "notification"

// Notification mapped from table <notification>
type Notification struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	UID       int64      `gorm:"column:uid;not null;index:idx_uid" json:"uid" form:"uid"`
	NoteID    int64      `gorm:"column:note_id;not null" json:"noteId" form:"noteId"`
	Type      int        `gorm:"column:type;not null" json:"type" form:"type"`
	Message   string     `gorm:"column:message" json:"message" form:"message"`
	IsRead    bool       `gorm:"column:is_read;default:false;index:idx_read" json:"isRead" form:"isRead"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName Notification's table name
func (*Notification) TableName() string {
	return TableNameNotification
}
