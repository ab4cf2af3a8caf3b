package model

import "github.com/notepadplus/notepad-collab-service/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	OwnerUID    int64      `gorm:"column:owner_uid;not null;index:idx_owner" json:"ownerUid" form:"ownerUid"`
	Title       string     `gorm:"column:title" json:"title" form:"title"`
	Content     string     `gorm:"column:content" json:"content" form:"content"`
	ContentHash string     `gorm:"column:content_hash" json:"contentHash" form:"contentHash"`
	Category    string     `gorm:"column:category" json:"category" form:"category"`
	Status      string     `gorm:"column:status;not null;default:personal;index:idx_status" json:"status" form:"status"`
	Version     int64      `gorm:"column:version;default:0" json:"version" form:"version"`
	CreatedAt   timex.Time `gorm:"column:created_at;type:datetime;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;type:datetime;autoUpdateTime:false;index:idx_updated_at" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
