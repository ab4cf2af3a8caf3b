package model

import "github.com/notepadplus/notepad-collab-service/pkg/timex"

const TableNameNoteGrant = "note_grant"

// NoteGrant mapped from table <note_grant>
// 同一 (note_id, uid) 仅存在一条记录，保证共享幂等
type NoteGrant struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	NoteID    int64      `gorm:"column:note_id;not null;uniqueIndex:idx_note_uid,priority:1" json:"noteId" form:"noteId"`
	UID       int64      `gorm:"column:uid;not null;uniqueIndex:idx_note_uid,priority:2;index:idx_uid" json:"uid" form:"uid"`
	Kind      string     `gorm:"column:kind;not null;default:write" json:"kind" form:"kind"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName NoteGrant's table name
func (*NoteGrant) TableName() string {
	return TableNameNoteGrant
}
