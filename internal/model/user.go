package model

import "github.com/notepadplus/notepad-collab-service/pkg/timex"

const TableNameUser = "user"

// User mapped from table <user>
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid" form:"uid"`
	Email     string     `gorm:"column:email;index:idx_email" json:"email" form:"email"`
	Username  string     `gorm:"column:username;not null;uniqueIndex:idx_username" json:"username" form:"username"`
	Password  string     `gorm:"column:password;not null" json:"-" form:"-"`
	Avatar    string     `gorm:"column:avatar" json:"avatar" form:"avatar"`
	IsDeleted bool       `gorm:"column:is_deleted;default:false" json:"isDeleted" form:"isDeleted"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
	DeletedAt timex.Time `gorm:"column:deleted_at;type:datetime;default:NULL" json:"deletedAt" form:"deletedAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
