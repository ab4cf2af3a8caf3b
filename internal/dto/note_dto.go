// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/notepadplus/notepad-collab-service/pkg/timex"
)

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID          int64      `json:"id" form:"id"`
	OwnerUID    int64      `json:"ownerUid"`
	Title       string     `json:"title" form:"title"`
	Content     string     `json:"content" form:"content"`
	ContentHash string     `json:"contentHash" form:"contentHash"`
	Category    string     `json:"category" form:"category"`
	Status      string     `json:"status"`
	Version     int64      `json:"version"`
	CanWrite    bool       `json:"canWrite"`
	CanManage   bool       `json:"canManage"`
	UpdatedAt   timex.Time `json:"updatedAt"`
	CreatedAt   timex.Time `json:"createdAt"`
}

// NoteNoContentDTO Note DTO without content, used by listing endpoints
// NoteNoContentDTO 不包含内容的笔记 DTO，列表接口使用
type NoteNoContentDTO struct {
	ID        int64      `json:"id"`
	OwnerUID  int64      `json:"ownerUid"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Status    string     `json:"status"`
	Version   int64      `json:"version"`
	UpdatedAt timex.Time `json:"updatedAt"`
	CreatedAt timex.Time `json:"createdAt"`
}

// NoteCreateRequest Request parameters for creating a note
// 用于创建笔记的请求参数
type NoteCreateRequest struct {
	Title    string `json:"title" form:"title" binding:"required"`
	Content  string `json:"content" form:"content" binding:""`
	Category string `json:"category" form:"category" binding:""`
}

// NoteModifyRequest Request parameters for modifying a note
// 用于修改笔记的请求参数
type NoteModifyRequest struct {
	ID       int64  `json:"id" form:"id" binding:"required"`
	Title    string `json:"title" form:"title" binding:""`
	Content  string `json:"content" form:"content" binding:""`
	Category string `json:"category" form:"category" binding:""`
}

// NoteGetRequest Request parameters for fetching a single note
// 用于获取单条笔记的请求参数
type NoteGetRequest struct {
	ID int64 `json:"id" form:"id" binding:"required"`
}

// NoteDeleteRequest Request parameters for deleting a note
// 用于删除笔记的请求参数
type NoteDeleteRequest struct {
	ID int64 `json:"id" form:"id" binding:"required"`
}

// NoteShareRequest Request parameters for granting a collaborator access
// 用于给协作者授权的请求参数
type NoteShareRequest struct {
	ID           int64  `json:"id" form:"id" binding:"required"`
	Collaborator string `json:"collaborator" form:"collaborator" binding:"required"`
	Kind         string `json:"kind" form:"kind" binding:"required,oneof=read write"`
}

// NotePublishRequest Request parameters for publishing a note
// 用于公开笔记的请求参数
type NotePublishRequest struct {
	ID int64 `json:"id" form:"id" binding:"required"`
}

// GrantDTO 授权数据传输对象
type GrantDTO struct {
	UID       int64      `json:"uid"`
	Username  string     `json:"username"`
	Kind      string     `json:"kind"`
	CreatedAt timex.Time `json:"createdAt"`
}
