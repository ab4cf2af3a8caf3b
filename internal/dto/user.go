// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "github.com/notepadplus/notepad-collab-service/pkg/timex"

// UserCreateRequest 用户注册请求参数
type UserCreateRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`
	Username        string `json:"username" form:"username" binding:"required,username"`
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required"`
}

// UserLoginRequest 用户登录请求参数，Credentials 可以是邮箱或用户名
type UserLoginRequest struct {
	Credentials string `json:"credentials" form:"credentials" binding:"required"`
	Password    string `json:"password" form:"password" binding:"required"`
}

// UserChangePasswordRequest 修改密码请求参数
type UserChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" form:"oldPassword" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required"`
}

// UserSearchRequest 协作者搜索请求参数
type UserSearchRequest struct {
	Term string `json:"term" form:"term" binding:"required"`
}

// UserSearchDTO 协作者搜索结果条目
type UserSearchDTO struct {
	UID      int64  `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// UserDTO 用户数据传输对象
type UserDTO struct {
	UID       int64      `json:"uid"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Token     string     `json:"token"`
	Avatar    string     `json:"avatar"`
	UpdatedAt timex.Time `json:"updatedAt"`
	CreatedAt timex.Time `json:"createdAt"`
}
