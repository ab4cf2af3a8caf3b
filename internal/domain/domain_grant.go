package domain

import "time"

// GrantKind 授权类型
type GrantKind string

const (
	// GrantKindRead 只读授权
	GrantKindRead GrantKind = "read"
	// GrantKindWrite 读写授权，共享协作者默认持有
	GrantKindWrite GrantKind = "write"
)

// NoteGrant 笔记授权记录
// 协作者即持有 write 授权的用户，单表承载共享关系
type NoteGrant struct {
	ID        int64
	NoteID    int64
	UID       int64
	Kind      GrantKind
	CreatedAt time.Time
}

// CanWrite 授权是否允许写入
func (g *NoteGrant) CanWrite() bool {
	return g.Kind == GrantKindWrite
}
