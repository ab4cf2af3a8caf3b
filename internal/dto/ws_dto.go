package dto

// WebSocketAction WebSocket text message type
// WebSocket 文本消息类型
type WebSocketAction = string

const (
	// Client -> Server
	// 客户端发起

	// NoteJoin join a note collaboration session
	// NoteJoin 加入笔记协作会话
	NoteJoin WebSocketAction = "NoteJoin"
	// NoteLeave leave a note collaboration session
	// NoteLeave 离开笔记协作会话
	NoteLeave WebSocketAction = "NoteLeave"
	// NoteUpdate push a content change to the session
	// NoteUpdate 推送内容修改到会话
	NoteUpdate WebSocketAction = "NoteUpdate"
	// CursorMove report the caret position
	// CursorMove 上报光标位置
	CursorMove WebSocketAction = "CursorMove"
	// TypingStart mark the user as typing
	// TypingStart 标记用户开始输入
	TypingStart WebSocketAction = "TypingStart"
	// TypingStop clear the typing mark
	// TypingStop 清除输入标记
	TypingStop WebSocketAction = "TypingStop"

	// Server -> Client
	// 服务端推送

	// NoteUpdated broadcast after a content change is persisted
	// NoteUpdated 内容修改入库后广播
	NoteUpdated WebSocketAction = "NoteUpdated"
	// CursorMoved broadcast of another participant's caret
	// CursorMoved 其他参与者光标广播
	CursorMoved WebSocketAction = "CursorMoved"
	// CollaboratorJoined a participant entered the session
	// CollaboratorJoined 参与者进入会话
	CollaboratorJoined WebSocketAction = "CollaboratorJoined"
	// CollaboratorLeft a participant left the session
	// CollaboratorLeft 参与者离开会话
	CollaboratorLeft WebSocketAction = "CollaboratorLeft"
	// UserStartedTyping a participant started typing
	// UserStartedTyping 参与者开始输入
	UserStartedTyping WebSocketAction = "UserStartedTyping"
	// UserStoppedTyping a participant stopped typing
	// UserStoppedTyping 参与者停止输入
	UserStoppedTyping WebSocketAction = "UserStoppedTyping"
	// SessionClosed the note was deleted and the session force closed
	// SessionClosed 笔记被删除，会话被强制关闭
	SessionClosed WebSocketAction = "SessionClosed"
)

// NoteJoinRequest 加入会话请求
type NoteJoinRequest struct {
	NoteID int64 `json:"noteId" binding:"required"`
}

// NoteLeaveRequest 离开会话请求
type NoteLeaveRequest struct {
	NoteID int64 `json:"noteId" binding:"required"`
}

// NoteUpdateRequest 会话内内容修改请求
type NoteUpdateRequest struct {
	NoteID  int64  `json:"noteId" binding:"required"`
	Content string `json:"content" binding:""`
	Title   string `json:"title" binding:""`
}

// CursorMoveRequest 光标移动请求
type CursorMoveRequest struct {
	NoteID int64 `json:"noteId" binding:"required"`
	Offset int   `json:"offset"`
}

// TypingRequest 输入状态请求，TypingStart 与 TypingStop 共用
type TypingRequest struct {
	NoteID int64 `json:"noteId" binding:"required"`
}

// ParticipantDTO 会话参与者
type ParticipantDTO struct {
	UID      int64  `json:"uid"`
	Username string `json:"username"`
	Offset   int    `json:"offset"`
	IsTyping bool   `json:"isTyping"`
}

// NoteJoinedEvent 加入会话成功后回发给加入者
type NoteJoinedEvent struct {
	NoteID       int64            `json:"noteId"`
	Participants []ParticipantDTO `json:"participants"`
	Note         *NoteDTO         `json:"note"`
}

// CollaboratorEvent 参与者进出会话的广播载荷
type CollaboratorEvent struct {
	NoteID   int64  `json:"noteId"`
	UID      int64  `json:"uid"`
	Username string `json:"username"`
}

// NoteUpdatedEvent 内容修改广播载荷
type NoteUpdatedEvent struct {
	NoteID  int64  `json:"noteId"`
	UID     int64  `json:"uid"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Version int64  `json:"version"`
}

// CursorMovedEvent 光标广播载荷
type CursorMovedEvent struct {
	NoteID int64 `json:"noteId"`
	UID    int64 `json:"uid"`
	Offset int   `json:"offset"`
}

// TypingEvent 输入状态广播载荷
type TypingEvent struct {
	NoteID int64 `json:"noteId"`
	UID    int64 `json:"uid"`
}

// SessionClosedEvent 会话强制关闭广播载荷
type SessionClosedEvent struct {
	NoteID int64  `json:"noteId"`
	Reason string `json:"reason"`
}
