// Package collab 维护笔记协作会话与参与者在线状态
package collab

import (
	"fmt"
	"sync"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/dto"
	"github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

// Participant 会话参与者，按连接维护
// 同一用户多端连接时每个连接是独立参与者
type Participant struct {
	Client   *app.WebsocketClient
	UID      int64
	Username string
	Offset   int
	IsTyping bool
	TypingAt time.Time
	JoinedAt time.Time
}

// session 单篇笔记的协作会话
// 首个参与者加入时创建，最后一个离开时销毁
type session struct {
	noteID       int64
	participants map[*gws.Conn]*Participant
}

// Registry 会话注册表
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*session
	logger   *zap.Logger
}

// NewRegistry 创建会话注册表
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[int64]*session),
		logger:   logger,
	}
}

// Join 将连接加入笔记会话，返回加入后的参与者快照
func (r *Registry) Join(client *app.WebsocketClient, noteID int64) []dto.ParticipantDTO {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[noteID]
	if !ok {
		s = &session{
			noteID:       noteID,
			participants: make(map[*gws.Conn]*Participant),
		}
		r.sessions[noteID] = s
	}

	s.participants[client.Conn()] = &Participant{
		Client:   client,
		UID:      client.User.UID,
		Username: client.User.Username,
		JoinedAt: time.Now(),
	}

	if r.logger != nil {
		r.logger.Info("collab session join",
			zap.Int64("noteId", noteID),
			zap.Int64("uid", client.User.UID),
			zap.Int("participants", len(s.participants)),
		)
	}
	return snapshot(s)
}

// Leave 将连接移出笔记会话，返回是否确实在会话中
func (r *Registry) Leave(client *app.WebsocketClient, noteID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(client.Conn(), noteID)
}

// LeaveAll 将连接移出其加入的全部会话，返回离开的笔记ID
// 连接断开时由关闭回调调用
func (r *Registry) LeaveAll(client *app.WebsocketClient) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var left []int64
	for noteID, s := range r.sessions {
		if _, ok := s.participants[client.Conn()]; ok {
			r.leaveLocked(client.Conn(), noteID)
			left = append(left, noteID)
		}
	}
	return left
}

// leaveLocked 调用方需持有 r.mu
func (r *Registry) leaveLocked(conn *gws.Conn, noteID int64) bool {
	s, ok := r.sessions[noteID]
	if !ok {
		return false
	}
	if _, ok := s.participants[conn]; !ok {
		return false
	}
	delete(s.participants, conn)
	if len(s.participants) == 0 {
		delete(r.sessions, noteID)
	}
	return true
}

// IsJoined 判断连接是否在笔记会话中
func (r *Registry) IsJoined(client *app.WebsocketClient, noteID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[noteID]
	if !ok {
		return false
	}
	_, ok = s.participants[client.Conn()]
	return ok
}

// SetCursor 更新参与者光标位置，返回是否在会话中
func (r *Registry) SetCursor(client *app.WebsocketClient, noteID int64, offset int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.participant(client.Conn(), noteID)
	if p == nil {
		return false
	}
	p.Offset = offset
	return true
}

// SetTyping 更新参与者输入状态，返回是否在会话中
func (r *Registry) SetTyping(client *app.WebsocketClient, noteID int64, typing bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.participant(client.Conn(), noteID)
	if p == nil {
		return false
	}
	p.IsTyping = typing
	if typing {
		p.TypingAt = time.Now()
	}
	return true
}

// participant 调用方需持有 r.mu
func (r *Registry) participant(conn *gws.Conn, noteID int64) *Participant {
	s, ok := r.sessions[noteID]
	if !ok {
		return nil
	}
	return s.participants[conn]
}

// Participants 获取会话参与者快照
func (r *Registry) Participants(noteID int64) []dto.ParticipantDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[noteID]
	if !ok {
		return nil
	}
	return snapshot(s)
}

// SessionCount 当前活跃会话数
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ParticipantCount 指定会话的参与者数
func (r *Registry) ParticipantCount(noteID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[noteID]
	if !ok {
		return 0
	}
	return len(s.participants)
}

// Broadcast 向会话内全部参与者推送事件，exclude 为排除的连接（通常是发起方）
func (r *Registry) Broadcast(noteID int64, action string, payload any, exclude *gws.Conn) {
	r.mu.RLock()
	s, ok := r.sessions[noteID]
	if !ok {
		r.mu.RUnlock()
		return
	}
	conns := make([]*gws.Conn, 0, len(s.participants))
	for conn := range s.participants {
		if exclude != nil && conn == exclude {
			continue
		}
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	if len(conns) == 0 {
		return
	}
	r.push(conns, action, payload)
}

// CloseNote 强制关闭笔记会话并通知参与者
// 笔记删除后调用
func (r *Registry) CloseNote(noteID int64, reason string) {
	r.mu.Lock()
	s, ok := r.sessions[noteID]
	if !ok {
		r.mu.Unlock()
		return
	}
	conns := make([]*gws.Conn, 0, len(s.participants))
	for conn := range s.participants {
		conns = append(conns, conn)
	}
	delete(r.sessions, noteID)
	r.mu.Unlock()

	r.push(conns, dto.SessionClosed, dto.SessionClosedEvent{
		NoteID: noteID,
		Reason: reason,
	})

	if r.logger != nil {
		r.logger.Info("collab session closed",
			zap.Int64("noteId", noteID),
			zap.String("reason", reason),
			zap.Int("participants", len(conns)),
		)
	}
}

// SweepTyping 清除超时未续报的输入状态并广播停止事件
// 由定时任务调用
func (r *Registry) SweepTyping(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	type stale struct {
		noteID int64
		uid    int64
		conn   *gws.Conn
	}
	var expired []stale

	r.mu.Lock()
	deadline := time.Now().Add(-timeout)
	for noteID, s := range r.sessions {
		for conn, p := range s.participants {
			if p.IsTyping && p.TypingAt.Before(deadline) {
				p.IsTyping = false
				expired = append(expired, stale{noteID: noteID, uid: p.UID, conn: conn})
			}
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		r.Broadcast(e.noteID, dto.UserStoppedTyping, dto.TypingEvent{
			NoteID: e.noteID,
			UID:    e.uid,
		}, e.conn)
	}
}

// snapshot 调用方需持有 r.mu
func snapshot(s *session) []dto.ParticipantDTO {
	list := make([]dto.ParticipantDTO, 0, len(s.participants))
	for _, p := range s.participants {
		list = append(list, dto.ParticipantDTO{
			UID:      p.UID,
			Username: p.Username,
			Offset:   p.Offset,
			IsTyping: p.IsTyping,
		})
	}
	return list
}

// push 按 action|json 帧格式向一批连接推送
func (r *Registry) push(conns []*gws.Conn, action string, payload any) {
	body, err := sonic.Marshal(app.ResResult{
		Code:   code.Success.Code(),
		Status: true,
		Data:   payload,
	})
	if err != nil {
		if r.logger != nil {
			r.logger.Error("collab broadcast marshal failed", zap.Error(err))
		}
		return
	}
	frame := []byte(fmt.Sprintf("%s|%s", action, body))

	b := gws.NewBroadcaster(gws.OpcodeText, frame)
	defer b.Close()
	for _, conn := range conns {
		_ = b.Broadcast(conn)
	}
}
