package websocket_router

import (
	"fmt"

	"github.com/notepadplus/notepad-collab-service/internal/app"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	pkgapp "github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"

	"go.uber.org/zap"
)

// CollabWSHandler WebSocket collaboration handler
// CollabWSHandler WebSocket 协作处理器
// Uses App Container to inject dependencies
// 使用 App Container 注入依赖
type CollabWSHandler struct {
	*WSHandler
}

// NewCollabWSHandler creates CollabWSHandler instance
// NewCollabWSHandler 创建 CollabWSHandler 实例
func NewCollabWSHandler(a *app.App) *CollabWSHandler {
	return &CollabWSHandler{
		WSHandler: NewWSHandler(a),
	}
}

// UserInfo 连接鉴权后的用户有效性验证
// 注册为 WebsocketServer 的 UserDataSelectUse 回调
func (h *CollabWSHandler) UserInfo(c *pkgapp.WebsocketClient, uid int64) (*pkgapp.UserSelectEntity, error) {
	userDTO, err := h.App.UserService.GetInfo(c.Context(), uid)
	if err != nil || userDTO == nil {
		return nil, err
	}
	return &pkgapp.UserSelectEntity{
		UID:      userDTO.UID,
		Email:    userDTO.Email,
		Username: userDTO.Username,
	}, nil
}

// NoteJoin 处理加入笔记协作会话的消息
// 校验读权限后将连接加入会话，回发参与者快照，并向其他参与者广播加入事件
func (h *CollabWSHandler) NoteJoin(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteJoinRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.collab.NoteJoin.BindAndValid")
		return
	}

	ctx := c.Context()

	// 读权限校验，无权限时不暴露笔记是否存在
	// 同一连接对同一笔记的重复加入查询通过 SF 合并
	v, err, _ := c.SF.Do(fmt.Sprintf("NoteJoin_%d", params.NoteID), func() (any, error) {
		return h.App.NoteService.Get(ctx, c.User.UID, &dto.NoteGetRequest{ID: params.NoteID})
	})
	if err != nil {
		if codeErr, ok := err.(*code.Code); ok {
			h.logError(c, "websocket_router.collab.NoteJoin", err)
			c.ToResponse(codeErr, dto.NoteJoin)
			return
		}
		h.respondError(c, code.ErrorCollabJoinForbidden, err, "websocket_router.collab.NoteJoin")
		return
	}
	noteDTO := v.(*dto.NoteDTO)

	participants := h.App.Collab.Join(c, params.NoteID)

	h.logInfo(c, "websocket_router.collab.NoteJoin",
		zap.Int64("uid", c.User.UID),
		zap.Int64("noteId", params.NoteID),
		zap.Int("participants", len(participants)),
	)

	c.ToResponse(code.Success.WithData(dto.NoteJoinedEvent{
		NoteID:       params.NoteID,
		Participants: participants,
		Note:         noteDTO,
	}), dto.NoteJoin)

	h.App.Collab.Broadcast(params.NoteID, dto.CollaboratorJoined, dto.CollaboratorEvent{
		NoteID:   params.NoteID,
		UID:      c.User.UID,
		Username: c.User.Username,
	}, c.Conn())
}

// NoteLeave 处理离开笔记协作会话的消息
func (h *CollabWSHandler) NoteLeave(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteLeaveRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.collab.NoteLeave.BindAndValid")
		return
	}

	if !h.App.Collab.Leave(c, params.NoteID) {
		c.ToResponse(code.ErrorCollabNotJoined, dto.NoteLeave)
		return
	}

	c.ToResponse(code.Success, dto.NoteLeave)

	h.App.Collab.Broadcast(params.NoteID, dto.CollaboratorLeft, dto.CollaboratorEvent{
		NoteID:   params.NoteID,
		UID:      c.User.UID,
		Username: c.User.Username,
	}, c.Conn())
}

// NoteUpdate 处理会话内的内容修改消息
// 写权限校验与持久化由 NoteService 完成，成功后向其他参与者广播新内容
func (h *CollabWSHandler) NoteUpdate(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteUpdateRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.collab.NoteUpdate.BindAndValid")
		return
	}

	if !h.App.Collab.IsJoined(c, params.NoteID) {
		c.ToResponse(code.ErrorCollabNotJoined, dto.NoteUpdate)
		return
	}

	ctx := c.Context()

	noteDTO, err := h.App.NoteService.Modify(ctx, c.User.UID, &dto.NoteModifyRequest{
		ID:      params.NoteID,
		Title:   params.Title,
		Content: params.Content,
	})
	if err != nil {
		if codeErr, ok := err.(*code.Code); ok {
			h.logError(c, "websocket_router.collab.NoteUpdate", err)
			c.ToResponse(codeErr, dto.NoteUpdate)
			return
		}
		h.respondError(c, code.ErrorNoteModifyFailed, err, "websocket_router.collab.NoteUpdate")
		return
	}

	c.ToResponse(code.Success.WithData(noteDTO), dto.NoteUpdate)

	h.App.Collab.Broadcast(params.NoteID, dto.NoteUpdated, dto.NoteUpdatedEvent{
		NoteID:  noteDTO.ID,
		UID:     c.User.UID,
		Title:   noteDTO.Title,
		Content: noteDTO.Content,
		Version: noteDTO.Version,
	}, c.Conn())
}

// CursorMove 处理光标移动消息
// 高频消息，成功时不回发响应，仅广播给其他参与者
func (h *CollabWSHandler) CursorMove(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.CursorMoveRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.collab.CursorMove.BindAndValid")
		return
	}

	if !h.App.Collab.SetCursor(c, params.NoteID, params.Offset) {
		c.ToResponse(code.ErrorCollabNotJoined, dto.CursorMove)
		return
	}

	h.App.Collab.Broadcast(params.NoteID, dto.CursorMoved, dto.CursorMovedEvent{
		NoteID: params.NoteID,
		UID:    c.User.UID,
		Offset: params.Offset,
	}, c.Conn())
}

// TypingStart 处理开始输入消息
func (h *CollabWSHandler) TypingStart(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	h.typing(c, msg, true, dto.TypingStart, dto.UserStartedTyping)
}

// TypingStop 处理停止输入消息
func (h *CollabWSHandler) TypingStop(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	h.typing(c, msg, false, dto.TypingStop, dto.UserStoppedTyping)
}

// typing 输入状态消息公共流程
func (h *CollabWSHandler) typing(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage, state bool, action, event string) {
	params := &dto.TypingRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondErrorWithData(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, errs.MapsToString(), "websocket_router.collab.typing.BindAndValid")
		return
	}

	if !h.App.Collab.SetTyping(c, params.NoteID, state) {
		c.ToResponse(code.ErrorCollabNotJoined, action)
		return
	}

	h.App.Collab.Broadcast(params.NoteID, event, dto.TypingEvent{
		NoteID: params.NoteID,
		UID:    c.User.UID,
	}, c.Conn())
}

// OnConnClose 连接断开时的会话清理
// 注册为 WebsocketServer 的 CloseUse 回调，将连接移出全部会话并广播离开事件
func (h *CollabWSHandler) OnConnClose(c *pkgapp.WebsocketClient) {
	left := h.App.Collab.LeaveAll(c)
	for _, noteID := range left {
		h.App.Collab.Broadcast(noteID, dto.CollaboratorLeft, dto.CollaboratorEvent{
			NoteID:   noteID,
			UID:      c.User.UID,
			Username: c.User.Username,
		}, c.Conn())
	}
	if len(left) > 0 {
		h.logInfo(c, "websocket_router.collab.OnConnClose",
			zap.Int64("uid", c.User.UID),
			zap.Int("sessions", len(left)),
		)
	}
}
