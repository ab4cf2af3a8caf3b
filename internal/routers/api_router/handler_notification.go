package api_router

import (
	"context"

	"github.com/notepadplus/notepad-collab-service/internal/app"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	"github.com/notepadplus/notepad-collab-service/internal/middleware"
	pkgapp "github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"
	apperrors "github.com/notepadplus/notepad-collab-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler notification API router handler
// NotificationHandler 通知 API 路由处理器
type NotificationHandler struct {
	*Handler
}

// NewNotificationHandler creates NotificationHandler instance
// NewNotificationHandler 创建 NotificationHandler 实例
func NewNotificationHandler(a *app.App) *NotificationHandler {
	return &NotificationHandler{
		Handler: NewHandler(a),
	}
}

// List lists notifications of current user
// @Summary List notifications
// @Description 获取当前用户的通知列表，按创建时间倒序。
// @Tags Notification
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.ListRes{list=[]dto.NotificationDTO} "Success"
// @Router /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}

	list, total, err := h.App.NotificationService.List(ctx, uid, pager)
	if err != nil {
		h.logError(ctx, "NotificationHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, total)
}

// UnreadCount returns count of unread notifications
// @Summary Unread notification count
// @Description 获取当前用户的未读通知数量。
// @Tags Notification
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res "Success"
// @Router /api/notifications/unread_count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	count, err := h.App.NotificationService.UnreadCount(ctx, uid)
	if err != nil {
		h.logError(ctx, "NotificationHandler.UnreadCount", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(map[string]int64{"count": count}))
}

// MarkRead marks a single notification as read
// @Summary Mark notification read
// @Description 标记单条通知为已读。
// @Tags Notification
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NotificationMarkReadRequest true "Mark Read Parameters"
// @Success 200 {object} pkgapp.Res "Success"
// @Router /api/notification/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NotificationMarkReadRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NotificationHandler.MarkRead.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.NotificationService.MarkRead(ctx, uid, params); err != nil {
		h.logError(ctx, "NotificationHandler.MarkRead", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// MarkAllRead marks all notifications as read
// @Summary Mark all notifications read
// @Description 标记当前用户全部通知为已读。
// @Tags Notification
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res "Success"
// @Router /api/notifications/read_all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.NotificationService.MarkAllRead(ctx, uid); err != nil {
		h.logError(ctx, "NotificationHandler.MarkAllRead", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// logError 记录错误日志，包含 Trace ID
func (h *NotificationHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
