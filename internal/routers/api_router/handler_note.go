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

// NoteHandler note API router handler
// NoteHandler 笔记 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler creates NoteHandler instance
// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App, wss *pkgapp.WebsocketServer) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// Create creates a note
// @Summary Create note
// @Description 创建新笔记，初始可见性为 personal。
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "Create Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	noteDTO, err := h.App.NoteService.Create(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// Get retrieves a single note
// @Summary Get note
// @Description 获取单条笔记，读权限由可见性状态与授权决定。
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Note ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note [get]
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteGetRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Get.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	noteDTO, err := h.App.NoteService.Get(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// Modify modifies a note
// @Summary Modify note
// @Description 修改笔记标题、内容或分类，需要写权限。
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteModifyRequest true "Modify Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note [put]
func (h *NoteHandler) Modify(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteModifyRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Modify.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	noteDTO, err := h.App.NoteService.Modify(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Modify", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	// 通知会话内其他参与者
	h.App.Collab.Broadcast(noteDTO.ID, dto.NoteUpdated, dto.NoteUpdatedEvent{
		NoteID:  noteDTO.ID,
		UID:     uid,
		Title:   noteDTO.Title,
		Content: noteDTO.Content,
		Version: noteDTO.Version,
	}, nil)

	response.ToResponse(code.Success.WithData(noteDTO))
}

// Delete deletes a note
// @Summary Delete note
// @Description 删除笔记及其全部授权，仅所有者可操作。
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Note ID"
// @Success 200 {object} pkgapp.Res "Success"
// @Router /api/note [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Delete.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.NoteService.Delete(ctx, uid, params); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Share grants a collaborator access to a note
// @Summary Share note
// @Description 给协作者授权并迁移可见性状态，仅所有者可操作，重复授权幂等。
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteShareRequest true "Share Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note/share [post]
func (h *NoteHandler) Share(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteShareRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Share.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	noteDTO, err := h.App.NoteService.Share(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Share", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// Publish makes a note public
// @Summary Publish note
// @Description 公开笔记，公开后任意已登录用户可读且不可回退，重复公开幂等。
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NotePublishRequest true "Publish Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "Success"
// @Router /api/note/publish [post]
func (h *NoteHandler) Publish(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NotePublishRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Publish.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	noteDTO, err := h.App.NoteService.Publish(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Publish", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// ListOwned lists notes owned by current user
// @Summary List owned notes
// @Description 获取当前用户拥有的笔记列表，按更新时间倒序。
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.ListRes{list=[]dto.NoteNoContentDTO} "Success"
// @Router /api/notes [get]
func (h *NoteHandler) ListOwned(c *gin.Context) {
	h.list(c, "NoteHandler.ListOwned", h.App.NoteService.ListOwned)
}

// ListShared lists notes shared with current user
// @Summary List shared notes
// @Description 获取共享给当前用户的笔记列表，按更新时间倒序。
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.ListRes{list=[]dto.NoteNoContentDTO} "Success"
// @Router /api/notes/shared [get]
func (h *NoteHandler) ListShared(c *gin.Context) {
	h.list(c, "NoteHandler.ListShared", h.App.NoteService.ListShared)
}

// ListPublic lists public notes
// @Summary List public notes
// @Description 获取公开笔记列表，按更新时间倒序。
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.ListRes{list=[]dto.NoteNoContentDTO} "Success"
// @Router /api/notes/public [get]
func (h *NoteHandler) ListPublic(c *gin.Context) {
	h.list(c, "NoteHandler.ListPublic", h.App.NoteService.ListPublic)
}

// ListGrants lists grants of a note
// @Summary List note grants
// @Description 获取笔记的授权列表，仅所有者可查看。
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Note ID"
// @Success 200 {object} pkgapp.Res{data=[]dto.GrantDTO} "Success"
// @Router /api/note/grants [get]
func (h *NoteHandler) ListGrants(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteGetRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.ListGrants.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	grants, err := h.App.NoteService.ListGrants(ctx, uid, params.ID)
	if err != nil {
		h.logError(ctx, "NoteHandler.ListGrants", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(grants))
}

// list 列表接口公共流程
func (h *NoteHandler) list(c *gin.Context, method string, fn func(context.Context, int64, *pkgapp.Pager) ([]*dto.NoteNoContentDTO, int, error)) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}

	list, total, err := fn(ctx, uid, pager)
	if err != nil {
		h.logError(ctx, method, err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, total)
}

// logError records error log, including Trace ID
// logError 记录错误日志，包含 Trace ID
func (h *NoteHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
