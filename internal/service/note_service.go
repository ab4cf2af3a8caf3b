package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	"github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"
	"github.com/notepadplus/notepad-collab-service/pkg/diff"
	"github.com/notepadplus/notepad-collab-service/pkg/timex"
	"github.com/notepadplus/notepad-collab-service/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// NoteEventNotifier 笔记事件通知接口，由通知分发器实现
type NoteEventNotifier interface {
	// NotifyNoteShared 向被授权用户发送共享通知
	NotifyNoteShared(ctx context.Context, note *domain.Note, targetUID int64)

	// NotifyNotePublished 向授权持有者发送公开通知
	NotifyNotePublished(ctx context.Context, note *domain.Note)
}

// SessionCloser 协作会话关闭接口，由协作层实现
// 笔记删除后强制关闭其会话
type SessionCloser interface {
	CloseNote(noteID int64, reason string)
}

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 创建笔记，初始状态为 personal
	Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Get 获取单条笔记，按可见性状态与授权校验读权限
	Get(ctx context.Context, uid int64, params *dto.NoteGetRequest) (*dto.NoteDTO, error)

	// Modify 修改笔记，需要写权限；内容无实际变化时不增加版本号
	Modify(ctx context.Context, uid int64, params *dto.NoteModifyRequest) (*dto.NoteDTO, error)

	// Delete 删除笔记及其授权，仅所有者可操作
	Delete(ctx context.Context, uid int64, params *dto.NoteDeleteRequest) error

	// Share 授权协作者并迁移状态，仅所有者可操作
	Share(ctx context.Context, uid int64, params *dto.NoteShareRequest) (*dto.NoteDTO, error)

	// Publish 公开笔记，仅所有者可操作；公开是终态，重复公开幂等
	Publish(ctx context.Context, uid int64, params *dto.NotePublishRequest) (*dto.NoteDTO, error)

	// ListOwned 获取用户拥有的笔记列表
	ListOwned(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteNoContentDTO, int, error)

	// ListShared 获取共享给用户的笔记列表
	ListShared(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteNoContentDTO, int, error)

	// ListPublic 获取公开笔记列表
	ListPublic(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteNoContentDTO, int, error)

	// ListGrants 获取笔记的授权列表，仅所有者可查看
	ListGrants(ctx context.Context, uid int64, noteID int64) ([]*dto.GrantDTO, error)
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo      domain.NoteRepository
	grantRepo     domain.GrantRepository
	userRepo      domain.UserRepository
	notifier      NoteEventNotifier
	sessionCloser SessionCloser
	sf            *singleflight.Group
	logger        *zap.Logger
	config        *ServiceConfig
}

var _ NoteService = (*noteService)(nil)

// NewNoteService 创建 NoteService 实例
// notifier 与 sessionCloser 允许为 nil，便于测试与分步装配
func NewNoteService(
	noteRepo domain.NoteRepository,
	grantRepo domain.GrantRepository,
	userRepo domain.UserRepository,
	notifier NoteEventNotifier,
	sessionCloser SessionCloser,
	logger *zap.Logger,
	config *ServiceConfig,
) NoteService {
	return &noteService{
		noteRepo:      noteRepo,
		grantRepo:     grantRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		sessionCloser: sessionCloser,
		sf:            &singleflight.Group{},
		logger:        logger,
		config:        config,
	}
}

// SetSessionCloser 注入协作会话关闭器，装配期协作层晚于服务层创建
func (s *noteService) SetSessionCloser(closer SessionCloser) {
	s.sessionCloser = closer
}

// domainToDTO 将领域模型转换为 DTO，附带能力快照
func (s *noteService) domainToDTO(note *domain.Note, access domain.Access) *dto.NoteDTO {
	if note == nil {
		return nil
	}
	return &dto.NoteDTO{
		ID:          note.ID,
		OwnerUID:    note.OwnerUID,
		Title:       note.Title,
		Content:     note.Content,
		ContentHash: note.ContentHash,
		Category:    note.Category,
		Status:      string(note.Status),
		Version:     note.Version,
		CanWrite:    access.CanWrite,
		CanManage:   access.CanManage,
		UpdatedAt:   timex.Time(note.UpdatedAt),
		CreatedAt:   timex.Time(note.CreatedAt),
	}
}

// domainToNoContentDTO 将领域模型转换为无内容 DTO
func (s *noteService) domainToNoContentDTO(note *domain.Note) *dto.NoteNoContentDTO {
	if note == nil {
		return nil
	}
	return &dto.NoteNoContentDTO{
		ID:        note.ID,
		OwnerUID:  note.OwnerUID,
		Title:     note.Title,
		Category:  note.Category,
		Status:    string(note.Status),
		Version:   note.Version,
		UpdatedAt: timex.Time(note.UpdatedAt),
		CreatedAt: timex.Time(note.CreatedAt),
	}
}

// getNoteWithAccess 获取笔记并计算当前用户的能力快照
// 同一笔记的并发查询通过 singleflight 合并为一次仓储访问
func (s *noteService) getNoteWithAccess(ctx context.Context, uid int64, noteID int64) (*domain.Note, domain.Access, error) {
	v, err, _ := s.sf.Do(fmt.Sprintf("Note_%d", noteID), func() (any, error) {
		return s.noteRepo.GetByID(ctx, noteID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Access{}, code.ErrorNoteNotFound
		}
		return nil, domain.Access{}, code.ErrorDBQuery.WithDetails(err.Error())
	}

	// 合并的调用方各持有独立副本，避免后续修改共享同一实例
	noteCopy := *(v.(*domain.Note))
	note := &noteCopy

	var grants []*domain.NoteGrant
	grant, err := s.grantRepo.Get(ctx, noteID, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Access{}, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if grant != nil {
		grants = append(grants, grant)
	}

	return note, domain.EvaluateAccess(uid, note, grants), nil
}

// Create 创建笔记，初始状态为 personal
func (s *noteService) Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	newNote := &domain.Note{
		OwnerUID:    uid,
		Title:       params.Title,
		Content:     params.Content,
		ContentHash: util.EncodeHash32(params.Content),
		Category:    params.Category,
		Status:      domain.NoteStatusPersonal,
		Version:     1,
	}

	note, err := s.noteRepo.Create(ctx, newNote)
	if err != nil {
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}

	return s.domainToDTO(note, domain.EvaluateAccess(uid, note, nil)), nil
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, uid int64, params *dto.NoteGetRequest) (*dto.NoteDTO, error) {
	note, access, err := s.getNoteWithAccess(ctx, uid, params.ID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead {
		// 不暴露笔记是否存在
		return nil, code.ErrorNoteNotFound
	}
	return s.domainToDTO(note, access), nil
}

// Modify 修改笔记
func (s *noteService) Modify(ctx context.Context, uid int64, params *dto.NoteModifyRequest) (*dto.NoteDTO, error) {
	note, access, err := s.getNoteWithAccess(ctx, uid, params.ID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead {
		return nil, code.ErrorNoteNotFound
	}
	if !access.CanWrite {
		return nil, code.ErrorNoteForbidden
	}

	titleChanged := params.Title != "" && params.Title != note.Title
	categoryChanged := params.Category != "" && params.Category != note.Category
	contentChanged := diff.HasChanges(note.Content, params.Content)

	// 无实际变化时直接返回当前版本，不触发写入
	if !titleChanged && !categoryChanged && !contentChanged {
		return s.domainToDTO(note, access), nil
	}

	if titleChanged {
		note.Title = params.Title
	}
	if categoryChanged {
		note.Category = params.Category
	}
	if contentChanged {
		note.Content = params.Content
		note.ContentHash = util.EncodeHash32(params.Content)
	}

	updated, err := s.noteRepo.Update(ctx, note)
	if err != nil {
		return nil, code.ErrorNoteModifyFailed.WithDetails(err.Error())
	}

	return s.domainToDTO(updated, access), nil
}

// Delete 删除笔记及其授权
func (s *noteService) Delete(ctx context.Context, uid int64, params *dto.NoteDeleteRequest) error {
	note, access, err := s.getNoteWithAccess(ctx, uid, params.ID)
	if err != nil {
		return err
	}
	if !access.CanManage {
		if !access.CanRead {
			return code.ErrorNoteNotFound
		}
		return code.ErrorNoteForbidden
	}

	if err := s.noteRepo.DeleteTx(ctx, note.ID); err != nil {
		return code.ErrorNoteDeleteFailed.WithDetails(err.Error())
	}

	// 删除后强制关闭协作会话
	if s.sessionCloser != nil {
		s.sessionCloser.CloseNote(note.ID, "note deleted")
	}

	if s.logger != nil {
		s.logger.Info("note deleted",
			zap.Int64("uid", uid),
			zap.Int64("noteId", note.ID),
		)
	}
	return nil
}

// Share 授权协作者并迁移状态
func (s *noteService) Share(ctx context.Context, uid int64, params *dto.NoteShareRequest) (*dto.NoteDTO, error) {
	note, access, err := s.getNoteWithAccess(ctx, uid, params.ID)
	if err != nil {
		return nil, err
	}
	if !access.CanManage {
		if !access.CanRead {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteForbidden
	}

	// 根据凭证类型查找协作者
	var collaborator *domain.User
	if util.IsValidEmail(params.Collaborator) {
		collaborator, err = s.userRepo.GetByEmail(ctx, params.Collaborator)
	} else {
		collaborator, err = s.userRepo.GetByUsername(ctx, params.Collaborator)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorCollaboratorNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if collaborator.UID == uid {
		return nil, code.ErrorShareWithSelf
	}

	nextStatus, err := domain.TransitionShare(note.Status)
	if err != nil {
		return nil, code.ErrorNoteShareFailed.WithDetails(err.Error())
	}

	grant := &domain.NoteGrant{
		NoteID: note.ID,
		UID:    collaborator.UID,
		Kind:   domain.GrantKind(params.Kind),
	}

	// 授权写入与状态迁移在同一事务内完成
	if err := s.noteRepo.ShareTx(ctx, note.ID, nextStatus, grant); err != nil {
		return nil, code.ErrorNoteShareFailed.WithDetails(err.Error())
	}
	note.Status = nextStatus

	if s.notifier != nil {
		s.notifier.NotifyNoteShared(ctx, note, collaborator.UID)
	}

	if s.logger != nil {
		s.logger.Info("note shared",
			zap.Int64("uid", uid),
			zap.Int64("noteId", note.ID),
			zap.Int64("targetUid", collaborator.UID),
			zap.String("kind", params.Kind),
		)
	}
	return s.domainToDTO(note, access), nil
}

// Publish 公开笔记，公开是终态
func (s *noteService) Publish(ctx context.Context, uid int64, params *dto.NotePublishRequest) (*dto.NoteDTO, error) {
	note, access, err := s.getNoteWithAccess(ctx, uid, params.ID)
	if err != nil {
		return nil, err
	}
	if !access.CanManage {
		if !access.CanRead {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteForbidden
	}

	// 重复公开幂等，不再次通知
	if note.IsPublic() {
		return s.domainToDTO(note, access), nil
	}

	nextStatus, err := domain.TransitionPublish(note.Status)
	if err != nil {
		return nil, code.ErrorNotePublishFailed.WithDetails(err.Error())
	}

	if err := s.noteRepo.UpdateStatus(ctx, nextStatus, note.ID); err != nil {
		return nil, code.ErrorNotePublishFailed.WithDetails(err.Error())
	}
	note.Status = nextStatus

	if s.notifier != nil {
		s.notifier.NotifyNotePublished(ctx, note)
	}

	if s.logger != nil {
		s.logger.Info("note published",
			zap.Int64("uid", uid),
			zap.Int64("noteId", note.ID),
		)
	}
	return s.domainToDTO(note, access), nil
}

// ListOwned 获取用户拥有的笔记列表
func (s *noteService) ListOwned(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteNoContentDTO, int, error) {
	count, err := s.noteRepo.ListByOwnerCount(ctx, uid)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	notes, err := s.noteRepo.ListByOwner(ctx, uid, pager.Page, pager.PageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	list := make([]*dto.NoteNoContentDTO, 0, len(notes))
	for _, note := range notes {
		list = append(list, s.domainToNoContentDTO(note))
	}
	return list, int(count), nil
}

// ListShared 获取共享给用户的笔记列表
func (s *noteService) ListShared(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteNoContentDTO, int, error) {
	count, err := s.noteRepo.ListSharedWithCount(ctx, uid)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	notes, err := s.noteRepo.ListSharedWith(ctx, uid, pager.Page, pager.PageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	list := make([]*dto.NoteNoContentDTO, 0, len(notes))
	for _, note := range notes {
		list = append(list, s.domainToNoContentDTO(note))
	}
	return list, int(count), nil
}

// ListPublic 获取公开笔记列表
func (s *noteService) ListPublic(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteNoContentDTO, int, error) {
	count, err := s.noteRepo.ListPublicCount(ctx)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	notes, err := s.noteRepo.ListPublic(ctx, pager.Page, pager.PageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	list := make([]*dto.NoteNoContentDTO, 0, len(notes))
	for _, note := range notes {
		list = append(list, s.domainToNoContentDTO(note))
	}
	return list, int(count), nil
}

// ListGrants 获取笔记的授权列表
func (s *noteService) ListGrants(ctx context.Context, uid int64, noteID int64) ([]*dto.GrantDTO, error) {
	note, access, err := s.getNoteWithAccess(ctx, uid, noteID)
	if err != nil {
		return nil, err
	}
	if !access.CanManage {
		if !access.CanRead {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteForbidden
	}

	grants, err := s.grantRepo.ListByNote(ctx, note.ID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	list := make([]*dto.GrantDTO, 0, len(grants))
	for _, g := range grants {
		item := &dto.GrantDTO{
			UID:       g.UID,
			Kind:      string(g.Kind),
			CreatedAt: timex.Time(g.CreatedAt),
		}
		if user, err := s.userRepo.GetByUID(ctx, g.UID); err == nil && user != nil {
			item.Username = user.Username
		}
		list = append(list, item)
	}
	return list, nil
}
