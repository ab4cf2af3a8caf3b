package dao

import (
	"context"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/model"
	"github.com/notepadplus/notepad-collab-service/pkg/timex"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// grantRepository 实现 domain.GrantRepository 接口
type grantRepository struct {
	dao *Dao
}

// NewGrantRepository 创建 GrantRepository 实例
func NewGrantRepository(dao *Dao) domain.GrantRepository {
	return &grantRepository{dao: dao}
}

func (r *grantRepository) grant(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceMigrate(ctx, "NoteGrant")
}

func (r *grantRepository) toDomain(m *model.NoteGrant) *domain.NoteGrant {
	if m == nil {
		return nil
	}
	return &domain.NoteGrant{
		ID:        m.ID,
		NoteID:    m.NoteID,
		UID:       m.UID,
		Kind:      domain.GrantKind(m.Kind),
		CreatedAt: time.Time(m.CreatedAt),
	}
}

// Get 获取指定用户对指定笔记的授权
func (r *grantRepository) Get(ctx context.Context, noteID, uid int64) (*domain.NoteGrant, error) {
	var m model.NoteGrant
	err := r.grant(ctx).Where("note_id = ? AND uid = ?", noteID, uid).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// ListByNote 获取笔记的全部授权
func (r *grantRepository) ListByNote(ctx context.Context, noteID int64) ([]*domain.NoteGrant, error) {
	var ms []*model.NoteGrant
	err := r.grant(ctx).Where("note_id = ?", noteID).Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.NoteGrant, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// ListByUser 获取用户持有的全部授权
func (r *grantRepository) ListByUser(ctx context.Context, uid int64) ([]*domain.NoteGrant, error) {
	var ms []*model.NoteGrant
	err := r.grant(ctx).Where("uid = ?", uid).Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.NoteGrant, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// Create 创建授权，同一 (noteID, uid) 幂等
func (r *grantRepository) Create(ctx context.Context, grant *domain.NoteGrant) (*domain.NoteGrant, error) {
	m := &model.NoteGrant{
		NoteID:    grant.NoteID,
		UID:       grant.UID,
		Kind:      string(grant.Kind),
		CreatedAt: timex.Now(),
	}
	err := r.dao.ExecuteWrite(ctx, grant.NoteID, func() error {
		return r.grant(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "note_id"}, {Name: "uid"}},
			DoNothing: true,
		}).Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, grant.NoteID, grant.UID)
}

// DeleteByNote 删除笔记的全部授权
func (r *grantRepository) DeleteByNote(ctx context.Context, noteID int64) error {
	return r.dao.ExecuteWrite(ctx, noteID, func() error {
		return r.grant(ctx).Where("note_id = ?", noteID).Delete(&model.NoteGrant{}).Error
	})
}

// 确保 grantRepository 实现了 domain.GrantRepository 接口
var _ domain.GrantRepository = (*grantRepository)(nil)
