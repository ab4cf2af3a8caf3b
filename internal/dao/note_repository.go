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

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) note(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceMigrate(ctx, "Note")
}

func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:          m.ID,
		OwnerUID:    m.OwnerUID,
		Title:       m.Title,
		Content:     m.Content,
		ContentHash: m.ContentHash,
		Category:    m.Category,
		Status:      domain.NoteStatus(m.Status),
		Version:     m.Version,
		CreatedAt:   time.Time(m.CreatedAt),
		UpdatedAt:   time.Time(m.UpdatedAt),
	}
}

func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		ID:          n.ID,
		OwnerUID:    n.OwnerUID,
		Title:       n.Title,
		Content:     n.Content,
		ContentHash: n.ContentHash,
		Category:    n.Category,
		Status:      string(n.Status),
		Version:     n.Version,
		CreatedAt:   timex.Time(n.CreatedAt),
		UpdatedAt:   timex.Time(n.UpdatedAt),
	}
}

func (r *noteRepository) toDomainList(ms []*model.Note) []*domain.Note {
	out := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	err := r.note(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	m.CreatedAt = timex.Now()
	m.UpdatedAt = timex.Now()

	var created *model.Note
	err := r.dao.ExecuteWrite(ctx, 0, func() error {
		if err := r.note(ctx).Create(m).Error; err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(created), nil
}

// Update 更新笔记内容字段，不改变状态与所有者
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	now := timex.Now()
	err := r.dao.ExecuteWrite(ctx, note.ID, func() error {
		return r.note(ctx).Model(&model.Note{}).Where("id = ?", note.ID).
			Updates(map[string]any{
				"title":        note.Title,
				"content":      note.Content,
				"content_hash": note.ContentHash,
				"category":     note.Category,
				"version":      gorm.Expr("version + 1"),
				"updated_at":   now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, note.ID)
}

// UpdateStatus 更新笔记可见性状态
func (r *noteRepository) UpdateStatus(ctx context.Context, status domain.NoteStatus, id int64) error {
	return r.dao.ExecuteWrite(ctx, id, func() error {
		return r.note(ctx).Model(&model.Note{}).Where("id = ?", id).
			Updates(map[string]any{
				"status":     string(status),
				"updated_at": timex.Now(),
			}).Error
	})
}

// Delete 物理删除笔记
func (r *noteRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.ExecuteWrite(ctx, id, func() error {
		return r.note(ctx).Where("id = ?", id).Delete(&model.Note{}).Error
	})
}

// ListByOwner 获取用户拥有的笔记，按更新时间倒序
func (r *noteRepository) ListByOwner(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Note, error) {
	var ms []*model.Note
	q := r.note(ctx).Where("owner_uid = ?", uid).Order("updated_at DESC")
	if pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// ListByOwnerCount 获取用户拥有的笔记数量
func (r *noteRepository) ListByOwnerCount(ctx context.Context, uid int64) (int64, error) {
	var count int64
	err := r.note(ctx).Model(&model.Note{}).Where("owner_uid = ?", uid).Count(&count).Error
	return count, err
}

// ListSharedWith 获取共享给用户的笔记（持有授权且状态为 shared），按更新时间倒序
func (r *noteRepository) ListSharedWith(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Note, error) {
	var ms []*model.Note
	q := r.note(ctx).
		Joins("JOIN "+model.TableNameNoteGrant+" ON "+model.TableNameNoteGrant+".note_id = "+model.TableNameNote+".id").
		Where(model.TableNameNoteGrant+".uid = ? AND "+model.TableNameNote+".status = ?", uid, string(domain.NoteStatusShared)).
		Order(model.TableNameNote + ".updated_at DESC")
	if pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// ListSharedWithCount 获取共享给用户的笔记数量
func (r *noteRepository) ListSharedWithCount(ctx context.Context, uid int64) (int64, error) {
	var count int64
	err := r.note(ctx).Model(&model.Note{}).
		Joins("JOIN "+model.TableNameNoteGrant+" ON "+model.TableNameNoteGrant+".note_id = "+model.TableNameNote+".id").
		Where(model.TableNameNoteGrant+".uid = ? AND "+model.TableNameNote+".status = ?", uid, string(domain.NoteStatusShared)).
		Count(&count).Error
	return count, err
}

// ListPublic 获取公开笔记，按更新时间倒序
func (r *noteRepository) ListPublic(ctx context.Context, page, pageSize int) ([]*domain.Note, error) {
	var ms []*model.Note
	q := r.note(ctx).Where("status = ?", string(domain.NoteStatusPublic)).Order("updated_at DESC")
	if pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// ListPublicCount 获取公开笔记数量
func (r *noteRepository) ListPublicCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.note(ctx).Model(&model.Note{}).Where("status = ?", string(domain.NoteStatusPublic)).Count(&count).Error
	return count, err
}

// ShareTx 在单个事务中追加授权并迁移状态
// 授权 upsert 保证同一 (note_id, uid) 幂等，避免读到半应用状态
func (r *noteRepository) ShareTx(ctx context.Context, noteID int64, status domain.NoteStatus, grant *domain.NoteGrant) error {
	return r.dao.ExecuteWrite(ctx, noteID, func() error {
		return r.note(ctx).Transaction(func(tx *gorm.DB) error {
			gm := &model.NoteGrant{
				NoteID:    grant.NoteID,
				UID:       grant.UID,
				Kind:      string(grant.Kind),
				CreatedAt: timex.Now(),
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "note_id"}, {Name: "uid"}},
				DoNothing: true,
			}).Create(gm).Error; err != nil {
				return err
			}

			return tx.Model(&model.Note{}).Where("id = ?", noteID).
				Updates(map[string]any{
					"status":     string(status),
					"updated_at": timex.Now(),
				}).Error
		})
	})
}

// DeleteTx 在单个事务中删除笔记及其授权与通知记录
func (r *noteRepository) DeleteTx(ctx context.Context, noteID int64) error {
	return r.dao.ExecuteWrite(ctx, noteID, func() error {
		return r.note(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("note_id = ?", noteID).Delete(&model.NoteGrant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("note_id = ?", noteID).Delete(&model.Notification{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", noteID).Delete(&model.Note{}).Error
		})
	})
}

// 确保 noteRepository 实现了 domain.NoteRepository 接口
var _ domain.NoteRepository = (*noteRepository)(nil)
