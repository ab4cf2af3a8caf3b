// Package dao 实现数据访问层
package dao

import (
	"context"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/model"
	"github.com/notepadplus/notepad-collab-service/pkg/convert"
	"github.com/notepadplus/notepad-collab-service/pkg/timex"

	"gorm.io/gorm"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

// user 获取用户查询会话
func (r *userRepository) user(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceMigrate(ctx, "User")
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return convert.StructAssign(m, &domain.User{}).(*domain.User)
}

// toModel 将领域模型转换为数据库模型
func (r *userRepository) toModel(user *domain.User) *model.User {
	if user == nil {
		return nil
	}
	return convert.StructAssign(user, &model.User{}).(*model.User)
}

// GetByUID 根据UID获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	var m model.User
	err := r.user(ctx).Where("uid = ? AND is_deleted = ?", uid, false).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m model.User
	err := r.user(ctx).Where("email = ? AND is_deleted = ?", email, false).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m model.User
	err := r.user(ctx).Where("username = ? AND is_deleted = ?", username, false).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := r.toModel(user)
	m.CreatedAt = timex.Now()
	m.UpdatedAt = timex.Now()

	err := r.user(ctx).Create(m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdatePassword 更新用户密码
func (r *userRepository) UpdatePassword(ctx context.Context, password string, uid int64) error {
	return r.user(ctx).Model(&model.User{}).Where("uid = ?", uid).
		Updates(map[string]any{
			"password":   password,
			"updated_at": timex.Now(),
		}).Error
}

// GetAllUIDs 获取所有用户UID
func (r *userRepository) GetAllUIDs(ctx context.Context) ([]int64, error) {
	var uids []int64
	err := r.user(ctx).Model(&model.User{}).Where("is_deleted = ?", false).
		Pluck("uid", &uids).Error
	if err != nil {
		return nil, err
	}
	return uids, nil
}

// Search 按用户名或邮箱模糊搜索未删除用户
func (r *userRepository) Search(ctx context.Context, term string, limit int) ([]*domain.User, error) {
	var ms []*model.User
	pattern := "%" + term + "%"
	q := r.user(ctx).Where("is_deleted = ?", false).
		Where("username LIKE ? OR email LIKE ?", pattern, pattern).
		Order("username ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// 确保 userRepository 实现了 domain.UserRepository 接口
var _ domain.UserRepository = (*userRepository)(nil)
