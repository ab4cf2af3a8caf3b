package dao

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/model"

	"github.com/stretchr/testify/assert"
)

// newTestDao 基于临时目录的 sqlite 创建 Dao
func newTestDao(t *testing.T) *Dao {
	t.Helper()

	cfg := &DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate:  true,
		MaxIdleConns: 2,
		MaxOpenConns: 2,
	}
	db, err := NewDBEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := model.AutoMigrateAll(db); err != nil {
		t.Fatal(err)
	}
	return New(db, context.Background(), WithConfig(cfg))
}

func TestNoteRepositoryCreateAndGet(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Note{
		OwnerUID:    1,
		Title:       "会议纪要",
		Content:     "# 会议纪要\n待办事项",
		ContentHash: "h1",
		Category:    "work",
		Status:      domain.NoteStatusPersonal,
		Version:     1,
	})

	assert.Nil(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(1), created.OwnerUID)
	assert.Equal(t, "会议纪要", created.Title)
	assert.Equal(t, domain.NoteStatusPersonal, created.Status)
	assert.Equal(t, int64(1), created.Version)

	got, err := repo.GetByID(ctx, created.ID)
	assert.Nil(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Content, got.Content)
}

func TestNoteRepositoryUpdateBumpsVersion(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Note{
		OwnerUID: 1, Title: "t", Content: "v1", ContentHash: "h1",
		Status: domain.NoteStatusPersonal, Version: 1,
	})
	assert.Nil(t, err)

	created.Content = "v2"
	created.ContentHash = "h2"
	updated, err := repo.Update(ctx, created)

	assert.Nil(t, err)
	assert.Equal(t, "v2", updated.Content)
	assert.Equal(t, "h2", updated.ContentHash)
	assert.Equal(t, int64(2), updated.Version)
}

func TestNoteRepositoryShareTx(t *testing.T) {
	d := newTestDao(t)
	noteRepo := NewNoteRepository(d)
	grantRepo := NewGrantRepository(d)
	ctx := context.Background()

	created, err := noteRepo.Create(ctx, &domain.Note{
		OwnerUID: 1, Title: "t", Content: "c", ContentHash: "h",
		Status: domain.NoteStatusPersonal, Version: 1,
	})
	assert.Nil(t, err)

	err = noteRepo.ShareTx(ctx, created.ID, domain.NoteStatusShared, &domain.NoteGrant{
		NoteID: created.ID, UID: 2, Kind: domain.GrantKindWrite,
	})
	assert.Nil(t, err)

	got, err := noteRepo.GetByID(ctx, created.ID)
	assert.Nil(t, err)
	assert.Equal(t, domain.NoteStatusShared, got.Status)

	grant, err := grantRepo.Get(ctx, created.ID, 2)
	assert.Nil(t, err)
	assert.Equal(t, domain.GrantKindWrite, grant.Kind)

	// 重复共享同一用户不会产生第二条授权
	err = noteRepo.ShareTx(ctx, created.ID, domain.NoteStatusShared, &domain.NoteGrant{
		NoteID: created.ID, UID: 2, Kind: domain.GrantKindWrite,
	})
	assert.Nil(t, err)

	grants, err := grantRepo.ListByNote(ctx, created.ID)
	assert.Nil(t, err)
	assert.Len(t, grants, 1)
}

func TestNoteRepositoryDeleteTx(t *testing.T) {
	d := newTestDao(t)
	noteRepo := NewNoteRepository(d)
	grantRepo := NewGrantRepository(d)
	ctx := context.Background()

	created, err := noteRepo.Create(ctx, &domain.Note{
		OwnerUID: 1, Title: "t", Content: "c", ContentHash: "h",
		Status: domain.NoteStatusShared, Version: 1,
	})
	assert.Nil(t, err)

	_, err = grantRepo.Create(ctx, &domain.NoteGrant{NoteID: created.ID, UID: 2, Kind: domain.GrantKindRead})
	assert.Nil(t, err)

	err = noteRepo.DeleteTx(ctx, created.ID)
	assert.Nil(t, err)

	_, err = noteRepo.GetByID(ctx, created.ID)
	assert.NotNil(t, err)

	grants, err := grantRepo.ListByNote(ctx, created.ID)
	assert.Nil(t, err)
	assert.Len(t, grants, 0)
}

func TestNoteRepositoryListSharedWith(t *testing.T) {
	d := newTestDao(t)
	noteRepo := NewNoteRepository(d)
	ctx := context.Background()

	shared, err := noteRepo.Create(ctx, &domain.Note{
		OwnerUID: 1, Title: "shared", Content: "c", ContentHash: "h",
		Status: domain.NoteStatusPersonal, Version: 1,
	})
	assert.Nil(t, err)
	err = noteRepo.ShareTx(ctx, shared.ID, domain.NoteStatusShared, &domain.NoteGrant{
		NoteID: shared.ID, UID: 2, Kind: domain.GrantKindWrite,
	})
	assert.Nil(t, err)

	// 公开笔记即使持有授权也不出现在共享列表
	public, err := noteRepo.Create(ctx, &domain.Note{
		OwnerUID: 1, Title: "public", Content: "c", ContentHash: "h",
		Status: domain.NoteStatusPersonal, Version: 1,
	})
	assert.Nil(t, err)
	err = noteRepo.ShareTx(ctx, public.ID, domain.NoteStatusShared, &domain.NoteGrant{
		NoteID: public.ID, UID: 2, Kind: domain.GrantKindRead,
	})
	assert.Nil(t, err)
	err = noteRepo.UpdateStatus(ctx, domain.NoteStatusPublic, public.ID)
	assert.Nil(t, err)

	list, err := noteRepo.ListSharedWith(ctx, 2, 1, 10)
	assert.Nil(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, shared.ID, list[0].ID)

	count, err := noteRepo.ListSharedWithCount(ctx, 2)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)

	publicList, err := noteRepo.ListPublic(ctx, 1, 10)
	assert.Nil(t, err)
	assert.Len(t, publicList, 1)
	assert.Equal(t, public.ID, publicList[0].ID)
}

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	d := newTestDao(t)
	repo := NewUserRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "hash",
	})
	assert.Nil(t, err)
	assert.NotZero(t, created.UID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	assert.Nil(t, err)
	assert.Equal(t, created.UID, byEmail.UID)

	byName, err := repo.GetByUsername(ctx, "alice")
	assert.Nil(t, err)
	assert.Equal(t, created.UID, byName.UID)

	err = repo.UpdatePassword(ctx, "hash2", created.UID)
	assert.Nil(t, err)
	got, err := repo.GetByUID(ctx, created.UID)
	assert.Nil(t, err)
	assert.Equal(t, "hash2", got.Password)

	_, err = repo.Create(ctx, &domain.User{Email: "bob@example.com", Username: "bob", Password: "hash"})
	assert.Nil(t, err)
	uids, err := repo.GetAllUIDs(ctx)
	assert.Nil(t, err)
	assert.Len(t, uids, 2)
}

func TestUserRepositorySearch(t *testing.T) {
	d := newTestDao(t)
	repo := NewUserRepository(d)
	ctx := context.Background()

	for _, u := range []*domain.User{
		{Email: "alice@example.com", Username: "alice", Password: "hash"},
		{Email: "bob@example.com", Username: "bob", Password: "hash"},
		{Email: "bobby@mail.test", Username: "bobby", Password: "hash"},
	} {
		_, err := repo.Create(ctx, u)
		assert.Nil(t, err)
	}

	// 用户名片段匹配，按用户名排序
	list, err := repo.Search(ctx, "bob", 20)
	assert.Nil(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Username)
	assert.Equal(t, "bobby", list[1].Username)

	// 邮箱片段匹配
	list, err = repo.Search(ctx, "mail.test", 20)
	assert.Nil(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "bobby", list[0].Username)

	// limit 截断
	list, err = repo.Search(ctx, "bob", 1)
	assert.Nil(t, err)
	assert.Len(t, list, 1)

	list, err = repo.Search(ctx, "nobody", 20)
	assert.Nil(t, err)
	assert.Len(t, list, 0)
}

func TestNotificationRepositoryReadFlow(t *testing.T) {
	d := newTestDao(t)
	repo := NewNotificationRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Notification{
		UID: 1, NoteID: 10, Type: domain.NotificationNoteShared, Message: "m",
	})
	assert.Nil(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.IsRead)

	count, err := repo.UnreadCount(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)

	// 他人不能标记
	err = repo.MarkRead(ctx, created.ID, 2)
	assert.NotNil(t, err)

	err = repo.MarkRead(ctx, created.ID, 1)
	assert.Nil(t, err)

	count, err = repo.UnreadCount(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), count)

	list, err := repo.List(ctx, 1, 1, 10)
	assert.Nil(t, err)
	assert.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}
