package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	"github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeNotificationRepo 内存通知仓储
type fakeNotificationRepo struct {
	notifications map[int64]*domain.Notification
	nextID        int64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[int64]*domain.Notification), nextID: 1}
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id, uid int64) (*domain.Notification, error) {
	n, ok := r.notifications[id]
	if !ok || n.UID != uid {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	stored := *n
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.nextID++
	r.notifications[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeNotificationRepo) List(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Notification, error) {
	var list []*domain.Notification
	for _, n := range r.notifications {
		if n.UID == uid {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	offset := (page - 1) * pageSize
	if offset >= len(list) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (r *fakeNotificationRepo) ListCount(ctx context.Context, uid int64) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UID == uid {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) UnreadCount(ctx context.Context, uid int64) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UID == uid && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, uid int64) error {
	n, ok := r.notifications[id]
	if !ok || n.UID != uid {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, uid int64) error {
	for _, n := range r.notifications {
		if n.UID == uid {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteReadBefore(ctx context.Context, timestamp int64) (int64, error) {
	var deleted int64
	for id, n := range r.notifications {
		if n.IsRead && n.CreatedAt.Unix() < timestamp {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

var _ domain.NotificationRepository = (*fakeNotificationRepo)(nil)

// forUID 按用户过滤出全部通知，便于断言
func (r *fakeNotificationRepo) forUID(uid int64) []*domain.Notification {
	var list []*domain.Notification
	for _, n := range r.notifications {
		if n.UID == uid {
			list = append(list, n)
		}
	}
	return list
}

type notificationFixture struct {
	svc       *notificationService
	notifRepo *fakeNotificationRepo
	userRepo  *fakeUserRepo
}

// newNotificationFixture 构建通知服务测试环境
// pool 与 mail 传 nil，分发走同步写库路径
func newNotificationFixture(retention string, users ...*domain.User) *notificationFixture {
	notifRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo(users...)
	svc := NewNotificationService(notifRepo, userRepo, nil, nil, zap.NewNop(), &ServiceConfig{
		App: AppServiceConfig{NotificationRetention: retention},
	})
	return &notificationFixture{
		svc:       svc.(*notificationService),
		notifRepo: notifRepo,
		userRepo:  userRepo,
	}
}

func TestNotificationServiceNotifyNoteShared(t *testing.T) {
	f := newNotificationFixture("",
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
	)
	note := &domain.Note{ID: 10, OwnerUID: 1, Title: "设计稿"}

	f.svc.NotifyNoteShared(context.Background(), note, 2)

	got := f.notifRepo.forUID(2)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification for target, got %d", len(got))
	}
	n := got[0]
	if n.Type != domain.NotificationNoteShared {
		t.Errorf("expected type %d, got %d", domain.NotificationNoteShared, n.Type)
	}
	if n.NoteID != note.ID {
		t.Errorf("expected noteId %d, got %d", note.ID, n.NoteID)
	}
	if n.IsRead {
		t.Error("new notification should be unread")
	}
	if len(f.notifRepo.forUID(1)) != 0 {
		t.Error("owner should not receive a share notification")
	}
}

func TestNotificationServiceNotifyNotePublishedFanout(t *testing.T) {
	f := newNotificationFixture("",
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
		&domain.User{UID: 3, Username: "carol"},
	)
	note := &domain.Note{ID: 10, OwnerUID: 1, Title: "周报"}

	f.svc.NotifyNotePublished(context.Background(), note)

	if len(f.notifRepo.forUID(1)) != 0 {
		t.Error("owner should be excluded from the publish fanout")
	}
	for _, uid := range []int64{2, 3} {
		got := f.notifRepo.forUID(uid)
		if len(got) != 1 {
			t.Fatalf("expected 1 notification for uid %d, got %d", uid, len(got))
		}
		if got[0].Type != domain.NotificationNewPublicNote {
			t.Errorf("uid %d: expected type %d, got %d", uid, domain.NotificationNewPublicNote, got[0].Type)
		}
	}
}

func TestNotificationServiceListAndUnreadCount(t *testing.T) {
	f := newNotificationFixture("", &domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = f.notifRepo.Create(ctx, &domain.Notification{UID: 1, NoteID: int64(i + 1), Message: "m"})
	}
	_, _ = f.notifRepo.Create(ctx, &domain.Notification{UID: 2, NoteID: 9, Message: "other"})

	list, count, err := f.svc.List(ctx, 1, &app.Pager{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected total 3, got %d", count)
	}
	if len(list) != 2 {
		t.Fatalf("expected page of 2, got %d", len(list))
	}
	if list[0].ID < list[1].ID {
		t.Error("list should be ordered newest first")
	}

	unread, err := f.svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("UnreadCount returned error: %v", err)
	}
	if unread != 3 {
		t.Errorf("expected 3 unread, got %d", unread)
	}
}

func TestNotificationServiceMarkRead(t *testing.T) {
	f := newNotificationFixture("", &domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()
	created, _ := f.notifRepo.Create(ctx, &domain.Notification{UID: 1, NoteID: 5, Message: "m"})

	if err := f.svc.MarkRead(ctx, 1, &dto.NotificationMarkReadRequest{ID: created.ID}); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	unread, _ := f.svc.UnreadCount(ctx, 1)
	if unread != 0 {
		t.Errorf("expected 0 unread after MarkRead, got %d", unread)
	}

	// 不存在的通知
	err := f.svc.MarkRead(ctx, 1, &dto.NotificationMarkReadRequest{ID: 999})
	assertCode(t, err, code.ErrorNotificationNotFound)

	// 他人的通知不可标记
	err = f.svc.MarkRead(ctx, 2, &dto.NotificationMarkReadRequest{ID: created.ID})
	assertCode(t, err, code.ErrorNotificationNotFound)
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	f := newNotificationFixture("", &domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = f.notifRepo.Create(ctx, &domain.Notification{UID: 1, NoteID: int64(i + 1), Message: "m"})
	}
	_, _ = f.notifRepo.Create(ctx, &domain.Notification{UID: 2, NoteID: 9, Message: "other"})

	if err := f.svc.MarkAllRead(ctx, 1); err != nil {
		t.Fatalf("MarkAllRead returned error: %v", err)
	}
	unread, _ := f.svc.UnreadCount(ctx, 1)
	if unread != 0 {
		t.Errorf("expected 0 unread, got %d", unread)
	}
	otherUnread, _ := f.svc.UnreadCount(ctx, 2)
	if otherUnread != 1 {
		t.Errorf("other user's notifications should be untouched, got %d unread", otherUnread)
	}
}

func TestNotificationServiceCleanupRead(t *testing.T) {
	f := newNotificationFixture("7d", &domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()

	old, _ := f.notifRepo.Create(ctx, &domain.Notification{
		UID: 1, NoteID: 1, Message: "old",
		IsRead: true, CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	})
	_, _ = f.notifRepo.Create(ctx, &domain.Notification{
		UID: 1, NoteID: 2, Message: "old unread",
		CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	})
	recent, _ := f.notifRepo.Create(ctx, &domain.Notification{
		UID: 1, NoteID: 3, Message: "recent", IsRead: true,
	})

	deleted, err := f.svc.CleanupRead(ctx)
	if err != nil {
		t.Fatalf("CleanupRead returned error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if _, ok := f.notifRepo.notifications[old.ID]; ok {
		t.Error("expired read notification should be deleted")
	}
	if _, ok := f.notifRepo.notifications[recent.ID]; !ok {
		t.Error("recent read notification should survive")
	}
	if got, _ := f.notifRepo.UnreadCount(ctx, 1); got != 1 {
		t.Error("unread notifications should never be cleaned up")
	}
}

func TestNotificationServiceCleanupReadDisabled(t *testing.T) {
	f := newNotificationFixture("", &domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()
	_, _ = f.notifRepo.Create(ctx, &domain.Notification{
		UID: 1, NoteID: 1, Message: "old",
		IsRead: true, CreatedAt: time.Now().Add(-365 * 24 * time.Hour),
	})

	deleted, err := f.svc.CleanupRead(ctx)
	if err != nil {
		t.Fatalf("CleanupRead returned error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("cleanup is disabled when retention is empty, got %d deleted", deleted)
	}
}
