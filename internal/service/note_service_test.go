package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	"github.com/notepadplus/notepad-collab-service/pkg/code"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeGrantRepo 内存授权仓储
type fakeGrantRepo struct {
	grants map[int64][]*domain.NoteGrant // noteID -> grants
	nextID int64
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: make(map[int64][]*domain.NoteGrant), nextID: 1}
}

func (r *fakeGrantRepo) Get(ctx context.Context, noteID, uid int64) (*domain.NoteGrant, error) {
	for _, g := range r.grants[noteID] {
		if g.UID == uid {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGrantRepo) ListByNote(ctx context.Context, noteID int64) ([]*domain.NoteGrant, error) {
	return r.grants[noteID], nil
}

func (r *fakeGrantRepo) ListByUser(ctx context.Context, uid int64) ([]*domain.NoteGrant, error) {
	var list []*domain.NoteGrant
	for _, gs := range r.grants {
		for _, g := range gs {
			if g.UID == uid {
				list = append(list, g)
			}
		}
	}
	return list, nil
}

func (r *fakeGrantRepo) Create(ctx context.Context, grant *domain.NoteGrant) (*domain.NoteGrant, error) {
	// 同一 (noteID, uid) 幂等
	for _, g := range r.grants[grant.NoteID] {
		if g.UID == grant.UID {
			return g, nil
		}
	}
	grant.ID = r.nextID
	r.nextID++
	r.grants[grant.NoteID] = append(r.grants[grant.NoteID], grant)
	return grant, nil
}

func (r *fakeGrantRepo) DeleteByNote(ctx context.Context, noteID int64) error {
	delete(r.grants, noteID)
	return nil
}

// fakeNoteRepo 内存笔记仓储，事务方法直接作用于授权仓储
type fakeNoteRepo struct {
	notes     map[int64]*domain.Note
	grantRepo *fakeGrantRepo
	nextID    int64
}

func newFakeNoteRepo(grantRepo *fakeGrantRepo) *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[int64]*domain.Note), grantRepo: grantRepo, nextID: 1}
}

func (r *fakeNoteRepo) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *note
	return &cp, nil
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	note.ID = r.nextID
	r.nextID++
	cp := *note
	r.notes[note.ID] = &cp
	return note, nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	stored, ok := r.notes[note.ID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	note.Version = stored.Version + 1
	cp := *note
	r.notes[note.ID] = &cp
	return note, nil
}

func (r *fakeNoteRepo) UpdateStatus(ctx context.Context, status domain.NoteStatus, id int64) error {
	note, ok := r.notes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	note.Status = status
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id int64) error {
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) ListByOwner(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Note, error) {
	var list []*domain.Note
	for _, n := range r.notes {
		if n.OwnerUID == uid {
			list = append(list, n)
		}
	}
	return list, nil
}

func (r *fakeNoteRepo) ListByOwnerCount(ctx context.Context, uid int64) (int64, error) {
	list, _ := r.ListByOwner(ctx, uid, 1, 0)
	return int64(len(list)), nil
}

func (r *fakeNoteRepo) ListSharedWith(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Note, error) {
	var list []*domain.Note
	for _, n := range r.notes {
		if n.Status != domain.NoteStatusShared {
			continue
		}
		if g, err := r.grantRepo.Get(ctx, n.ID, uid); err == nil && g != nil {
			list = append(list, n)
		}
	}
	return list, nil
}

func (r *fakeNoteRepo) ListSharedWithCount(ctx context.Context, uid int64) (int64, error) {
	list, _ := r.ListSharedWith(ctx, uid, 1, 0)
	return int64(len(list)), nil
}

func (r *fakeNoteRepo) ListPublic(ctx context.Context, page, pageSize int) ([]*domain.Note, error) {
	var list []*domain.Note
	for _, n := range r.notes {
		if n.Status == domain.NoteStatusPublic {
			list = append(list, n)
		}
	}
	return list, nil
}

func (r *fakeNoteRepo) ListPublicCount(ctx context.Context) (int64, error) {
	list, _ := r.ListPublic(ctx, 1, 0)
	return int64(len(list)), nil
}

func (r *fakeNoteRepo) ShareTx(ctx context.Context, noteID int64, status domain.NoteStatus, grant *domain.NoteGrant) error {
	if _, err := r.grantRepo.Create(ctx, grant); err != nil {
		return err
	}
	return r.UpdateStatus(ctx, status, noteID)
}

func (r *fakeNoteRepo) DeleteTx(ctx context.Context, noteID int64) error {
	if err := r.grantRepo.DeleteByNote(ctx, noteID); err != nil {
		return err
	}
	return r.Delete(ctx, noteID)
}

// fakeUserRepo 内存用户仓储
type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*domain.User), nextID: 1}
	for _, u := range users {
		if u.UID >= r.nextID {
			r.nextID = u.UID + 1
		}
		r.users[u.UID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	u, ok := r.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.UID = r.nextID
	r.nextID++
	r.users[user.UID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, password string, uid int64) error {
	u, ok := r.users[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = password
	return nil
}

func (r *fakeUserRepo) GetAllUIDs(ctx context.Context) ([]int64, error) {
	var uids []int64
	for uid := range r.users {
		uids = append(uids, uid)
	}
	return uids, nil
}

func (r *fakeUserRepo) Search(ctx context.Context, term string, limit int) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.IsDeleted {
			continue
		}
		if strings.Contains(u.Username, term) || strings.Contains(u.Email, term) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// recordingNotifier 记录通知调用
type recordingNotifier struct {
	shared    []int64 // targetUID
	published []int64 // noteID
}

func (n *recordingNotifier) NotifyNoteShared(ctx context.Context, note *domain.Note, targetUID int64) {
	n.shared = append(n.shared, targetUID)
}

func (n *recordingNotifier) NotifyNotePublished(ctx context.Context, note *domain.Note) {
	n.published = append(n.published, note.ID)
}

// recordingCloser 记录会话关闭调用
type recordingCloser struct {
	closed []int64
}

func (c *recordingCloser) CloseNote(noteID int64, reason string) {
	c.closed = append(c.closed, noteID)
}

type noteFixture struct {
	svc       NoteService
	noteRepo  *fakeNoteRepo
	grantRepo *fakeGrantRepo
	userRepo  *fakeUserRepo
	notifier  *recordingNotifier
	closer    *recordingCloser
}

func newNoteFixture(users ...*domain.User) *noteFixture {
	grantRepo := newFakeGrantRepo()
	noteRepo := newFakeNoteRepo(grantRepo)
	userRepo := newFakeUserRepo(users...)
	notifier := &recordingNotifier{}
	closer := &recordingCloser{}

	svc := NewNoteService(noteRepo, grantRepo, userRepo, notifier, closer, zap.NewNop(), &ServiceConfig{})
	return &noteFixture{
		svc:       svc,
		noteRepo:  noteRepo,
		grantRepo: grantRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		closer:    closer,
	}
}

func assertCode(t *testing.T, err error, want *code.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %d, got nil", want.Code())
	}
	codeErr, ok := err.(*code.Code)
	if !ok {
		t.Fatalf("expected *code.Code, got %T: %v", err, err)
	}
	if codeErr.Code() != want.Code() {
		t.Fatalf("error code = %d, want %d", codeErr.Code(), want.Code())
	}
}

func TestNoteCreateInitialState(t *testing.T) {
	f := newNoteFixture(&domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()

	note, err := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "first", Content: "hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if note.Status != string(domain.NoteStatusPersonal) {
		t.Errorf("Status = %s, want personal", note.Status)
	}
	if note.Version != 1 {
		t.Errorf("Version = %d, want 1", note.Version)
	}
	if !note.CanWrite || !note.CanManage {
		t.Error("owner must have write and manage capabilities")
	}
}

func TestNoteGetHidesExistence(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
	)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "secret"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 无读权限与不存在返回同一错误码
	_, err = f.svc.Get(ctx, 2, &dto.NoteGetRequest{ID: created.ID})
	assertCode(t, err, code.ErrorNoteNotFound)

	_, err = f.svc.Get(ctx, 2, &dto.NoteGetRequest{ID: 9999})
	assertCode(t, err, code.ErrorNoteNotFound)
}

func TestNoteModifyNoOpKeepsVersion(t *testing.T) {
	f := newNoteFixture(&domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "n", Content: "same"})

	got, err := f.svc.Modify(ctx, 1, &dto.NoteModifyRequest{ID: created.ID, Content: "same"})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if got.Version != created.Version {
		t.Errorf("no-op modify bumped version: %d -> %d", created.Version, got.Version)
	}

	got, err = f.svc.Modify(ctx, 1, &dto.NoteModifyRequest{ID: created.ID, Content: "changed"})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if got.Version != created.Version+1 {
		t.Errorf("Version = %d, want %d", got.Version, created.Version+1)
	}
	if got.ContentHash == created.ContentHash {
		t.Error("content change must refresh content hash")
	}
}

func TestNoteModifyRequiresWriteGrant(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
	)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc", Content: "v1"})

	// read 授权可读不可写
	if _, err := f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "bob", Kind: "read"}); err != nil {
		t.Fatalf("Share: %v", err)
	}

	if _, err := f.svc.Get(ctx, 2, &dto.NoteGetRequest{ID: created.ID}); err != nil {
		t.Fatalf("reader Get: %v", err)
	}
	_, err := f.svc.Modify(ctx, 2, &dto.NoteModifyRequest{ID: created.ID, Content: "v2"})
	assertCode(t, err, code.ErrorNoteForbidden)
}

func TestNoteShareTransitionsAndNotifies(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob", Email: "bob@example.com"},
	)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc"})

	// 通过邮箱定位协作者
	shared, err := f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "bob@example.com", Kind: "write"})
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if shared.Status != string(domain.NoteStatusShared) {
		t.Errorf("Status = %s, want shared", shared.Status)
	}
	if len(f.notifier.shared) != 1 || f.notifier.shared[0] != 2 {
		t.Errorf("shared notifications = %v, want [2]", f.notifier.shared)
	}

	// 协作者可写
	if _, err := f.svc.Modify(ctx, 2, &dto.NoteModifyRequest{ID: created.ID, Content: "by bob"}); err != nil {
		t.Fatalf("collaborator Modify: %v", err)
	}
}

func TestNoteShareRejectsSelfAndUnknown(t *testing.T) {
	f := newNoteFixture(&domain.User{UID: 1, Username: "alice"})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc"})

	_, err := f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "alice", Kind: "read"})
	assertCode(t, err, code.ErrorShareWithSelf)

	_, err = f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "ghost", Kind: "read"})
	assertCode(t, err, code.ErrorCollaboratorNotFound)
}

func TestNoteShareOwnerOnly(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
		&domain.User{UID: 3, Username: "carol"},
	)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc"})
	if _, err := f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "bob", Kind: "write"}); err != nil {
		t.Fatalf("Share: %v", err)
	}

	// 写授权持有者也不能再授权他人
	_, err := f.svc.Share(ctx, 2, &dto.NoteShareRequest{ID: created.ID, Collaborator: "carol", Kind: "read"})
	assertCode(t, err, code.ErrorNoteForbidden)
}

func TestNotePublishTerminalAndIdempotent(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
	)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc"})

	published, err := f.svc.Publish(ctx, 1, &dto.NotePublishRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.Status != string(domain.NoteStatusPublic) {
		t.Errorf("Status = %s, want public", published.Status)
	}
	if len(f.notifier.published) != 1 {
		t.Fatalf("published notifications = %d, want 1", len(f.notifier.published))
	}

	// 重复公开幂等且不重复通知
	again, err := f.svc.Publish(ctx, 1, &dto.NotePublishRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("repeated Publish: %v", err)
	}
	if again.Status != string(domain.NoteStatusPublic) {
		t.Errorf("Status = %s, want public", again.Status)
	}
	if len(f.notifier.published) != 1 {
		t.Errorf("published notifications = %d after repeat, want 1", len(f.notifier.published))
	}

	// 公开后共享不改变状态，授权仍可追加
	shared, err := f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "bob", Kind: "write"})
	if err != nil {
		t.Fatalf("Share after publish: %v", err)
	}
	if shared.Status != string(domain.NoteStatusPublic) {
		t.Errorf("Status = %s after share, public is terminal", shared.Status)
	}

	// 任意用户可读公开笔记
	if _, err := f.svc.Get(ctx, 99, &dto.NoteGetRequest{ID: created.ID}); err != nil {
		t.Errorf("public note must be readable by anyone: %v", err)
	}
}

func TestNoteDeleteCascadesAndClosesSession(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
	)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc"})
	if _, err := f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "bob", Kind: "write"}); err != nil {
		t.Fatalf("Share: %v", err)
	}

	// 写授权持有者不能删除
	err := f.svc.Delete(ctx, 2, &dto.NoteDeleteRequest{ID: created.ID})
	assertCode(t, err, code.ErrorNoteForbidden)

	if err := f.svc.Delete(ctx, 1, &dto.NoteDeleteRequest{ID: created.ID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := f.noteRepo.notes[created.ID]; ok {
		t.Error("note must be removed")
	}
	if len(f.grantRepo.grants[created.ID]) != 0 {
		t.Error("grants must be removed with the note")
	}
	if len(f.closer.closed) != 1 || f.closer.closed[0] != created.ID {
		t.Errorf("closed sessions = %v, want [%d]", f.closer.closed, created.ID)
	}
}

func TestNoteListGrantsOwnerOnly(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
	)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc"})
	if _, err := f.svc.Share(ctx, 1, &dto.NoteShareRequest{ID: created.ID, Collaborator: "bob", Kind: "read"}); err != nil {
		t.Fatalf("Share: %v", err)
	}

	grants, err := f.svc.ListGrants(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("ListGrants: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("grants = %d, want 1", len(grants))
	}
	if grants[0].UID != 2 || grants[0].Kind != "read" || grants[0].Username != "bob" {
		t.Errorf("grant = %+v, want uid=2 kind=read username=bob", grants[0])
	}

	_, err = f.svc.ListGrants(ctx, 2, created.ID)
	assertCode(t, err, code.ErrorNoteForbidden)
}

func TestNoteMutationsHideExistenceFromStrangers(t *testing.T) {
	f := newNoteFixture(
		&domain.User{UID: 1, Username: "alice"},
		&domain.User{UID: 2, Username: "bob"},
		&domain.User{UID: 3, Username: "carol"},
	)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "private", Content: "v1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 无任何授权的用户对已存在私有笔记的操作一律按不存在处理
	_, err = f.svc.Modify(ctx, 2, &dto.NoteModifyRequest{ID: created.ID, Content: "v2"})
	assertCode(t, err, code.ErrorNoteNotFound)

	err = f.svc.Delete(ctx, 2, &dto.NoteDeleteRequest{ID: created.ID})
	assertCode(t, err, code.ErrorNoteNotFound)

	_, err = f.svc.Share(ctx, 2, &dto.NoteShareRequest{ID: created.ID, Collaborator: "carol", Kind: "read"})
	assertCode(t, err, code.ErrorNoteNotFound)

	_, err = f.svc.Publish(ctx, 2, &dto.NotePublishRequest{ID: created.ID})
	assertCode(t, err, code.ErrorNoteNotFound)

	_, err = f.svc.ListGrants(ctx, 2, created.ID)
	assertCode(t, err, code.ErrorNoteNotFound)
}

// gateNoteRepo 包装笔记仓储，统计并门控 GetByID 调用
type gateNoteRepo struct {
	*fakeNoteRepo
	calls   int64
	entered chan struct{}
	release chan struct{}
}

func (r *gateNoteRepo) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	atomic.AddInt64(&r.calls, 1)
	r.entered <- struct{}{}
	<-r.release
	return r.fakeNoteRepo.GetByID(ctx, id)
}

func TestNoteConcurrentGetMergesRepoQuery(t *testing.T) {
	grantRepo := newFakeGrantRepo()
	gate := &gateNoteRepo{
		fakeNoteRepo: newFakeNoteRepo(grantRepo),
		entered:      make(chan struct{}, 8),
		release:      make(chan struct{}),
	}
	userRepo := newFakeUserRepo(&domain.User{UID: 1, Username: "alice"})
	svc := NewNoteService(gate, grantRepo, userRepo, &recordingNotifier{}, &recordingCloser{}, zap.NewNop(), &ServiceConfig{})
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "doc", Content: "v1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const readers = 3
	var wg sync.WaitGroup
	errCh := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Get(ctx, 1, &dto.NoteGetRequest{ID: created.ID})
			errCh <- err
		}()
	}

	// 第一个读者进入仓储后稍候，让其余读者挂到同一次查询上再放行
	<-gate.entered
	time.Sleep(100 * time.Millisecond)
	close(gate.release)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if got := atomic.LoadInt64(&gate.calls); got != 1 {
		t.Errorf("repo GetByID calls = %d, want 1 for merged concurrent reads", got)
	}
}
