package service

import (
	"context"
	"testing"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/domain"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	pkgapp "github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"
	"github.com/notepadplus/notepad-collab-service/pkg/util"

	"go.uber.org/zap"
)

func newUserFixture(registerEnabled bool, users ...*domain.User) (UserService, *fakeUserRepo) {
	repo := newFakeUserRepo(users...)
	tm := pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: "test-secret",
		Issuer:    "notepad-collab-service-test",
		Expiry:    time.Hour,
	})
	svc := NewUserService(repo, tm, zap.NewNop(), &ServiceConfig{
		User: UserServiceConfig{RegisterIsEnable: registerEnabled},
	})
	return svc, repo
}

func hashedUser(uid int64, username, email, password string) *domain.User {
	hash, _ := util.GeneratePasswordHash(password)
	return &domain.User{UID: uid, Username: username, Email: email, Password: hash}
}

func TestUserRegister(t *testing.T) {
	svc, repo := newUserFixture(true)
	ctx := context.Background()

	user, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Token == "" {
		t.Error("register must issue a token")
	}
	if user.UID == 0 {
		t.Error("register must assign a uid")
	}

	stored := repo.users[user.UID]
	if stored.Password == "secret123" {
		t.Error("password must be stored hashed")
	}
	if !util.CheckPasswordHash(stored.Password, "secret123") {
		t.Error("stored hash must verify against the original password")
	}
}

func TestUserRegisterDisabled(t *testing.T) {
	svc, _ := newUserFixture(false)

	_, err := svc.Register(context.Background(), &dto.UserCreateRequest{
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	assertCode(t, err, code.ErrorUserRegisterDisabled)
}

func TestUserRegisterConflicts(t *testing.T) {
	svc, _ := newUserFixture(true, hashedUser(1, "alice", "alice@example.com", "pw"))
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "alice@example.com",
		Username:        "other",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	assertCode(t, err, code.ErrorUserEmailAlreadyExists)

	_, err = svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "other@example.com",
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	assertCode(t, err, code.ErrorUserAlreadyExists)
}

func TestUserRegisterPasswordMismatch(t *testing.T) {
	svc, _ := newUserFixture(true)

	_, err := svc.Register(context.Background(), &dto.UserCreateRequest{
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "different",
	})
	assertCode(t, err, code.ErrorUserPasswordNotMatch)
}

func TestUserLoginByEmailOrUsername(t *testing.T) {
	svc, _ := newUserFixture(true, hashedUser(1, "alice", "alice@example.com", "secret123"))
	ctx := context.Background()

	byEmail, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice@example.com", Password: "secret123"}, "127.0.0.1")
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if byEmail.Token == "" {
		t.Error("login must issue a token")
	}

	byName, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "secret123"}, "127.0.0.1")
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if byName.UID != byEmail.UID {
		t.Error("both credential forms must resolve to the same user")
	}
}

func TestUserLoginHidesExistence(t *testing.T) {
	svc, _ := newUserFixture(true, hashedUser(1, "alice", "alice@example.com", "secret123"))
	ctx := context.Background()

	// 密码错误与用户不存在返回同一错误码
	_, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "wrong"}, "")
	assertCode(t, err, code.ErrorUserPasswordError)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "ghost", Password: "secret123"}, "")
	assertCode(t, err, code.ErrorUserPasswordError)
}

func TestUserChangePassword(t *testing.T) {
	svc, repo := newUserFixture(true, hashedUser(1, "alice", "alice@example.com", "oldpass"))
	ctx := context.Background()

	err := svc.ChangePassword(ctx, 1, &dto.UserChangePasswordRequest{
		OldPassword:     "wrong",
		Password:        "newpass",
		ConfirmPassword: "newpass",
	})
	assertCode(t, err, code.ErrorUserPasswordError)

	err = svc.ChangePassword(ctx, 1, &dto.UserChangePasswordRequest{
		OldPassword:     "oldpass",
		Password:        "newpass",
		ConfirmPassword: "newpass",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if !util.CheckPasswordHash(repo.users[1].Password, "newpass") {
		t.Error("new password must verify after change")
	}

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "oldpass"}, "")
	assertCode(t, err, code.ErrorUserPasswordError)
}

func TestUserSearch(t *testing.T) {
	svc, _ := newUserFixture(true,
		hashedUser(1, "alice", "alice@example.com", "pw"),
		hashedUser(2, "bob", "bob@example.com", "pw"),
		hashedUser(3, "bobby", "bobby@mail.test", "pw"),
	)
	ctx := context.Background()

	list, err := svc.Search(ctx, 1, &dto.UserSearchRequest{Term: "bob"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("results = %d, want 2", len(list))
	}
	if list[0].Username != "bob" || list[1].Username != "bobby" {
		t.Errorf("results = %s, %s, want bob, bobby", list[0].Username, list[1].Username)
	}

	// 按邮箱片段匹配
	list, err = svc.Search(ctx, 2, &dto.UserSearchRequest{Term: "mail.test"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(list) != 1 || list[0].UID != 3 {
		t.Fatalf("results = %+v, want only uid=3", list)
	}

	// 结果不包含搜索者本人
	list, err = svc.Search(ctx, 2, &dto.UserSearchRequest{Term: "bob"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(list) != 1 || list[0].UID != 3 {
		t.Fatalf("results = %+v, want self excluded", list)
	}

	list, err = svc.Search(ctx, 1, &dto.UserSearchRequest{Term: "nobody"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("results = %d, want 0", len(list))
	}
}
