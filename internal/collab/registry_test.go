package collab

import (
	"testing"
	"time"

	"github.com/notepadplus/notepad-collab-service/pkg/app"

	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

func newTestClient(uid int64, username string) *app.WebsocketClient {
	return app.NewWebsocketClient(new(gws.Conn), &app.UserEntity{UID: uid, Username: username})
}

func TestRegistryJoinLeaveLifecycle(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	alice := newTestClient(1, "alice")
	bob := newTestClient(2, "bob")

	snapshot := r.Join(alice, 100)
	if len(snapshot) != 1 {
		t.Fatalf("join snapshot = %d participants, want 1", len(snapshot))
	}
	if r.SessionCount() != 1 {
		t.Fatalf("SessionCount = %d, want 1", r.SessionCount())
	}

	snapshot = r.Join(bob, 100)
	if len(snapshot) != 2 {
		t.Fatalf("join snapshot = %d participants, want 2", len(snapshot))
	}
	if !r.IsJoined(alice, 100) || !r.IsJoined(bob, 100) {
		t.Fatal("both clients must be joined")
	}

	if !r.Leave(alice, 100) {
		t.Fatal("leave must report membership")
	}
	if r.IsJoined(alice, 100) {
		t.Fatal("alice must no longer be joined")
	}
	if r.ParticipantCount(100) != 1 {
		t.Fatalf("ParticipantCount = %d, want 1", r.ParticipantCount(100))
	}

	// 最后一个参与者离开后会话销毁
	if !r.Leave(bob, 100) {
		t.Fatal("leave must report membership")
	}
	if r.SessionCount() != 0 {
		t.Fatalf("SessionCount = %d after last leave, want 0", r.SessionCount())
	}
}

func TestRegistryLeaveNotJoined(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	alice := newTestClient(1, "alice")

	if r.Leave(alice, 100) {
		t.Fatal("leave on unknown session must return false")
	}

	r.Join(alice, 100)
	bob := newTestClient(2, "bob")
	if r.Leave(bob, 100) {
		t.Fatal("leave by non-participant must return false")
	}
	if r.ParticipantCount(100) != 1 {
		t.Fatal("non-participant leave must not touch session")
	}
}

func TestRegistryLeaveAll(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	alice := newTestClient(1, "alice")
	bob := newTestClient(2, "bob")

	r.Join(alice, 100)
	r.Join(alice, 200)
	r.Join(bob, 200)

	left := r.LeaveAll(alice)
	if len(left) != 2 {
		t.Fatalf("LeaveAll left %d sessions, want 2", len(left))
	}
	if r.SessionCount() != 1 {
		t.Fatalf("SessionCount = %d, want 1 (bob still in 200)", r.SessionCount())
	}
	if !r.IsJoined(bob, 200) {
		t.Fatal("bob must remain in session 200")
	}

	if got := r.LeaveAll(alice); len(got) != 0 {
		t.Fatalf("repeated LeaveAll left %d sessions, want 0", len(got))
	}
}

func TestRegistryCursorAndTyping(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	alice := newTestClient(1, "alice")

	if r.SetCursor(alice, 100, 5) {
		t.Fatal("SetCursor before join must return false")
	}
	if r.SetTyping(alice, 100, true) {
		t.Fatal("SetTyping before join must return false")
	}

	r.Join(alice, 100)

	if !r.SetCursor(alice, 100, 42) {
		t.Fatal("SetCursor after join must return true")
	}
	if !r.SetTyping(alice, 100, true) {
		t.Fatal("SetTyping after join must return true")
	}

	participants := r.Participants(100)
	if len(participants) != 1 {
		t.Fatalf("Participants = %d, want 1", len(participants))
	}
	if participants[0].Offset != 42 {
		t.Errorf("Offset = %d, want 42", participants[0].Offset)
	}
	if !participants[0].IsTyping {
		t.Error("IsTyping = false, want true")
	}
}

func TestRegistrySweepTyping(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	alice := newTestClient(1, "alice")

	r.Join(alice, 100)
	r.SetTyping(alice, 100, true)

	// 未超时的输入状态保留
	r.SweepTyping(time.Hour)
	if p := r.Participants(100); !p[0].IsTyping {
		t.Fatal("typing state must survive sweep within timeout")
	}

	// 让 TypingAt 过期
	r.mu.Lock()
	for _, s := range r.sessions {
		for _, p := range s.participants {
			p.TypingAt = time.Now().Add(-time.Minute)
		}
	}
	r.mu.Unlock()

	r.SweepTyping(time.Second)
	if p := r.Participants(100); p[0].IsTyping {
		t.Fatal("stale typing state must be cleared by sweep")
	}
}

func TestRegistryMultipleConnectionsSameUser(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	desktop := newTestClient(1, "alice")
	mobile := newTestClient(1, "alice")

	r.Join(desktop, 100)
	r.Join(mobile, 100)

	// 同一用户的多端连接是独立参与者
	if r.ParticipantCount(100) != 2 {
		t.Fatalf("ParticipantCount = %d, want 2", r.ParticipantCount(100))
	}

	r.Leave(desktop, 100)
	if !r.IsJoined(mobile, 100) {
		t.Fatal("mobile connection must stay joined after desktop leaves")
	}
}
