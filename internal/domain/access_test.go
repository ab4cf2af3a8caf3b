package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestNote(id, owner int64, status NoteStatus) *Note {
	return &Note{ID: id, OwnerUID: owner, Status: status}
}

func TestEvaluateAccess(t *testing.T) {
	const (
		owner    = int64(1)
		writer   = int64(2)
		reader   = int64(3)
		stranger = int64(4)
		noteID   = int64(100)
	)

	grants := []*NoteGrant{
		{ID: 1, NoteID: noteID, UID: writer, Kind: GrantKindWrite},
		{ID: 2, NoteID: noteID, UID: reader, Kind: GrantKindRead},
	}

	cases := []struct {
		name   string
		uid    int64
		status NoteStatus
		want   Access
	}{
		{"owner personal", owner, NoteStatusPersonal, Access{CanRead: true, CanWrite: true, CanManage: true}},
		{"owner shared", owner, NoteStatusShared, Access{CanRead: true, CanWrite: true, CanManage: true}},
		{"owner public", owner, NoteStatusPublic, Access{CanRead: true, CanWrite: true, CanManage: true}},
		{"writer personal", writer, NoteStatusPersonal, Access{}},
		{"writer shared", writer, NoteStatusShared, Access{CanRead: true, CanWrite: true}},
		{"reader shared", reader, NoteStatusShared, Access{CanRead: true}},
		{"stranger shared", stranger, NoteStatusShared, Access{}},
		{"stranger public", stranger, NoteStatusPublic, Access{CanRead: true}},
		{"stranger personal", stranger, NoteStatusPersonal, Access{}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			note := newTestNote(noteID, owner, c.status)
			got := EvaluateAccess(c.uid, note, grants)
			if got != c.want {
				t.Errorf("EvaluateAccess(%d, %s) = %+v, want %+v", c.uid, c.status, got, c.want)
			}
		})
	}
}

func TestEvaluateAccess_NilNote(t *testing.T) {
	got := EvaluateAccess(1, nil, nil)
	if got.CanRead || got.CanWrite || got.CanManage {
		t.Errorf("nil note must yield no access, got %+v", got)
	}
}

func TestEvaluateAccess_GrantForOtherNoteIgnored(t *testing.T) {
	note := newTestNote(100, 1, NoteStatusShared)
	grants := []*NoteGrant{
		{ID: 1, NoteID: 999, UID: 2, Kind: GrantKindWrite},
	}
	if CanRead(2, note, grants) {
		t.Error("grant on another note must not give access")
	}
}

// 公开笔记对任意已登录用户可读
func TestProperty_PublicReadableByAnyone(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("public note is readable by any uid", prop.ForAll(
		func(uid, owner int64) bool {
			note := newTestNote(1, owner, NoteStatusPublic)
			return CanRead(uid, note, nil)
		},
		gen.Int64Range(1, 1<<30),
		gen.Int64Range(1, 1<<30),
	))

	properties.Property("personal note readable only by owner", prop.ForAll(
		func(uid, owner int64) bool {
			note := newTestNote(1, owner, NoteStatusPersonal)
			return CanRead(uid, note, nil) == (uid == owner)
		},
		gen.Int64Range(1, 1<<30),
		gen.Int64Range(1, 1<<30),
	))

	properties.Property("manage is owner-only regardless of grants", prop.ForAll(
		func(uid, owner int64, kindWrite bool) bool {
			kind := GrantKindRead
			if kindWrite {
				kind = GrantKindWrite
			}
			note := newTestNote(1, owner, NoteStatusShared)
			grants := []*NoteGrant{{ID: 1, NoteID: 1, UID: uid, Kind: kind}}
			return CanManage(uid, note, grants) == (uid == owner)
		},
		gen.Int64Range(1, 1<<30),
		gen.Int64Range(1, 1<<30),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
