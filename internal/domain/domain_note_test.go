package domain

import "testing"

func TestTransitionShare(t *testing.T) {
	cases := []struct {
		name    string
		current NoteStatus
		want    NoteStatus
		wantErr bool
	}{
		{"personal to shared", NoteStatusPersonal, NoteStatusShared, false},
		{"shared stays shared", NoteStatusShared, NoteStatusShared, false},
		{"public stays public", NoteStatusPublic, NoteStatusPublic, false},
		{"unknown status", NoteStatus("bogus"), NoteStatus("bogus"), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := TransitionShare(c.current)
			if (err != nil) != c.wantErr {
				t.Fatalf("TransitionShare(%s) err = %v, wantErr %v", c.current, err, c.wantErr)
			}
			if got != c.want {
				t.Errorf("TransitionShare(%s) = %s, want %s", c.current, got, c.want)
			}
		})
	}
}

func TestTransitionPublish(t *testing.T) {
	// 发布动作从任何合法状态都落到 public，且幂等
	for _, s := range []NoteStatus{NoteStatusPersonal, NoteStatusShared, NoteStatusPublic} {
		got, err := TransitionPublish(s)
		if err != nil {
			t.Fatalf("TransitionPublish(%s) err = %v", s, err)
		}
		if got != NoteStatusPublic {
			t.Errorf("TransitionPublish(%s) = %s, want public", s, got)
		}
	}

	if _, err := TransitionPublish(NoteStatus("bogus")); err == nil {
		t.Error("TransitionPublish on invalid status should error")
	}
}

// 公开是单向的：没有任何迁移能离开 public
func TestPublicIsTerminal(t *testing.T) {
	if got, _ := TransitionShare(NoteStatusPublic); got != NoteStatusPublic {
		t.Errorf("share on public note moved status to %s", got)
	}
	if got, _ := TransitionPublish(NoteStatusPublic); got != NoteStatusPublic {
		t.Errorf("publish on public note moved status to %s", got)
	}
	if CanUnpublish(NoteStatusPublic) {
		t.Error("unpublish must not be possible")
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []NoteStatus{NoteStatusPersonal, NoteStatusShared, NoteStatusPublic} {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%s) = false", s)
		}
	}
	if IsValidStatus(NoteStatus("draft")) {
		t.Error("IsValidStatus(draft) = true, want false")
	}
}
