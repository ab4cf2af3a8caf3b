package domain

// Access 描述某用户对某笔记的能力快照
// 纯函数计算结果，不允许跨请求缓存
type Access struct {
	CanRead   bool
	CanWrite  bool
	CanManage bool
}

// EvaluateAccess 依据笔记状态与授权集合计算用户能力
// canManage: 仅所有者
// canWrite:  canManage 或（shared 状态且持有 write 授权）
// canRead:   canWrite 或 public 状态 或（shared 状态且持有任意授权）
func EvaluateAccess(uid int64, note *Note, grants []*NoteGrant) Access {
	if note == nil {
		return Access{}
	}

	access := Access{}
	access.CanManage = uid == note.OwnerUID

	var hasGrant, hasWriteGrant bool
	for _, g := range grants {
		if g == nil || g.NoteID != note.ID || g.UID != uid {
			continue
		}
		hasGrant = true
		if g.CanWrite() {
			hasWriteGrant = true
		}
	}

	access.CanWrite = access.CanManage || (note.Status == NoteStatusShared && hasWriteGrant)
	access.CanRead = access.CanWrite ||
		note.Status == NoteStatusPublic ||
		(note.Status == NoteStatusShared && hasGrant)

	return access
}

// CanRead 判断用户是否可读笔记
func CanRead(uid int64, note *Note, grants []*NoteGrant) bool {
	return EvaluateAccess(uid, note, grants).CanRead
}

// CanWrite 判断用户是否可写笔记
func CanWrite(uid int64, note *Note, grants []*NoteGrant) bool {
	return EvaluateAccess(uid, note, grants).CanWrite
}

// CanManage 判断用户是否可管理笔记（共享/发布/删除）
func CanManage(uid int64, note *Note, grants []*NoteGrant) bool {
	return EvaluateAccess(uid, note, grants).CanManage
}
