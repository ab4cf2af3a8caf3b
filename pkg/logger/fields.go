package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldStatus 笔记可见性状态字段
	FieldStatus = "status"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldSessionID 会话 ID 字段
	FieldSessionID = "sessionId"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldTarget 目标用户字段
	FieldTarget = "targetUid"
)
