package code

// 成功状态码
var (
	Success = NewSuss(200, lang{
		en:    "Success",
		zh_cn: "成功",
	})
	Failed = NewError(201, lang{
		en:    "Failed",
		zh_cn: "失败",
	})
)

// 通用错误码 10xxx
var (
	ErrorInvalidParams = NewError(10001, lang{
		en:    "Invalid request parameters",
		zh_cn: "请求参数错误",
	})
	ErrorServerInternal = NewError(10002, lang{
		en:    "Internal server error",
		zh_cn: "服务内部错误",
	})
	ErrorTooManyRequests = NewError(10003, lang{
		en:    "Too many requests",
		zh_cn: "请求过多",
	})
	ErrorDBQuery = NewError(10004, lang{
		en:    "Storage temporarily unavailable",
		zh_cn: "存储暂时不可用",
	})
	ErrorNotFoundAPI = NewError(10005, lang{
		en:    "API not found",
		zh_cn: "接口不存在",
	})
)

// 用户与认证错误码 20xxx
var (
	ErrorNotUserAuthToken = NewError(20001, lang{
		en:    "Missing auth token",
		zh_cn: "缺少认证 Token",
	})
	ErrorInvalidUserAuthToken = NewError(20002, lang{
		en:    "Invalid auth token",
		zh_cn: "认证 Token 无效",
	})
	ErrorUserNotExists = NewError(20003, lang{
		en:    "User does not exist",
		zh_cn: "用户不存在",
	})
	ErrorUserAlreadyExists = NewError(20004, lang{
		en:    "Username already taken",
		zh_cn: "用户名已被占用",
	})
	ErrorUserEmailAlreadyExists = NewError(20005, lang{
		en:    "Email already registered",
		zh_cn: "邮箱已被注册",
	})
	ErrorUserPasswordError = NewError(20006, lang{
		en:    "Invalid username or password",
		zh_cn: "用户名或密码错误",
	})
	ErrorUserRegisterDisabled = NewError(20007, lang{
		en:    "Registration is disabled",
		zh_cn: "注册功能已关闭",
	})
	ErrorUserUsernameNotValid = NewError(20008, lang{
		en:    "Username format is invalid",
		zh_cn: "用户名格式无效",
	})
	ErrorUserPasswordNotMatch = NewError(20009, lang{
		en:    "Passwords do not match",
		zh_cn: "两次输入的密码不一致",
	})
	ErrorUserRegisterFailed = NewError(20010, lang{
		en:    "Registration failed",
		zh_cn: "注册失败",
	})
	ErrorTokenGenerate = NewError(20011, lang{
		en:    "Failed to generate token",
		zh_cn: "生成 Token 失败",
	})
)

// 笔记错误码 30xxx
var (
	ErrorNoteNotFound = NewError(30001, lang{
		en:    "Note does not exist",
		zh_cn: "笔记不存在",
	})
	ErrorNoteForbidden = NewError(30002, lang{
		en:    "No permission for this note",
		zh_cn: "没有该笔记的操作权限",
	})
	ErrorNoteCreateFailed = NewError(30003, lang{
		en:    "Failed to create note",
		zh_cn: "创建笔记失败",
	})
	ErrorNoteModifyFailed = NewError(30004, lang{
		en:    "Failed to update note",
		zh_cn: "更新笔记失败",
	})
	ErrorNoteDeleteFailed = NewError(30005, lang{
		en:    "Failed to delete note",
		zh_cn: "删除笔记失败",
	})
	ErrorNoteShareFailed = NewError(30006, lang{
		en:    "Failed to share note",
		zh_cn: "分享笔记失败",
	})
	ErrorCollaboratorNotFound = NewError(30007, lang{
		en:    "Collaborator does not exist",
		zh_cn: "协作者不存在",
	})
	ErrorShareWithSelf = NewError(30008, lang{
		en:    "Cannot share a note with its owner",
		zh_cn: "不能将笔记分享给所有者自己",
	})
	ErrorNotePublishFailed = NewError(30009, lang{
		en:    "Failed to publish note",
		zh_cn: "发布笔记失败",
	})
)

// 通知错误码 40xxx
var (
	ErrorNotificationNotFound = NewError(40001, lang{
		en:    "Notification does not exist",
		zh_cn: "通知不存在",
	})
)

// 实时协作错误码 50xxx
var (
	ErrorCollabJoinForbidden = NewError(50001, lang{
		en:    "No permission to join this note session",
		zh_cn: "没有权限加入该笔记协作会话",
	})
	ErrorCollabNotJoined = NewError(50002, lang{
		en:    "Not joined to this note session",
		zh_cn: "尚未加入该笔记协作会话",
	})
)
