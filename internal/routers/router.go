package routers

import (
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/app"
	"github.com/notepadplus/notepad-collab-service/internal/dto"
	"github.com/notepadplus/notepad-collab-service/internal/middleware"
	"github.com/notepadplus/notepad-collab-service/internal/routers/api_router"
	"github.com/notepadplus/notepad-collab-service/internal/routers/websocket_router"
	pkgapp "github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/user/login",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
	limiter.BucketRule{
		Key:          "/api/user/register",
		FillInterval: time.Second,
		Capacity:     5,
		Quantum:      5,
	},
)

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     true,                                 // 开启并行消息处理
			Recovery:            gws.Recovery,                         // 开启异常恢复
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:     8,
			ReadMaxPayloadSize:  1024 * 1024 * 16,
			WriteMaxPayloadSize: 1024 * 1024 * 16,
		},
		TokenManager:    appContainer.TokenManager,
		IsReturnSuccess: appContainer.IsReturnSuccess(),
	})

	// 创建 WebSocket Handler（注入 App Container）
	collabWSHandler := websocket_router.NewCollabWSHandler(appContainer)

	// 协作会话
	wss.Use(dto.NoteJoin, collabWSHandler.NoteJoin)
	wss.Use(dto.NoteLeave, collabWSHandler.NoteLeave)
	// 内容修改
	wss.Use(dto.NoteUpdate, collabWSHandler.NoteUpdate)
	// 光标与输入状态
	wss.Use(dto.CursorMove, collabWSHandler.CursorMove)
	wss.Use(dto.TypingStart, collabWSHandler.TypingStart)
	wss.Use(dto.TypingStop, collabWSHandler.TypingStop)

	wss.UserDataSelectUse(collabWSHandler.UserInfo)
	wss.CloseUse(collabWSHandler.OnConnClose)

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo())
		api.Use(gin.Logger())
		api.Use(middleware.TraceMiddleware()) // Trace ID 中间件
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLog())
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		noteHandler := api_router.NewNoteHandler(appContainer, wss)
		notificationHandler := api_router.NewNotificationHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)

		// 协作 WebSocket 入口，连接内部通过 TokenManager 完成认证
		api.GET("/collab", wss.Run())

		// 服务端版本号与健康检查（无需认证）
		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/user/change_password", userHandler.UserChangePassword)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/user/info", userHandler.UserInfo)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/user/search", userHandler.UserSearch)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/note", noteHandler.Create)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/note", noteHandler.Get)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).PUT("/note", noteHandler.Modify)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).DELETE("/note", noteHandler.Delete)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/note/share", noteHandler.Share)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/note/publish", noteHandler.Publish)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/note/grants", noteHandler.ListGrants)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/notes", noteHandler.ListOwned)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/notes/shared", noteHandler.ListShared)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/notes/public", noteHandler.ListPublic)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/notifications", notificationHandler.List)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/notifications/unread_count", notificationHandler.UnreadCount)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).PUT("/notification/read", notificationHandler.MarkRead)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).PUT("/notifications/read_all", notificationHandler.MarkAllRead)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
