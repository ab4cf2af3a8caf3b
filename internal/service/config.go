// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // User related config // 用户相关配置
	App  AppServiceConfig  // App related config // 应用相关配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // Whether registration is enabled // 注册是否启用
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	NotificationRetention string // Read notification retention time (e.g., 7d, 24h, 0/empty for no cleanup) // 已读通知保留时间（支持格式：7d、24h，0 或空表示不自动清理）
	TypingTimeout         string // Typing indicator auto clear timeout (e.g., 10s, default 10s) // 输入状态自动清除时间（支持格式：10s，默认 10s）
}
