package task

import (
	"context"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/app"
	"github.com/notepadplus/notepad-collab-service/internal/collab"
)

// init 自动注册输入状态清扫任务
func init() {
	Register(NewTypingSweepTask)
}

// TypingSweepTask 定期清除协作会话中超时未续报的输入状态
// 客户端异常断网时 TypingStop 可能永远不会到达
type TypingSweepTask struct {
	registry *collab.Registry
	timeout  time.Duration
}

// NewTypingSweepTask 创建输入状态清扫任务
func NewTypingSweepTask(a *app.App) (Task, error) {
	timeout := a.Config().GetTypingTimeout()
	if timeout <= 0 {
		return nil, nil
	}

	return &TypingSweepTask{
		registry: a.Collab,
		timeout:  timeout,
	}, nil
}

// Name 返回任务名称
func (t *TypingSweepTask) Name() string {
	return "TypingSweepTask"
}

// Run 执行清扫
func (t *TypingSweepTask) Run(ctx context.Context) error {
	t.registry.SweepTyping(t.timeout)
	return nil
}

// LoopInterval 返回执行间隔，按超时时间的一半轮询
func (t *TypingSweepTask) LoopInterval() time.Duration {
	interval := t.timeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// IsStartupRun 是否立即执行一次
func (t *TypingSweepTask) IsStartupRun() bool {
	return false
}
