package safe_close

import (
	"sync"
)

// SafeClose 管理一组后台任务的优雅关闭
// Attach 注册任务；SendCloseSignal 发出关闭信号；WaitClosed 等待全部任务退出
type SafeClose struct {
	m sync.Mutex

	closeSignal chan struct{}
	closeErr    error
	wg          sync.WaitGroup
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach 启动一个受管理的后台任务
// f 必须在任务退出时调用 done，并监听 closeSignal 以响应关闭
func (sc *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	sc.wg.Add(1)
	var doneOnce sync.Once
	done := func() {
		doneOnce.Do(sc.wg.Done)
	}
	go f(done, sc.closeSignal)
}

// SendCloseSignal 发送关闭信号，只有第一次调用的 err 会被记录
func (sc *SafeClose) SendCloseSignal(err error) {
	sc.m.Lock()
	defer sc.m.Unlock()

	select {
	case <-sc.closeSignal:
		return
	default:
		sc.closeErr = err
		close(sc.closeSignal)
	}
}

// CloseSignal 返回关闭信号通道
func (sc *SafeClose) CloseSignal() <-chan struct{} {
	return sc.closeSignal
}

// WaitClosed 阻塞直到收到关闭信号且所有任务退出，返回触发关闭的错误
func (sc *SafeClose) WaitClosed() error {
	<-sc.closeSignal
	sc.wg.Wait()

	sc.m.Lock()
	defer sc.m.Unlock()
	return sc.closeErr
}
