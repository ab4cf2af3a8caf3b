package api_router

import (
	"os"
	"runtime"
	"time"

	"github.com/notepadplus/notepad-collab-service/internal/app"
	pkgapp "github.com/notepadplus/notepad-collab-service/pkg/app"
	"github.com/notepadplus/notepad-collab-service/pkg/code"
	"github.com/notepadplus/notepad-collab-service/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// StatusHandler 运行状态处理器，仅挂载到私有路由
type StatusHandler struct {
	*Handler
}

// NewStatusHandler 创建 StatusHandler 实例
func NewStatusHandler(a *app.App) *StatusHandler {
	return &StatusHandler{Handler: NewHandler(a)}
}

// RuntimeInfo Go 运行时信息
type RuntimeInfo struct {
	NumGoroutine int    `json:"numGoroutine"`
	MemAlloc     uint64 `json:"memAlloc"`
	MemSys       uint64 `json:"memSys"`
	HeapInuse    uint64 `json:"heapInuse"`
	NumGC        uint32 `json:"numGC"`
}

// LoadInfo 系统负载
type LoadInfo struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// CPUInfo CPU 信息
type CPUInfo struct {
	ModelName     string    `json:"modelName"`
	PhysicalCores int       `json:"physicalCores"`
	LogicalCores  int       `json:"logicalCores"`
	LoadAvg       *LoadInfo `json:"loadAvg"`
}

// MemoryInfo 内存信息
type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"usedPercent"`
}

// HostInfo 主机信息
type HostInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	OSPretty      string `json:"osPretty"`
	Platform      string `json:"platform"`
	KernelVersion string `json:"kernelVersion"`
	Uptime        uint64 `json:"uptime"`
}

// ProcessInfo 进程信息
type ProcessInfo struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float32 `json:"memoryPercent"`
}

// CollabInfo 协作会话信息
type CollabInfo struct {
	ActiveSessions int `json:"activeSessions"`
}

// SystemStatus 运行状态汇总
type SystemStatus struct {
	StartTime     time.Time   `json:"startTime"`
	Uptime        float64     `json:"uptime"`
	RuntimeStatus RuntimeInfo `json:"runtime"`
	CPU           CPUInfo     `json:"cpu"`
	Memory        MemoryInfo  `json:"memory"`
	Host          HostInfo    `json:"host"`
	Process       ProcessInfo `json:"process"`
	Collab        CollabInfo  `json:"collab"`
}

// Status 获取进程与主机运行状态
// @Summary Get runtime status
// @Description 获取服务进程与主机的运行状态，仅私有端口可访问
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=SystemStatus} "Success"
// @Router /status [get]
func (h *StatusHandler) Status(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cpuInfoList, _ := cpu.Info()
	cpuModel := ""
	if len(cpuInfoList) > 0 {
		cpuModel = cpuInfoList[0].ModelName
	}
	physCores, _ := cpu.Counts(false)
	logicCores, _ := cpu.Counts(true)
	loadStat, _ := load.Avg()

	vMem, _ := mem.VirtualMemory()
	hInfo, _ := host.Info()

	p, _ := process.NewProcess(int32(os.Getpid()))
	pName, _ := p.Name()
	pCPU, _ := p.CPUPercent()
	pMem, _ := p.MemoryPercent()

	data := SystemStatus{
		StartTime: h.App.StartTime,
		Uptime:    time.Since(h.App.StartTime).Seconds(),
		RuntimeStatus: RuntimeInfo{
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     m.Alloc,
			MemSys:       m.Sys,
			HeapInuse:    m.HeapInuse,
			NumGC:        m.NumGC,
		},
		CPU: CPUInfo{
			ModelName:     cpuModel,
			PhysicalCores: physCores,
			LogicalCores:  logicCores,
		},
		Memory: MemoryInfo{
			Total:       vMem.Total,
			Available:   vMem.Available,
			Used:        vMem.Used,
			UsedPercent: vMem.UsedPercent,
		},
		Host: HostInfo{
			Hostname:      hInfo.Hostname,
			OS:            hInfo.OS,
			OSPretty:      util.GetOSPrettyName(),
			Platform:      hInfo.Platform,
			KernelVersion: hInfo.KernelVersion,
			Uptime:        hInfo.Uptime,
		},
		Process: ProcessInfo{
			PID:           p.Pid,
			Name:          pName,
			CPUPercent:    pCPU,
			MemoryPercent: pMem,
		},
		Collab: CollabInfo{
			ActiveSessions: h.App.Collab.SessionCount(),
		},
	}
	if loadStat != nil {
		data.CPU.LoadAvg = &LoadInfo{
			Load1:  loadStat.Load1,
			Load5:  loadStat.Load5,
			Load15: loadStat.Load15,
		}
	}

	response.ToResponse(code.Success.WithData(data))
}
