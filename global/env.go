package global

import (
	"github.com/notepadplus/notepad-collab-service/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT          string
	Name          string = "Notepad Collab Service"
	WebClientName string = "Web"
	// Version 构建时由 cmd 注入
	Version string = "unknown"
)

func init() {

	filename := fileurl.GetExePath()
	ROOT = filename + "/"

}
