package main

import (
	_ "embed"

	"github.com/notepadplus/notepad-collab-service/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}
