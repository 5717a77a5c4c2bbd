package main

import (
	"github.com/gogf/gf/v2/os/gctx"

	"github.com/Malowking/kbrag/internal/cmd"
)

func main() {
	cmd.Main.Run(gctx.GetInitCtx())
}
