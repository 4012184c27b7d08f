package main

import (
	"github.com/nektos/coerce/cmd"
	"github.com/nektos/coerce/pkg/common"
)

var version string

func main() {
	// trap Ctrl+C and SIGTERM and cancel the context
	ctx, cancel := common.CreateGracefulCancellationContext()
	defer cancel()

	// run the command
	cmd.Execute(ctx, version)
}
