// main is the entry point of the repolens CLI.
package main

import (
	"os"

	"github.com/huangsam/repolens/cmd"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseCaching()
	if err != nil {
		contract.LogWarn("repolens failed", err)
		os.Exit(1)
	}
}
