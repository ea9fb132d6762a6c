// main is the entry point for the whoknows CLI.
package main

import (
	"os"

	"github.com/whoknows/whoknows/cmd"
	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/internal/iocache"
)

func main() {
	// The global manager is populated lazily by each command's setup, so it
	// is safe to hand over before initialization.
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	iocache.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}

	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
