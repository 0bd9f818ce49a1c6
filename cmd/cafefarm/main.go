package main

import (
	"os"

	"github.com/small-frappuccino/cafefarm/pkg/app"
	"github.com/small-frappuccino/cafefarm/pkg/log"
	"github.com/small-frappuccino/cafefarm/pkg/util"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

// main is the entry point of the café farm.
func main() {
	app.SetAppVersion(version)
	if err := app.Run(util.DefaultAppName); err != nil {
		log.ErrorLoggerRaw().Error("Fatal", "err", err)
		os.Exit(1)
	}
}
