package main

import (
	"fmt"
	"os"

	"github.com/babarot/rim/internal/cli"
)

const appName = "rim"

// These variables are set in build step
var (
	Version   = "unset"
	Revision  = "unset"
	BuildDate = "unset"
)

func main() {
	err := cli.Run(cli.Version{
		AppName:   appName,
		Version:   Version,
		Revision:  Revision,
		BuildDate: BuildDate,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
	}
	os.Exit(cli.ExitCode(err))
}
