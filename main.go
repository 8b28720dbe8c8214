// Command dirtree renders a directory tree and aggregates its file statistics.
package main

import (
	"context"
	"os"

	"github.com/idelchi/dirtree/internal/cli"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
