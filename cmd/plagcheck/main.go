package main

import (
	"context"
	"fmt"
	"os"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	if err := NewRootCmd(version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "plagcheck:", err)
		os.Exit(1)
	}
}
