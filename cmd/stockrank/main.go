package main

import (
	"os"

	"stockrank/internal/rankctl"
)

// Version is injected by build scripts via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	rankctl.Version = Version
	os.Exit(rankctl.Run(os.Args[1:]))
}
