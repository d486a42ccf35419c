package main

import (
	"os"

	"github.com/bimakw/dex-swap/internal/cli"
	"github.com/bimakw/dex-swap/internal/config"
)

const version = "0.3.0"

func main() {
	config.LoadDotEnv()

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
