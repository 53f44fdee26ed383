package main

import (
	"os"

	"github.com/bassamadnan/lumimail/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
