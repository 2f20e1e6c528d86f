package main

import (
	"os"

	"github.com/TricksterGuy/bottomless-block-barrage/cmd"
)

func main() {
	root := cmd.NewRootCmd(cmd.DefaultDeps())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
