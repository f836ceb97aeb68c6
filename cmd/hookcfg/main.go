package main

import (
	"os"

	"github.com/grovetools/hookcfg/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
