package main

import (
	"os"

	"github.com/koustreak/typegen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
