package main

import (
	"github.com/dyike/CortexFin/internal/cli"
)

func main() {
	cli.Run()
}
