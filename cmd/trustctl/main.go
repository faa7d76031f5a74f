package main

import (
	"github.com/brnbtech770/blocktrust/internal/cli"
)

func main() {
	cli.Execute()
}
