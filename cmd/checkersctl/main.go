package main

import (
	"github.com/jkoster/checkersgame-go/internal/cli"
)

func main() {
	cli.Execute()
}
