package main

import (
	"github.com/newswatch/scout/internal/cli"
)

func main() {
	cli.Execute()
}
