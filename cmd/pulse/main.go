package main

import (
	"github.com/quantica-labs/pulse/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
