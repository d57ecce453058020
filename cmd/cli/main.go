package main

import (
	"github.com/sofa-bound/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
