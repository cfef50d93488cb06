package main

import (
	"github.com/traceon/traceon/cmd/traceon/cmd"
)

func main() {
	cmd.Execute()
}
