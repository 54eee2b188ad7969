package main

import (
	"github.com/blockrun/blockrun/cmd/blockrun/cmd"
)

func main() {
	cmd.Execute()
}
