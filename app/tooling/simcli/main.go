package main

import (
	"github.com/accumlabs/ledgersim/app/tooling/simcli/cmd"
)

func main() {
	cmd.Execute()
}
