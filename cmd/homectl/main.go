package main

import (
	"github.com/robotalks/homectl/pkg/cli/sh"
	"github.com/robotalks/homectl/pkg/l1/env"
	"github.com/robotalks/homectl/pkg/l1/env/connector"

	_ "github.com/robotalks/homectl/pkg/cli/cmds/device"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
	connector.SetupFlags()
}

func main() {
	sh.Main()
}
