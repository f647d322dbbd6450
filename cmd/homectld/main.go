package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	fx "github.com/robotalks/homectl/pkg/framework"
	"github.com/robotalks/homectl/pkg/l0/device"
)

func init() {
	device.SetupFlags()
}

func main() {
	flag.Parse()

	conf := device.Default()
	port, closer, err := conf.OpenPort()
	if err != nil {
		log.Fatalln(err)
	}
	defer closer.Close()

	dev, err := conf.NewDevice(port)
	if err != nil {
		log.Fatalln(err)
	}

	ctx := fx.NewRunner().HandleSignals().Context
	fx.NewLoop().Add(dev).RunOrFail(ctx)
}
