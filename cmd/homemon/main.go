package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	fx "github.com/robotalks/homectl/pkg/framework"
	"github.com/robotalks/homectl/pkg/l1/comm"
	"github.com/robotalks/homectl/pkg/l1/env"
	"github.com/robotalks/homectl/pkg/l1/report"
)

var statusInterval = 10 * time.Second

func init() {
	env.SetupFlags()
	flag.DurationVar(&statusInterval, "status-interval", statusInterval, "Interval of status logs.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := env.Default()
	if err := conf.Load(); err != nil {
		log.Fatalln(err)
	}
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}

	pipe, err := conf.OpenPipe()
	if err != nil {
		log.Fatalln(err)
	}

	mon := conf.NewMonitor()
	mon.OnWarning = func(temp float64) {
		log.Printf("WARNING: temperature %.1f above threshold %.1f", temp, conf.Threshold)
	}
	pipe.AddHandler(mon, comm.HandleReportFunc(func(_ context.Context, r *report.Report) {
		switch r.Kind {
		case report.KindAck, report.KindRejected, report.KindUnknown:
			log.Printf("%s: %s", r.Kind, r.Line)
		}
	}))

	bridge, err := conf.NewBridge(pipe)
	if err != nil {
		log.Fatalln(err)
	}
	if bridge != nil {
		pipe.AddHandler(bridge)
	}

	feed := conf.NewFeed(pipe)
	if feed != nil {
		feed.State = func() interface{} { return mon.State() }
		pipe.AddHandler(feed)
	}

	if reports := conf.NewReportLog(); reports != nil {
		defer reports.Close()
		pipe.AddHandler(reports)
	}

	loop := fx.NewLoop()
	loop.Interval = statusInterval
	loop.AddController(fx.PrLvIdle, fx.ControlFunc(func(fx.ControlContext) error {
		st := mon.State()
		log.Printf("lamp=%v plug=%v temp=%.1f warning=%v door=%s", st.Lamp, st.Plug, st.Temperature, st.Warning, st.Door)
		return nil
	}))

	ctx, cancel := context.WithCancel(fx.NewRunner().HandleSignals().Context)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// the device stream ending stops everything else.
		defer cancel()
		return pipe.Run(ctx)
	})
	g.Go(func() error { return loop.Run(ctx) })
	if bridge != nil {
		g.Go(func() error { return bridge.Run(ctx) })
	}
	if feed != nil {
		g.Go(func() error { return feed.Serve(ctx, conf.Listen) })
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}
