package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"indicator-go/bus"
	"indicator-go/hal/platform"
	"indicator-go/services/board"
	"indicator-go/services/config"
	"indicator-go/services/console"
	"indicator-go/services/indicator"
)

func runHardware(c *cli.Context) error {
	if err := platform.Init(); err != nil {
		return err
	}
	dev, err := config.Load(c.String("device"))
	if err != nil {
		return err
	}
	hw, err := board.Build(board.BuildInput{
		Pins:  platform.DefaultPinFactory(),
		Buses: platform.DefaultI2CFactory(),
		Board: dev.Board,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)
	svc, err := indicator.New(dev, hw, b.NewConnection("indicator"), indicator.Options{})
	if err != nil {
		return err
	}

	if c.Bool("console") || dev.Console {
		srv := &console.Server{
			Port:   console.NewStream(os.Stdin, os.Stdout),
			Conn:   b.NewConnection("console"),
			Prompt: "> ",
		}
		go func() {
			_ = srv.Serve(ctx)
			stop()
		}()
	}
	return svc.Run(ctx)
}
