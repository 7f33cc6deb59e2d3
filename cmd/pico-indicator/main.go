//go:build rp2040 || rp2350

package main

import (
	"context"
	"runtime"
	"time"

	"indicator-go/bus"
	"indicator-go/hal/platform"
	"indicator-go/services/board"
	"indicator-go/services/config"
	"indicator-go/services/console"
	"indicator-go/services/indicator"
)

// device selects the embedded config; override with
// -ldflags "-X main.device=pico-expander".
var device = "pico"

func main() {
	time.Sleep(1500 * time.Millisecond)
	println("[main] indicator boot, device", device)
	ctx := context.Background()

	dev, err := config.Load(device)
	if err != nil {
		fail("config", err)
	}
	hw, err := board.Build(board.BuildInput{
		Pins:  platform.DefaultPinFactory(),
		Buses: platform.DefaultI2CFactory(),
		Board: dev.Board,
	})
	if err != nil {
		fail("board", err)
	}
	println("[main] board", hw.Kind, "button", dev.Board.Button, "led", dev.Board.LED)

	b := bus.NewBus(8)
	svc, err := indicator.New(dev, hw, b.NewConnection("indicator"), indicator.Options{})
	if err != nil {
		fail("indicator", err)
	}

	mon := b.NewConnection("monitor").Subscribe(bus.Topic{"indicator", bus.Rest})
	go func() {
		for m := range mon.Channel() {
			println("[monitor] <-", m.Topic.String())
		}
	}()

	if port, ok := platform.DefaultConsole(); ok && dev.Console {
		srv := &console.Server{Port: port, Conn: b.NewConnection("console"), Prompt: "> "}
		go srv.Serve(ctx)
		println("[main] console on uart0")
	}

	go heartbeat(ctx, 30*time.Second)

	if err := svc.Run(ctx); err != nil {
		fail("run", err)
	}
}

func fail(stage string, err error) {
	for {
		println("[main]", stage, "failed:", err.Error())
		time.Sleep(5 * time.Second)
	}
}

// heartbeat prints a compact snapshot of TinyGo runtime memory stats.
func heartbeat(ctx context.Context, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			println(
				"[mem]",
				"alloc:", uint32(ms.Alloc),
				"heapInuse:", uint32(ms.HeapInuse),
				"mallocs:", uint32(ms.Mallocs),
				"frees:", uint32(ms.Frees),
			)
		}
	}
}
