// Command indicatorctl runs the button/LED indicator on a Linux board, in a
// terminal simulator, or just prints Morse timings.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli"

	"indicator-go/services/config"
)

func main() {
	app := cli.NewApp()
	app.Name = "indicatorctl"
	app.Usage = "drive a single-button, single-LED status indicator"
	app.Version = "0.3.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Log at debug level",
		},
	}
	app.Before = func(c *cli.Context) error {
		level := slog.LevelInfo
		if c.GlobalBool("debug") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	}
	deviceFlag := func(def string) cli.StringFlag {
		return cli.StringFlag{
			Name:  "device",
			Value: def,
			Usage: "Embedded device config (" + strings.Join(config.Devices(), ", ") + ")",
		}
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "Run on real hardware; stdin becomes the command console",
			Flags: []cli.Flag{
				deviceFlag("rpi"),
				cli.BoolFlag{
					Name:  "console",
					Usage: "Serve console commands on stdin/stdout",
				},
			},
			Action: runHardware,
		},
		{
			Name:  "sim",
			Usage: "Simulate button and LED in the terminal",
			Flags: []cli.Flag{
				deviceFlag("sim"),
				cli.BoolFlag{
					Name:  "sound",
					Usage: "Sound a buzzer while the LED is lit",
				},
			},
			Action: runSim,
		},
		{
			Name:      "morse",
			Usage:     "Print the Morse timing of a message",
			ArgsUsage: "<message>",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "unit",
					Value: config.DefaultMorseUnitMs,
					Usage: "Dot length in milliseconds",
				},
			},
			Action: runMorse,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("indicatorctl failed", "error", err)
		os.Exit(1)
	}
}
