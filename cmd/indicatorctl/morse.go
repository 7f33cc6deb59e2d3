package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	"indicator-go/x/morse"
)

func runMorse(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no message given")
	}
	if c.Int("unit") <= 0 {
		return errors.New("--unit must be positive")
	}
	msg := strings.Join(c.Args(), " ")
	enc := morse.Encoder{Unit: time.Duration(c.Int("unit")) * time.Millisecond}
	units := enc.Translate(msg)

	kept, _ := morse.Filter(msg)
	for _, r := range kept {
		p, _ := morse.Pattern(r)
		if r == ' ' {
			p = "/"
		}
		fmt.Printf("%c %s\n", r, p)
	}
	fmt.Println(render(units, enc.Unit))
	fmt.Printf("%d units, %v\n", len(units), morse.Total(units))
	return nil
}

// render draws units as a strip, one cell per dot length.
func render(units []morse.Unit, unit time.Duration) string {
	var b strings.Builder
	for _, u := range units {
		ch := "_"
		if u.Pulse {
			ch = "#"
		}
		b.WriteString(strings.Repeat(ch, int(u.Duration/unit)))
	}
	return b.String()
}
