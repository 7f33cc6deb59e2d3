// Package console implements the text command language that drives an
// indicator LED, and a line-oriented server for it.
//
//	blink fast|medium|slow [repeat]
//	custom <on_ms> <off_ms> [repeat]
//	combo reboot|<on_ms>:<off_ms>[,<on_ms>:<off_ms>...] [repeat]
//	morse <text> [repeat]
//	reboot
//	stop | stopall | status | help
//
// Arguments are split shell-style, so morse text with spaces is quoted.
// A repeat of 0 plays until stopped.
package console

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"indicator-go/errcode"
	"indicator-go/services/blink"
)

// Player is the engine surface the console drives.
type Player interface {
	PlayCustom(on, off time.Duration, repeat int, trigger bool) error
	PlayNamed(p blink.Preset, repeat int, trigger bool) error
	PlayCombination(segments []blink.Segment, repeat int, trigger bool) error
	PlayMorse(msg string, repeat int, trigger bool) error
	Reboot() error
	Stop()
	StopAll()
	Busy() bool
}

const Help = "commands: blink fast|medium|slow [n], custom <on_ms> <off_ms> [n], " +
	"combo reboot|<on>:<off>,... [n], morse [-n n] <text>, reboot, stop, stopall, status"

// Command is one parsed line.
type Command struct {
	Name string
	Args []string
}

// Parse splits line shell-style. An empty line yields a zero Command.
func Parse(line string) (Command, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return Command{}, errcode.Wrap(errcode.InvalidArgument, "console.Parse", err)
	}
	if len(words) == 0 {
		return Command{}, nil
	}
	return Command{Name: strings.ToLower(words[0]), Args: words[1:]}, nil
}

// Exec parses and runs line against p and returns a one-line reply.
// Patterns started from the console always request the completion callback.
func Exec(p Player, line string) (string, error) {
	cmd, err := Parse(line)
	if err != nil {
		return "", err
	}
	return cmd.Run(p)
}

func (c Command) Run(p Player) (string, error) {
	op := "console." + c.Name
	bad := func(msg string) error { return errcode.New(errcode.InvalidArgument, op, msg) }

	switch c.Name {
	case "":
		return "", nil
	case "help":
		return Help, nil
	case "status":
		if p.Busy() {
			return "busy", nil
		}
		return "idle", nil
	case "stop":
		p.Stop()
		return "stopped", nil
	case "stopall":
		p.StopAll()
		return "stopped all", nil
	case "reboot":
		if len(c.Args) != 0 {
			return "", bad("reboot takes no arguments")
		}
		return done(p.Reboot())

	case "blink":
		if len(c.Args) < 1 || len(c.Args) > 2 {
			return "", bad("usage: blink fast|medium|slow [repeat]")
		}
		preset, ok := blink.ParsePreset(strings.ToLower(c.Args[0]))
		if !ok {
			return "", bad("unknown preset " + c.Args[0])
		}
		repeat := -1
		if len(c.Args) == 2 {
			n, err := parseCount(c.Args[1])
			if err != nil {
				return "", err
			}
			repeat = n
		}
		return done(p.PlayNamed(preset, repeat, true))

	case "custom":
		if len(c.Args) < 2 || len(c.Args) > 3 {
			return "", bad("usage: custom <on_ms> <off_ms> [repeat]")
		}
		on, err := parseMs(c.Args[0])
		if err != nil {
			return "", err
		}
		off, err := parseMs(c.Args[1])
		if err != nil {
			return "", err
		}
		repeat, err := optCount(c.Args[2:])
		if err != nil {
			return "", err
		}
		return done(p.PlayCustom(on, off, repeat, true))

	case "combo":
		if len(c.Args) < 1 || len(c.Args) > 2 {
			return "", bad("usage: combo reboot|<on>:<off>,... [repeat]")
		}
		segs, err := ParseSegments(c.Args[0])
		if err != nil {
			return "", err
		}
		repeat, err := optCount(c.Args[1:])
		if err != nil {
			return "", err
		}
		return done(p.PlayCombination(segs, repeat, true))

	case "morse":
		// Digits are Morse too, so the repeat count needs its own flag.
		words, repeat := c.Args, 1
		if len(words) > 0 && words[0] == "-n" {
			if len(words) < 2 {
				return "", bad("-n needs a repeat count")
			}
			n, err := parseCount(words[1])
			if err != nil {
				return "", err
			}
			words, repeat = words[2:], n
		}
		if len(words) == 0 {
			return "", bad("usage: morse [-n repeat] <text>")
		}
		return done(p.PlayMorse(strings.Join(words, " "), repeat, true))
	}
	return "", errcode.New(errcode.UnknownCommand, "console", "unknown command "+c.Name)
}

func done(err error) (string, error) {
	if err != nil {
		return "", err
	}
	return "ok", nil
}

// ParseSegments reads "reboot" or a comma separated list of on:off pairs
// in milliseconds.
func ParseSegments(s string) ([]blink.Segment, error) {
	if strings.EqualFold(s, "reboot") {
		return blink.RebootSegments(), nil
	}
	var out []blink.Segment
	for _, part := range strings.Split(s, ",") {
		on, off, ok := strings.Cut(part, ":")
		if !ok {
			return nil, errcode.New(errcode.InvalidArgument, "console.ParseSegments", "segment "+part+" is not on:off")
		}
		a, err := parseMs(on)
		if err != nil {
			return nil, err
		}
		b, err := parseMs(off)
		if err != nil {
			return nil, err
		}
		out = append(out, blink.Segment{On: a, Off: b})
	}
	return out, nil
}

func parseMs(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errcode.New(errcode.InvalidArgument, "console", "bad duration "+s)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errcode.New(errcode.InvalidArgument, "console", "bad repeat "+s)
	}
	return n, nil
}

func optCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	return parseCount(args[0])
}
