package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"indicator-go/bus"
	"indicator-go/hal"
)

// CmdTopic carries command lines (string payload) as bus requests. The
// reply payload is a Reply.
var CmdTopic = bus.Topic{"indicator", "cmd"}

type Reply struct {
	Text string
	Err  error
}

const maxLine = 128

// Server reads command lines from a serial port, forwards each as a bus
// request on CmdTopic and writes the reply back.
type Server struct {
	Port    hal.SerialPort
	Conn    *bus.Connection
	Logger  *slog.Logger
	Prompt  string
	Timeout time.Duration // per request, default 2 s
}

// Serve runs until ctx is cancelled or the port reports io.EOF.
func (s *Server) Serve(ctx context.Context) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	buf := make([]byte, 64)
	var line []byte
	s.write(s.Prompt)
	for {
		n, err := s.Port.RecvSomeContext(ctx, buf)
		for i := 0; i < n; i++ {
			switch b := buf[i]; b {
			case '\n':
				s.handle(ctx, string(line), timeout, log)
				line = line[:0]
				s.write(s.Prompt)
			case '\r':
			default:
				if len(line) < maxLine {
					line = append(line, b)
				}
			}
		}
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, io.EOF):
			if len(line) > 0 {
				s.handle(ctx, string(line), timeout, log)
			}
			return nil
		case err != nil:
			log.Warn("console: read", "err", err)
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, line string, timeout time.Duration, log *slog.Logger) {
	if line == "" {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	msg, err := s.Conn.RequestWait(rctx, s.Conn.NewMessage(CmdTopic, line, false))
	if err != nil {
		log.Warn("console: no reply", "line", line, "err", err)
		s.write("error: " + err.Error() + "\r\n")
		return
	}
	r, _ := msg.Payload.(Reply)
	if r.Err != nil {
		s.write("error: " + r.Err.Error() + "\r\n")
		return
	}
	if r.Text != "" {
		s.write(r.Text + "\r\n")
	}
}

func (s *Server) write(text string) {
	if text == "" {
		return
	}
	_, _ = s.Port.Write([]byte(text))
}

// Stream adapts an io.Reader/io.Writer pair, such as stdin and stdout, to
// hal.SerialPort.
type Stream struct {
	w      io.Writer
	chunks chan []byte
	err    chan error
	rest   []byte
}

var _ hal.SerialPort = (*Stream)(nil)

// NewStream starts a goroutine that reads r until it fails.
func NewStream(r io.Reader, w io.Writer) *Stream {
	s := &Stream{w: w, chunks: make(chan []byte, 4), err: make(chan error, 1)}
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				s.chunks <- append([]byte(nil), buf[:n]...)
			}
			if err != nil {
				s.err <- err
				return
			}
		}
	}()
	return s
}

func (s *Stream) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *Stream) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	if len(s.rest) == 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case c := <-s.chunks:
			s.rest = c
		case err := <-s.err:
			// Drain data that raced with the error.
			select {
			case c := <-s.chunks:
				s.rest = c
				s.err <- err
			default:
				return 0, err
			}
		}
	}
	n := copy(p, s.rest)
	s.rest = s.rest[n:]
	return n, nil
}
