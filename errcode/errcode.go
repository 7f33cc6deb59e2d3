package errcode

// Code is a stable, short error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK              Code = "ok"
	ConfigError     Code = "config_error"     // rejected at construction
	InvalidArgument Code = "invalid_argument" // rejected call, no state touched
	Released        Code = "released"         // instance already released
	UnknownPin      Code = "unknown_pin"
	UnknownBus      Code = "unknown_bus"
	UnknownBoard    Code = "unknown_board"
	UnknownCommand  Code = "unknown_command"
	Unsupported     Code = "unsupported"
	Timeout         Code = "timeout"

	Error Code = "error" // generic fallback
)

// E carries an operation name and message alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

// New returns an *E for op with a human readable message.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap returns an *E that keeps err as its cause.
func Wrap(c Code, op string, err error) *E {
	e := &E{C: c, Op: op, Err: err}
	if err != nil {
		e.Msg = err.Error()
	}
	return e
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.InvalidArgument) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
