package shellerr

import "fmt"

// Error is the diagnostic type every subsystem raises. Its Error() string
// is always the "NAME: CONTEXT: MESSAGE" form.
type Error struct {
	Code    Code
	Name    string // the shell or builtin name, e.g. "alsh", "cd", "chk"
	Context string // what was being attempted, e.g. a filename or token
	Msg     string
	Err     error // optional wrapped cause
}

// New builds a diagnostic. context may be empty, in which case the
// rendered form collapses to "NAME: MESSAGE".
func New(code Code, name, context, msg string) *Error {
	return &Error{Code: code, Name: name, Context: context, Msg: msg}
}

// Wrap builds a diagnostic around an underlying error.
func Wrap(code Code, name, context, msg string, err error) *Error {
	return &Error{Code: code, Name: name, Context: context, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}
	if e.Context == "" {
		return fmt.Sprintf("%s: %s", e.Name, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Name, e.Context, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a *Error carrying the given code.
func IsCode(err error, code Code) bool {
	var se *Error
	if e, ok := err.(*Error); ok {
		se = e
	}
	if se == nil {
		return false
	}
	return se.Code == code
}
