package server

import "fmt"

// BindError is returned when the listening socket cannot be opened. It is
// fatal: the caller is expected to exit rather than retry.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// MalformedRequestError reports a POST whose body cannot be framed, i.e. a
// missing or invalid Content-Length or a body shorter than declared.
type MalformedRequestError struct {
	Reason string
	Err    error
}

func (e *MalformedRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed request: %s: %v", e.Reason, e.Err)
	}
	return "malformed request: " + e.Reason
}

func (e *MalformedRequestError) Unwrap() error {
	return e.Err
}

// UndecodableBodyError reports a POST body that is not valid UTF-8 text.
type UndecodableBodyError struct {
	MIMEType string
	Size     int
}

func (e *UndecodableBodyError) Error() string {
	return fmt.Sprintf("request body is not valid UTF-8 text (%d bytes, detected %s)", e.Size, e.MIMEType)
}
