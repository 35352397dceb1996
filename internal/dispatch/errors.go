package dispatch

import "fmt"

// UnsupportedMethodError reports a method outside the closed set. With
// callers constrained to the Method constants this is a programmer error.
type UnsupportedMethodError struct {
	Method Method
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported HTTP method %q", string(e.Method))
}

// TransportError reports a failure to complete the HTTP exchange, such as a
// connection refusal or a timeout. It is distinct from any non-success
// status code, which the dispatcher passes through untouched.
type TransportError struct {
	Method Method
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
