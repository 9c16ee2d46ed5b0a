// Package errs defines the error taxonomy shared by every component of the
// gateway. Handlers and adapters return these typed errors instead of bare
// strings so the protocol front-end (internal/rpc) can map them onto stable
// JSON-RPC codes without re-parsing messages.
package errs

import "fmt"

// Kind identifies one row of the error taxonomy.
type Kind string

const (
	KindParseError     Kind = "parse_error"
	KindInvalidRequest Kind = "invalid_request"
	KindUnknownMethod  Kind = "unknown_method"
	KindUnknownTool    Kind = "unknown_tool"
	KindInvalidArgs    Kind = "invalid_args"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindAuthError      Kind = "auth_error"
	KindUpstreamError  Kind = "upstream_error"
	KindBadURI         Kind = "bad_uri"
)

// Error is the concrete type every component-level failure is expressed as.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	// Data carries machine-readable context (offending keys, status codes)
	// that ends up in the JSON-RPC error's "data" field.
	Data any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuthError, Message: message}
}

func Upstream(message string, cause error) *Error {
	return &Error{Kind: KindUpstreamError, Message: message, Cause: cause}
}

func InvalidArgs(message string, offendingKeys ...string) *Error {
	var data any
	if len(offendingKeys) > 0 {
		data = map[string]any{"keys": offendingKeys}
	}
	return &Error{Kind: KindInvalidArgs, Message: message, Data: data}
}

func UnknownTool(name string) *Error {
	return &Error{Kind: KindUnknownTool, Message: "unknown tool: " + name, Data: map[string]any{"tool": name}}
}

func UnknownMethod(name string) *Error {
	return &Error{Kind: KindUnknownMethod, Message: "unknown method: " + name, Data: map[string]any{"method": name}}
}

func BadURI(message string) *Error {
	return &Error{Kind: KindBadURI, Message: message}
}

// As extracts a *Error from err, if any wraps one.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	if ok {
		return e, true
	}
	type unwrapper interface{ Unwrap() error }
	for u, ok := err.(unwrapper); ok; u, ok = err.(unwrapper) {
		err = u.Unwrap()
		if e, ok := err.(*Error); ok {
			return e, true
		}
	}
	return nil, false
}
