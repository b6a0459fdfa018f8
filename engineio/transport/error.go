package transport

import (
	"fmt"

	erro "github.com/njones/eioclient/internal/errors"
)

const (
	ErrNotOpen             erro.String  = "transport not open"
	ErrNoSessionID         erro.String  = "sid is missing after the transport opened"
	ErrRequestFailed       erro.String  = "xhr request failed"
	ErrWebsocketDial       erro.String  = "websocket dial failed"
	ErrWebsocketRead       erro.String  = "websocket read failed"
	ErrWebsocketSend       erro.String  = "websocket write failed"
	ErrDecodeFailed        erro.String  = "failed to decode transport data"
	ErrEncodeFailed        erro.String  = "failed to encode transport data"
	ErrUnimplementedMethod erro.StringF = "unimplemented %s method"
	ErrPauseTimeout        erro.State   = "pause timeout"
	ErrCloseDeferred       erro.State   = "close deferred until open"
)

// Error is carried by EventError. Message is one of the error constants of
// this package and Detail is the raw cause, a response body or an error.
type Error struct {
	Message string
	Detail  interface{}
}

func (e *Error) Error() string {
	switch detail := e.Detail.(type) {
	case nil:
		return e.Message
	case []byte:
		return fmt.Sprintf("%s: %s", e.Message, detail)
	default:
		return fmt.Sprintf("%s: %v", e.Message, detail)
	}
}

func (e *Error) Is(target error) bool { return target != nil && e.Message == target.Error() }

func (e *Error) Unwrap() error {
	if err, ok := e.Detail.(error); ok {
		return err
	}
	return nil
}
