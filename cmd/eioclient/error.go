package main

import erro "github.com/njones/eioclient/internal/errors"

const (
	ErrUnknownTransport erro.StringF = "unknown transport %q"
	ErrNoHost           erro.String  = "host is required"
	ErrPortRange        erro.StringF = "port %d is out of range"
	ErrNegativeDuration erro.StringF = "duration %s is negative"
	ErrConfigRead       erro.StringF = "config %s:: %w"
	ErrClosedBeforeOpen erro.String  = "transport closed before it opened"
)
