package session

// ID is the session id a server assigns during the handshake.
type ID string

func (id ID) String() string { return string(id) }
func (id ID) IsZero() bool   { return id == "" }
