package protocol

import erro "github.com/njones/eioclient/internal/errors"

const (
	ErrInvalidPacketType   erro.StringF = "invalid packet type: %v"
	ErrInvalidPacketData   erro.StringF = "invalid packet data: %T"
	ErrInvalidPayloadLen   erro.StringF = "invalid payload length %q:: %w"
	ErrInvalidHandshake    erro.StringF = "[%s] invalid handshake data: %T"
	ErrHandshakeDecode     erro.StringF = "[%s] handshake decode:: %w"
	ErrHandshakeEncode     erro.StringF = "[%s] handshake encode:: %w"
	ErrPacketDecode        erro.StringF = "[%s] packet decode:: %w"
	ErrPacketEncode        erro.StringF = "[%s] packet encode:: %w"
	ErrPayloadDecode       erro.StringF = "[%s] payload decode:: %w"
	ErrPayloadEncode       erro.StringF = "[%s] payload encode:: %w"
	ErrEmptyPacket         erro.String  = "empty packet"
	ErrInvalidBinaryMarker erro.String  = "invalid binary payload marker"
)
