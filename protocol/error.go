package protocol

import erro "github.com/njones/eioclient/internal/errors"

const (
	ErrEmptyPacket             erro.String = "empty packet"
	ErrUnexpectedAttachmentEnd erro.String = "unexpected attachment end"
	ErrUnexpectedBinary        erro.String = "binary data without a pending packet"
	ErrUnexpectedText          erro.String = "text packet while waiting for attachments"

	ErrInvalidPacketType erro.StringF = "the packet type %q does not exist"
	ErrInvalidData       erro.StringF = "the packet data %T can not be decoded"
	ErrBadParse          erro.StringF = "%s int parse:: %w"
	ErrBadMarshal        erro.StringF = "data marshal:: %w"
	ErrBadUnmarshal      erro.StringF = "data unmarshal:: %w"
	ErrReadFailed        erro.StringF = "failed to read blob:: %w"

	ErrDecodeFieldFailed erro.StringF = "failed to decode msgpack field:: %w"
	ErrEncodeFieldFailed erro.StringF = "failed to encode msgpack field:: %w"
)
