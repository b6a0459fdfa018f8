package protocol

import "io"

const (
	OpenPacket PacketType = iota
	ClosePacket
	PingPacket
	PongPacket
	MessagePacket
	UpgradePacket
	NoopPacket
)

// Packet is one engine.io packet. D is nil, a string, a []byte for binary
// data, or a *HandshakeV3 for an open packet.
type Packet struct {
	T PacketType  `json:"type"`
	D interface{} `json:"data"`
}

func (pac Packet) PacketVal() Packet   { return pac }
func (pac *Packet) PacketRef() *Packet { return pac }

// IsBinary reports if the packet carries raw binary data.
func (pac Packet) IsBinary() bool {
	_, ok := pac.D.([]byte)
	return ok
}

type PacketType byte

func (pt PacketType) Bytes() []byte { return []byte{byte(pt) + '0'} }
func (pt PacketType) Valid() bool   { return pt <= NoopPacket }

func (pt PacketType) String() string {
	switch pt {
	case OpenPacket:
		return "open"
	case ClosePacket:
		return "close"
	case PingPacket:
		return "ping"
	case PongPacket:
		return "pong"
	case MessagePacket:
		return "message"
	case UpgradePacket:
		return "upgrade"
	case NoopPacket:
		return "noop"
	}
	return "unknown packet type"
}

type (
	PacketEncoder interface{ To(io.Writer) PacketWriter }
	PacketDecoder interface{ From(io.Reader) PacketReader }

	PacketWriter interface{ WritePacket(PacketVal) error }
	PacketReader interface{ ReadPacket(PacketRef) error }

	PacketVal interface{ PacketVal() Packet }
	PacketRef interface{ PacketRef() *Packet }
)
