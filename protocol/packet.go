package protocol

import "strconv"

type PacketType byte

const (
	ConnectPacket PacketType = iota
	DisconnectPacket
	EventPacket
	AckPacket
	ErrorPacket
	BinaryEventPacket
	BinaryAckPacket
)

func (x PacketType) String() string {
	switch x {
	case ConnectPacket:
		return "connect"
	case DisconnectPacket:
		return "disconnect"
	case EventPacket:
		return "event"
	case AckPacket:
		return "ack"
	case ErrorPacket:
		return "error"
	case BinaryEventPacket:
		return "binary_event"
	case BinaryAckPacket:
		return "binary_ack"
	}
	return "unknown(" + strconv.Itoa(int(x)) + ")"
}

func (x PacketType) Valid() bool    { return x <= BinaryAckPacket }
func (x PacketType) IsBinary() bool { return x == BinaryEventPacket || x == BinaryAckPacket }

// binary returns the binary flavor of an event or ack type.
func (x PacketType) binary() PacketType {
	switch x {
	case EventPacket:
		return BinaryEventPacket
	case AckPacket:
		return BinaryAckPacket
	}
	return x
}

// Packet is a socket.io packet. Data is a tree of []interface{},
// map[string]interface{}, string, float64, bool, nil, Blob and Placeholder
// values. ID is nil when the packet asks for no acknowledgment.
type Packet struct {
	Type        PacketType  `json:"type" msgpack:"type"`
	Namespace   string      `json:"nsp" msgpack:"nsp"`
	ID          *uint64     `json:"id,omitempty" msgpack:"id,omitempty"`
	Data        interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
	Attachments int         `json:"attachments,omitempty" msgpack:"attachments,omitempty"`
}

func (pac Packet) WithType(x PacketType) Packet  { pac.Type = x; return pac }
func (pac Packet) WithNamespace(x string) Packet { pac.Namespace = x; return pac }
func (pac Packet) WithAckID(x uint64) Packet     { pac.ID = &x; return pac }
func (pac Packet) WithData(x interface{}) Packet { pac.Data = x; return pac }
func (pac Packet) GetAckID() (id uint64, ok bool) {
	if pac.ID == nil {
		return 0, false
	}
	return *pac.ID, true
}

// namespace is the namespace as written on the wire, the root is empty.
func (pac Packet) namespace() string {
	if pac.Namespace == "/" {
		return ""
	}
	return pac.Namespace
}
